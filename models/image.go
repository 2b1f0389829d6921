package models

// Image An uploaded image together with the category it was classified into
type Image struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	ImageData []byte `json:"-" gorm:"not null"`
	Category  string `json:"category" gorm:"size:64;not null;index"`
}

// TableName Images are stored in the `images` table
func (Image) TableName() string {
	return "images"
}
