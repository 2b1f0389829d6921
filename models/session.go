package models

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrImageNotFound = errors.New("image not found")
)

// WithSession Run fn on a database connection of its own. The connection is
// returned to the pool when fn returns or panics. The session handed to fn can
// be used for several queries.
func WithSession(ctx context.Context, db *gorm.DB, fn func(session *gorm.DB) error) error {
	return db.WithContext(ctx).Connection(func(tx *gorm.DB) error {
		return fn(tx.Session(&gorm.Session{}))
	})
}

// CreateImage Insert a new image and commit it
func CreateImage(session *gorm.DB, data []byte, category string) (*Image, error) {
	image := Image{ImageData: data, Category: category}
	err := session.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&image).Error
	})
	if err != nil {
		return nil, fmt.Errorf("cannot store image: %w", err)
	}
	return &image, nil
}

// FindImages List the images of a category, or all images when category is empty.
// The image payload is not loaded.
func FindImages(session *gorm.DB, category string) ([]Image, error) {
	images := []Image{}
	query := session.Select("id", "category").Order("id")
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Find(&images).Error; err != nil {
		return nil, fmt.Errorf("cannot list images: %w", err)
	}
	return images, nil
}

// FindImage Find a single image including its payload
func FindImage(session *gorm.DB, id uint) (*Image, error) {
	var image Image
	if err := session.Where("id = ?", id).First(&image).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("cannot find image %d: %w", id, err)
	}
	return &image, nil
}
