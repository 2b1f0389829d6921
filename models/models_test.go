package models

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := ConnectDataBase("sqlite", filepath.Join(t.TempDir(), "images.sqlite3"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDataBase(db) })
	return db
}

func TestConnectDataBase_UnsupportedDriver(t *testing.T) {
	db, err := ConnectDataBase("postgres", "host=localhost")
	assert.Error(t, err)
	assert.Nil(t, db)
}

func TestConnectDataBase_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "images.sqlite3")

	db, err := ConnectDataBase("sqlite", path)
	require.NoError(t, err)
	_, err = CreateImage(db, []byte{0x01}, "food")
	require.NoError(t, err)
	require.NoError(t, CloseDataBase(db))

	// Reopening keeps the table and its rows
	db, err = ConnectDataBase("sqlite", path)
	require.NoError(t, err)
	defer CloseDataBase(db)
	images, err := FindImages(db, "")
	require.NoError(t, err)
	assert.Len(t, images, 1)
}

func TestCreateImage_AssignsIncreasingIDs(t *testing.T) {
	db := newTestDB(t)

	first, err := CreateImage(db, []byte{0x01, 0x02}, "human")
	require.NoError(t, err)
	second, err := CreateImage(db, []byte{0x03}, "animal")
	require.NoError(t, err)

	assert.NotZero(t, first.ID)
	assert.Greater(t, second.ID, first.ID)
}

func TestFindImage_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	payload := []byte{0xff, 0xd8, 0xff, 0x00, 0x10, 0x42}

	created, err := CreateImage(db, payload, "landscape")
	require.NoError(t, err)

	found, err := FindImage(db, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, payload, found.ImageData)
	assert.Equal(t, "landscape", found.Category)
}

func TestFindImage_NotFound(t *testing.T) {
	db := newTestDB(t)

	image, err := FindImage(db, 999999)
	assert.ErrorIs(t, err, ErrImageNotFound)
	assert.Nil(t, image)
}

func TestFindImages_FilterAndOrder(t *testing.T) {
	db := newTestDB(t)
	for _, category := range []string{"food", "animal", "food", "something else"} {
		_, err := CreateImage(db, []byte(category), category)
		require.NoError(t, err)
	}

	all, err := FindImages(db, "")
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}
	// Listing leaves the payload out
	assert.Nil(t, all[0].ImageData)

	food, err := FindImages(db, "food")
	require.NoError(t, err)
	assert.Len(t, food, 2)
	for _, image := range food {
		assert.Equal(t, "food", image.Category)
	}

	other, err := FindImages(db, "something else")
	require.NoError(t, err)
	assert.Len(t, other, 1)

	none, err := FindImages(db, "document")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestWithSession(t *testing.T) {
	db := newTestDB(t)

	var id uint
	err := WithSession(context.Background(), db, func(session *gorm.DB) error {
		image, err := CreateImage(session, []byte("payload"), "document")
		if err != nil {
			return err
		}
		id = image.ID

		// Conditions of one query do not leak into the next
		documents, err := FindImages(session, "document")
		require.NoError(t, err)
		assert.Len(t, documents, 1)
		food, err := FindImages(session, "food")
		require.NoError(t, err)
		assert.Empty(t, food)
		all, err := FindImages(session, "")
		require.NoError(t, err)
		assert.Len(t, all, 1)
		return nil
	})
	require.NoError(t, err)

	// The row is committed and visible from other connections
	image, err := FindImage(db, id)
	require.NoError(t, err)
	assert.Equal(t, "document", image.Category)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 0, sqlDB.Stats().InUse)
}

func TestLookupCategory(t *testing.T) {
	tests := []struct {
		name  string
		label string
		ok    bool
	}{
		{"food", "food", true},
		{" Animal ", "animal", true},
		{"something", "something else", true},
		{"Something Else", "something else", true},
		{"car", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, ok := LookupCategory(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.label, category.Label)
		})
	}
}

func TestLabels(t *testing.T) {
	assert.Equal(t,
		[]string{"human", "landscape", "animal", "food", "document", "something else"},
		Labels())
}
