package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"snapsort/classifier"
	"snapsort/models"
	"snapsort/utils"
)

// ImageContentType Content type declared for every stored image
const ImageContentType = "image/jpg"

// IndexPage The gallery of all images
var IndexPage = models.Category{Template: "index.html"}

// UploadFile Classify an uploaded image and store it
func UploadFile(imageClassifier classifier.Classifier) gin.HandlerFunc {
	fn := func(c *gin.Context) {
		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "field 'file' is required"})
			return
		}

		src, err := file.Open()
		if err != nil {
			log.Warn(fmt.Sprintf("Cannot open upload %s: %s", file.Filename, err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
			return
		}
		defer src.Close()

		contents, err := io.ReadAll(src)
		if err != nil {
			log.Warn(fmt.Sprintf("Cannot read upload %s: %s", file.Filename, err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
			return
		}

		upload := classifier.Upload{
			Filename:    file.Filename,
			ContentType: file.Header.Get("Content-Type"),
			Data:        contents,
		}
		prediction, err := imageClassifier.Classify(c.Request.Context(), upload)
		if err != nil {
			log.Warn(fmt.Sprintf("Cannot classify %s: %s", file.Filename, err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
			return
		}

		image, err := models.CreateImage(session(c), contents, prediction.Label)
		if err != nil {
			log.Warn(fmt.Sprintf("Cannot store %s: %s", file.Filename, err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
			return
		}
		log.Info(fmt.Sprintf("Stored %s as image %d in category %s", file.Filename, image.ID, image.Category))

		c.JSON(http.StatusOK, gin.H{
			"filename":     upload.Filename,
			"content_type": upload.ContentType,
			"category":     image.Category,
			"id":           image.ID,
		})
	}
	return fn
}

// ListImages Render the gallery page of a category. The zero Label lists every image.
func ListImages(category models.Category) gin.HandlerFunc {
	title := "All images"
	if category.Label != "" {
		title = category.Label
	}
	fn := func(c *gin.Context) {
		images, err := models.FindImages(session(c), category.Label)
		if err != nil {
			log.Warn(fmt.Sprintf("Cannot list images for %q: %s", category.Label, err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
			return
		}

		c.HTML(http.StatusOK, category.Template, gin.H{
			"title":      title,
			"active":     category.Slug,
			"categories": models.Categories,
			"images":     images,
		})
	}
	return fn
}

// GetImage Stream the stored bytes of an image
func GetImage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("image_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "image_id must be a non-negative integer"})
		return
	}

	image, err := models.FindImage(session(c), uint(id))
	if errors.Is(err, models.ErrImageNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Image not found"})
		return
	}
	if err != nil {
		log.Warn(fmt.Sprintf("Cannot read image %d: %s", id, err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	etag := utils.ETag(image.ImageData)
	c.Header("ETag", etag)
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, ImageContentType, image.ImageData)
}
