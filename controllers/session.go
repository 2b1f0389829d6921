package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"snapsort/models"
)

const sessionKey = "session"

// DatabaseSession Give every request a database connection of its own.
// The connection is released once the rest of the chain has run, whatever
// the outcome.
func DatabaseSession(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := models.WithSession(c.Request.Context(), db, func(session *gorm.DB) error {
			c.Set(sessionKey, session)
			c.Next()
			return nil
		})
		if err != nil {
			log.Warn(fmt.Sprintf("Cannot open database session for %s: %s", c.Request.URL.Path, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "database unavailable"})
		}
	}
}

// session The database session of the current request
func session(c *gin.Context) *gorm.DB {
	return c.MustGet(sessionKey).(*gorm.DB)
}
