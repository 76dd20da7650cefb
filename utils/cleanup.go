package utils

import (
	"log"
	"os"
	"time"

	"github.com/fiveamclub/fiveam/config"
	"github.com/fiveamclub/fiveam/models"
)

// StartAvatarCleaner launches a background goroutine that periodically
// deletes replaced avatar files recorded in the database. It is
// best-effort and logs failures.
func StartAvatarCleaner(interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			db := config.DB()
			if db == nil {
				continue
			}
			var items []models.UploadedFile
			if err := db.Where("expire_at <= ?", time.Now()).Limit(100).Find(&items).Error; err != nil {
				log.Printf("avatar cleaner query failed: %v", err)
				continue
			}
			for _, it := range items {
				if it.FilePath != "" {
					_ = os.Remove(it.FilePath)
				}
				// Remove row regardless of file deletion outcome
				if err := db.Delete(&models.UploadedFile{}, it.ID).Error; err != nil {
					log.Printf("avatar cleaner delete row failed: %v", err)
				}
			}
		}
	}()
}
