package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fiveamclub/fiveam/config"
	"github.com/fiveamclub/fiveam/models"
	"github.com/fiveamclub/fiveam/streak"
	"github.com/fiveamclub/fiveam/utils"
)

// SettingsController manages the per-user check-in window, timezone and avatar.
type SettingsController struct {
	db *gorm.DB
}

// NewSettingsController creates a new controller instance.
func NewSettingsController(db *gorm.DB) *SettingsController {
	return &SettingsController{db: db}
}

// Get returns the user's settings, creating the default row on first read.
func (s *SettingsController) Get(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	settings, err := s.loadSettings(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to load settings")
		return
	}

	utils.Success(ctx, settings)
}

// Update replaces the check-in window and timezone. The window must be
// well-formed HH:mm values spanning at least one hour within a single day,
// and the timezone must be a loadable IANA zone name.
func (s *SettingsController) Update(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	type request struct {
		CheckinStartTime string `json:"checkin_start_time" binding:"required"`
		CheckinEndTime   string `json:"checkin_end_time" binding:"required"`
		Timezone         string `json:"timezone" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40021, "invalid request payload")
		return
	}

	if _, err := streak.ParseWindow(req.CheckinStartTime, req.CheckinEndTime); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "check-in window must span at least one hour and not cross midnight")
		return
	}

	if _, err := time.LoadLocation(req.Timezone); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40023, "unknown timezone")
		return
	}

	settings, err := s.loadSettings(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to load settings")
		return
	}

	settings.CheckinStartTime = req.CheckinStartTime
	settings.CheckinEndTime = req.CheckinEndTime
	settings.Timezone = req.Timezone

	if err := s.db.Save(settings).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to save settings")
		return
	}

	// A timezone change can shift which day a streak anchors on.
	utils.InvalidateByPrefix(streakCacheKey(userID))

	utils.Success(ctx, settings)
}

// UploadAvatar stores a new avatar image and schedules the replaced file
// for deletion after a grace period.
func (s *SettingsController) UploadAvatar(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	file, err := ctx.FormFile("avatar")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "missing avatar file")
		return
	}

	maxBytes := int64(config.Get().AvatarMaxSizeMB) << 20
	if file.Size > maxBytes {
		utils.Error(ctx, http.StatusBadRequest, 40025, fmt.Sprintf("avatar exceeds %dMB", config.Get().AvatarMaxSizeMB))
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
	default:
		utils.Error(ctx, http.StatusBadRequest, 40026, "unsupported image type")
		return
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}

	dir := filepath.Join("static", "avatars")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to store avatar")
		return
	}

	name := uuid.NewString() + ext
	dst := filepath.Join(dir, name)
	if err := ctx.SaveUploadedFile(file, dst); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to store avatar")
		return
	}

	oldURL := user.AvatarURL
	user.AvatarURL = "/static/avatars/" + name
	if err := s.db.Model(&user).Update("avatar_url", user.AvatarURL).Error; err != nil {
		os.Remove(dst)
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to store avatar")
		return
	}

	if strings.HasPrefix(oldURL, "/static/avatars/") {
		grace := time.Duration(config.Get().AvatarCleanupGraceMins) * time.Minute
		record := models.UploadedFile{
			FilePath: filepath.Join("static", "avatars", filepath.Base(oldURL)),
			URL:      oldURL,
			ExpireAt: time.Now().Add(grace),
		}
		_ = s.db.Create(&record).Error
	}

	utils.InvalidateByPrefix("cache:user:public:" + user.Username)

	utils.Success(ctx, gin.H{"avatar_url": user.AvatarURL})
}

func (s *SettingsController) loadSettings(userID uint) (*models.UserSettings, error) {
	var settings models.UserSettings
	err := s.db.Where("user_id = ?", userID).First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	settings = models.DefaultSettings(userID)
	if err := s.db.Create(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := s.db.Where("user_id = ?", userID).First(&settings).Error; err == nil {
				return &settings, nil
			}
		}
		return nil, err
	}
	return &settings, nil
}
