package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fiveamclub/fiveam/models"
	"github.com/fiveamclub/fiveam/utils"
)

// StatsController serves public aggregate numbers.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new controller instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

const statsCacheKey = "cache:stats:site"

// Site returns site-wide counters: registered users, total check-ins and
// today's page views.
func (s *StatsController) Site(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(statsCacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var users, checkins int64
	if err := s.db.Model(&models.User{}).Count(&users).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to compute stats")
		return
	}
	if err := s.db.Model(&models.Checkin{}).Count(&checkins).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to compute stats")
		return
	}

	// Site-wide "today" is UTC; per-user days are bucketed in each
	// user's own zone, so this is an approximation by construction.
	todayStr := time.Now().UTC().Format("2006-01-02")
	var checkinsToday int64
	if err := s.db.Model(&models.Checkin{}).Where("local_date = ?", todayStr).Count(&checkinsToday).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to compute stats")
		return
	}

	// Page-view rows are keyed at local midnight by the recording
	// middleware; read them back with the same key.
	now := time.Now().In(time.Local)
	localMidnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var viewsToday int64
	_ = s.db.Model(&models.PageView{}).
		Select("COALESCE(SUM(count), 0)").
		Where("date = ?", localMidnight).
		Scan(&viewsToday).Error

	payload := gin.H{
		"users":            users,
		"total_checkins":   checkins,
		"checkins_today":   checkinsToday,
		"page_views_today": viewsToday,
	}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(statsCacheKey, wrapper, time.Minute)

	utils.Success(ctx, payload)
}
