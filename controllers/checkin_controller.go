package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fiveamclub/fiveam/models"
	"github.com/fiveamclub/fiveam/streak"
	"github.com/fiveamclub/fiveam/utils"
)

// CheckinController handles daily check-in creation and history queries.
type CheckinController struct {
	db *gorm.DB
}

// NewCheckinController creates a new controller instance.
func NewCheckinController(db *gorm.DB) *CheckinController {
	return &CheckinController{db: db}
}

// now and geoLookup are swappable in tests.
var (
	now       = time.Now
	geoLookup = utils.LookupIPLocation
)

// Create records a daily check-in for the authenticated user.
//
// Admission order matters: a duplicate for the current local day is reported
// before any window complaint, so a user who already checked in never sees an
// "outside window" error. The database unique index on (user_id, local_date)
// is the final arbiter under concurrent requests.
func (c *CheckinController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	type request struct {
		Mood     int8   `json:"mood" binding:"required"`
		Note     string `json:"note" binding:"max=500"`
		Timezone string `json:"timezone"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40011, "invalid request payload")
		return
	}

	mood := models.Mood(req.Mood)
	if !mood.Valid() {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid mood value")
		return
	}

	settings, err := c.loadSettings(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to load settings")
		return
	}

	// When the client reports a timezone that differs from the stored one,
	// adopt it before bucketing. The device is the authority on where the
	// user actually is.
	if req.Timezone != "" && req.Timezone != settings.Timezone {
		if _, err := time.LoadLocation(req.Timezone); err == nil {
			settings.Timezone = req.Timezone
			_ = c.db.Model(settings).Update("timezone", req.Timezone).Error
			// A zone change shifts which day the streak anchors on,
			// even when this check-in goes on to be rejected.
			utils.InvalidateByPrefix(streakCacheKey(userID))
		}
	}

	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		loc = time.UTC
	}

	window, err := streak.ParseWindow(settings.CheckinStartTime, settings.CheckinEndTime)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "stored check-in window is invalid")
		return
	}

	instant := now()
	today := streak.ToLocalDay(instant, loc)

	have := streak.DaySet{}
	var count int64
	if err := c.db.Model(&models.Checkin{}).
		Where("user_id = ? AND local_date = ?", userID, today.String()).
		Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to query check-ins")
		return
	}
	if count > 0 {
		have.Add(today)
	}

	if err := streak.CheckAdmission(instant, loc, window, have); err != nil {
		switch {
		case errors.Is(err, streak.ErrAlreadyCheckedIn):
			utils.Error(ctx, http.StatusConflict, 40910, "already checked in today")
		case errors.Is(err, streak.ErrOutsideWindow):
			utils.Error(ctx, http.StatusForbidden, 40310, "outside the check-in window")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50024, "admission check failed")
		}
		return
	}

	checkin := models.Checkin{
		UserID:    userID,
		LocalDate: today.String(),
		Mood:      mood,
		Content:   utils.Sanitize(req.Note),
	}

	// Best-effort geolocation from the client IP. Missing geo never blocks
	// the check-in.
	ip := ctx.ClientIP()
	if ip != "" && !utils.IsPrivateIP(ip) {
		geoCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if geo, err := geoLookup(geoCtx, ip); err == nil {
			checkin.City = geo.City
			checkin.Country = geo.Country
			checkin.Lat = geo.Lat
			checkin.Lon = geo.Lon
		}
		cancel()
	}

	if err := c.db.Create(&checkin).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Error(ctx, http.StatusConflict, 40910, "already checked in today")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to create check-in")
		return
	}

	utils.InvalidateByPrefix(streakCacheKey(userID))

	utils.Success(ctx, checkinResponse(checkin))
}

// List returns the authenticated user's check-in history, most recent first.
func (c *CheckinController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	page, pageSize := parsePagination(ctx)

	var total int64
	if err := c.db.Model(&models.Checkin{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to query check-ins")
		return
	}

	var checkins []models.Checkin
	if err := c.db.Where("user_id = ?", userID).
		Order("local_date DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&checkins).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to query check-ins")
		return
	}

	items := make([]gin.H, 0, len(checkins))
	for _, ci := range checkins {
		items = append(items, checkinResponse(ci))
	}

	utils.Success(ctx, gin.H{
		"items":     items,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// Calendar returns the set of local days with a check-in, for client-side
// month highlighting. An optional year/month pair narrows the range.
func (c *CheckinController) Calendar(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	settings, err := c.loadSettings(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to load settings")
		return
	}

	query := c.db.Model(&models.Checkin{}).Where("user_id = ?", userID)

	if ys, ms := ctx.Query("year"), ctx.Query("month"); ys != "" && ms != "" {
		year, err1 := strconv.Atoi(ys)
		month, err2 := strconv.Atoi(ms)
		if err1 != nil || err2 != nil || month < 1 || month > 12 {
			utils.Error(ctx, http.StatusBadRequest, 40013, "invalid year or month")
			return
		}
		first := streak.Day{Year: year, Month: time.Month(month), Dayn: 1}
		next := first.AddDays(31)
		next = streak.Day{Year: next.Year, Month: next.Month, Dayn: 1}
		query = query.Where("local_date >= ? AND local_date < ?", first.String(), next.String())
	}

	var dates []string
	if err := query.Order("local_date ASC").Pluck("local_date", &dates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to query check-ins")
		return
	}

	utils.Success(ctx, gin.H{
		"timezone": settings.Timezone,
		"days":     dates,
	})
}

// StreakInfo returns the authenticated user's streak summary.
func (c *CheckinController) StreakInfo(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	if b, ok := utils.CacheGetBytes(streakCacheKey(userID)); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	info, tz, err := c.computeStreak(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to compute streak")
		return
	}

	payload := gin.H{
		"current_streak": info.Current,
		"longest_streak": info.Longest,
		"total_checkins": info.Total,
		"timezone":       tz,
	}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(streakCacheKey(userID), wrapper, 5*time.Minute)

	utils.Success(ctx, payload)
}

// computeStreak loads all of a user's check-in days and evaluates them
// against today in the user's own timezone.
func (c *CheckinController) computeStreak(userID uint) (streak.Info, string, error) {
	settings, err := c.loadSettings(userID)
	if err != nil {
		return streak.Info{}, "", err
	}

	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		loc = time.UTC
	}

	var dates []string
	if err := c.db.Model(&models.Checkin{}).
		Where("user_id = ?", userID).
		Order("local_date ASC").
		Pluck("local_date", &dates).Error; err != nil {
		return streak.Info{}, "", err
	}

	days := make([]streak.Day, 0, len(dates))
	for _, s := range dates {
		d, err := streak.ParseDay(s)
		if err != nil {
			continue
		}
		days = append(days, d)
	}

	today := streak.ToLocalDay(now(), loc)
	return streak.Compute(days, today), settings.Timezone, nil
}

// loadSettings fetches the user's settings, creating the default row on
// first access.
func (c *CheckinController) loadSettings(userID uint) (*models.UserSettings, error) {
	var settings models.UserSettings
	err := c.db.Where("user_id = ?", userID).First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	settings = models.DefaultSettings(userID)
	if err := c.db.Create(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := c.db.Where("user_id = ?", userID).First(&settings).Error; err == nil {
				return &settings, nil
			}
		}
		return nil, err
	}
	return &settings, nil
}

func streakCacheKey(userID uint) string {
	return "cache:streak:" + strconv.FormatUint(uint64(userID), 10)
}

func checkinResponse(ci models.Checkin) gin.H {
	return gin.H{
		"id":         ci.ID,
		"local_date": ci.LocalDate,
		"mood":       int8(ci.Mood),
		"mood_name":  ci.Mood.String(),
		"note":       ci.Content,
		"city":       ci.City,
		"country":    ci.Country,
		"lat":        ci.Lat,
		"lon":        ci.Lon,
		"created_at": ci.CreatedAt,
	}
}
