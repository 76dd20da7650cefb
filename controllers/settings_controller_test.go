package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fiveamclub/fiveam/models"
)

func settingsRouter(db *gorm.DB, userID uint) *gin.Engine {
	r := gin.New()
	s := NewSettingsController(db)
	g := r.Group("/settings", asUser(userID))
	g.GET("", s.Get)
	g.PUT("", s.Update)
	return r
}

func TestSettingsDefaultsOnFirstRead(t *testing.T) {
	db := openTestDB(t)
	user := createUser(t, db, "alice")
	r := settingsRouter(db, user.ID)

	w := doJSON(r, "GET", "/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.UserSettings
	decodeData(t, w, &got)
	assert.Equal(t, models.DefaultCheckinStart, got.CheckinStartTime)
	assert.Equal(t, models.DefaultCheckinEnd, got.CheckinEndTime)
	assert.Equal(t, models.DefaultTimezone, got.Timezone)

	var count int64
	require.NoError(t, db.Model(&models.UserSettings{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSettingsUpdate(t *testing.T) {
	db := openTestDB(t)
	user := createUser(t, db, "bob")
	r := settingsRouter(db, user.ID)

	w := doJSON(r, "PUT", "/settings", gin.H{
		"checkin_start_time": "06:00",
		"checkin_end_time":   "08:30",
		"timezone":           "Europe/Berlin",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var settings models.UserSettings
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&settings).Error)
	assert.Equal(t, "06:00", settings.CheckinStartTime)
	assert.Equal(t, "08:30", settings.CheckinEndTime)
	assert.Equal(t, "Europe/Berlin", settings.Timezone)
}

func TestSettingsUpdateRejectsShortWindow(t *testing.T) {
	db := openTestDB(t)
	user := createUser(t, db, "carol")
	r := settingsRouter(db, user.ID)

	w := doJSON(r, "PUT", "/settings", gin.H{
		"checkin_start_time": "05:00",
		"checkin_end_time":   "05:59",
		"timezone":           "UTC",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 40022, decodeEnvelope(t, w).Code)
}

func TestSettingsUpdateRejectsMidnightWrap(t *testing.T) {
	db := openTestDB(t)
	user := createUser(t, db, "dave")
	r := settingsRouter(db, user.ID)

	w := doJSON(r, "PUT", "/settings", gin.H{
		"checkin_start_time": "23:00",
		"checkin_end_time":   "01:00",
		"timezone":           "UTC",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSettingsUpdateRejectsUnknownTimezone(t *testing.T) {
	db := openTestDB(t)
	user := createUser(t, db, "erin")
	r := settingsRouter(db, user.ID)

	w := doJSON(r, "PUT", "/settings", gin.H{
		"checkin_start_time": "05:00",
		"checkin_end_time":   "07:00",
		"timezone":           "Atlantis/Lost",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 40023, decodeEnvelope(t, w).Code)
}

func TestUpdatedWindowGovernsAdmission(t *testing.T) {
	db := openTestDB(t)
	user := createUser(t, db, "frank")

	sr := settingsRouter(db, user.ID)
	w := doJSON(sr, "PUT", "/settings", gin.H{
		"checkin_start_time": "20:00",
		"checkin_end_time":   "22:00",
		"timezone":           "UTC",
	})
	require.Equal(t, http.StatusOK, w.Code)

	cr := checkinRouter(db, user.ID)

	// Old default window no longer admits.
	freeze(t, time.Date(2026, 3, 10, 5, 30, 0, 0, time.UTC))
	w = doJSON(cr, "POST", "/checkins", gin.H{"mood": 1})
	assert.Equal(t, http.StatusForbidden, w.Code)

	freeze(t, time.Date(2026, 3, 10, 20, 30, 0, 0, time.UTC))
	w = doJSON(cr, "POST", "/checkins", gin.H{"mood": 1})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
