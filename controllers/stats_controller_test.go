package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiveamclub/fiveam/middleware"
	"github.com/fiveamclub/fiveam/utils"
)

func TestSiteStats(t *testing.T) {
	db := openTestDB(t)
	createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	seedCheckin(t, db, bob.ID, "2026-03-10")

	utils.InvalidateByPrefix(statsCacheKey)

	r := gin.New()
	r.GET("/stats", NewStatsController(db).Site)

	w := doJSON(r, "GET", "/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Users         int64 `json:"users"`
		TotalCheckins int64 `json:"total_checkins"`
	}
	decodeData(t, w, &got)
	assert.EqualValues(t, 2, got.Users)
	assert.EqualValues(t, 1, got.TotalCheckins)
}

func TestSiteStatsCountsTodaysPageViews(t *testing.T) {
	db := openTestDB(t)

	r := gin.New()
	r.Use(middleware.PageViewRecorder(db))
	r.GET("/config/app", NewConfigController().App)
	r.GET("/stats", NewStatsController(db).Site)

	// One recorded request; the recorder keys the row at local
	// midnight and the stats read must find it whatever the server's
	// zone is.
	w := doJSON(r, "GET", "/config/app", nil)
	require.Equal(t, http.StatusOK, w.Code)

	utils.InvalidateByPrefix(statsCacheKey)
	w = doJSON(r, "GET", "/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		PageViewsToday int64 `json:"page_views_today"`
	}
	decodeData(t, w, &got)
	assert.EqualValues(t, 1, got.PageViewsToday)
}

func TestAppConfig(t *testing.T) {
	r := gin.New()
	r.GET("/config/app", NewConfigController().App)

	w := doJSON(r, "GET", "/config/app", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Moods []struct {
			Value int8   `json:"value"`
			Name  string `json:"name"`
		} `json:"moods"`
		DefaultStart string `json:"default_checkin_start"`
		DefaultEnd   string `json:"default_checkin_end"`
	}
	decodeData(t, w, &got)
	require.Len(t, got.Moods, 5)
	assert.Equal(t, "happy", got.Moods[0].Name)
	assert.Equal(t, "thinking", got.Moods[4].Name)
	assert.Equal(t, "05:00", got.DefaultStart)
	assert.Equal(t, "06:00", got.DefaultEnd)
}
