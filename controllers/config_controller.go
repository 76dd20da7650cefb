package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/fiveamclub/fiveam/models"
	"github.com/fiveamclub/fiveam/utils"
)

// ConfigController exposes client bootstrap data.
type ConfigController struct{}

// NewConfigController creates a new controller instance.
func NewConfigController() *ConfigController {
	return &ConfigController{}
}

// App returns the static values a client needs before login: the mood
// vocabulary and the default check-in window.
func (c *ConfigController) App(ctx *gin.Context) {
	moods := make([]gin.H, 0, 5)
	for m := models.MoodHappy; m <= models.MoodThinking; m++ {
		moods = append(moods, gin.H{"value": int8(m), "name": m.String()})
	}

	utils.Success(ctx, gin.H{
		"moods":                 moods,
		"default_checkin_start": models.DefaultCheckinStart,
		"default_checkin_end":   models.DefaultCheckinEnd,
		"default_timezone":      models.DefaultTimezone,
	})
}
