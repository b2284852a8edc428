package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backcountry-crews/internal/forecast"
	"backcountry-crews/internal/zones"
)

// GetForecastsInput defines the query parameters for the forecasts endpoint
type GetForecastsInput struct {
	Zone string `form:"zone" binding:"required"` // Canonical zone id
	Days int    `form:"days"`                    // Lookback window in days; defaults to the configured window
}

// ForecastsResponse wraps the forecast list
type ForecastsResponse struct {
	Forecasts []forecast.View `json:"forecasts"`
}

// CombinedResponse wraps the date-grouped combined view
type CombinedResponse struct {
	Dates []forecast.DateGroup `json:"dates"`
}

// ActivitiesResponse lists the enabled activity surfaces
type ActivitiesResponse struct {
	Activities []string `json:"activities"`
}

// handleGetForecasts godoc
// @Summary Get recent forecasts for a zone
// @Description Returns a zone's recent daily forecasts, newest first, each annotated with a trend label and quick-take bullets. A store failure yields an empty list, not an error.
// @Tags forecasts
// @Produce json
// @Param zone query string true "Canonical zone id" Enums(northwest, southeast)
// @Param days query int false "Lookback window in days" minimum(1) example(7)
// @Success 200 {object} ForecastsResponse
// @Failure 400 {object} map[string]string
// @Router /forecasts [get]
func (app *App) handleGetForecasts(c *gin.Context) {
	var input GetForecastsInput

	// Bind and validate query parameters
	if err := c.ShouldBindQuery(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	zone := zones.ZoneID(input.Zone)
	if !zones.Valid(zone) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown zone: " + input.Zone})
		return
	}

	views := app.forecastService.GetForecasts(c.Request.Context(), zone, app.lookbackDays(input.Days))
	if views == nil {
		views = []forecast.View{}
	}
	c.JSON(http.StatusOK, ForecastsResponse{Forecasts: views})
}

// handleGetCombinedForecasts godoc
// @Summary Get both zones' forecasts grouped by date
// @Description Returns recent forecasts for both zones grouped by valid date, newest first, with null cells where a zone published nothing.
// @Tags forecasts
// @Produce json
// @Param days query int false "Lookback window in days" minimum(1) example(7)
// @Success 200 {object} CombinedResponse
// @Router /forecasts/combined [get]
func (app *App) handleGetCombinedForecasts(c *gin.Context) {
	var input struct {
		Days int `form:"days"`
	}
	if err := c.ShouldBindQuery(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	groups := app.forecastService.GetCombined(c.Request.Context(), app.lookbackDays(input.Days))
	if groups == nil {
		groups = []forecast.DateGroup{}
	}
	c.JSON(http.StatusOK, CombinedResponse{Dates: groups})
}

// handleGetActivities godoc
// @Summary Get enabled activity surfaces
// @Description Returns the activity types currently enabled by feature flags, in display order.
// @Tags activities
// @Produce json
// @Success 200 {object} ActivitiesResponse
// @Router /activities [get]
func (app *App) handleGetActivities(c *gin.Context) {
	c.JSON(http.StatusOK, ActivitiesResponse{
		Activities: app.flagService.EnabledActivities(c.Request.Context()),
	})
}

// lookbackDays falls back to the configured window when the query omits or
// zeroes the days parameter.
func (app *App) lookbackDays(days int) int {
	if days <= 0 {
		return app.cfg.App.ForecastDays
	}
	return days
}
