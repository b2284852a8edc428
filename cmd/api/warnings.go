package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	_ "backcountry-crews/internal/warning" // imported for swagger type definitions
)

// handleGetWarnings godoc
// @Summary Get active avalanche warnings
// @Description Returns at most one active warning per forecast zone, deduplicated by severity. Responds 200 with an empty list and an error string when the upstream center is unreachable.
// @Tags warnings
// @Produce json
// @Success 200 {object} warning.Result
// @Router /warnings [get]
func (app *App) handleGetWarnings(c *gin.Context) {
	result := app.warningService.GetActiveWarnings(c.Request.Context())
	c.JSON(http.StatusOK, result)
}
