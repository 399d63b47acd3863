package api

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Myrhythm0106/myrhythmapp-sub012/internal"
	"github.com/Myrhythm0106/myrhythmapp-sub012/internal/service"
)

// PostSuggestions ranks candidate time slots for the submitted task.
func PostSuggestions(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		var task service.TaskRequest
		if err := c.ShouldBindJSON(&task); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}

		// The context window includes a week of history so the reasoner's
		// recent-energy summary is not empty.
		window := service.ContextWindow(time.Now(), task.LookaheadDays)

		timeline, err := app.Timelines().BuildTimeline(c.Request.Context(), user.ID, &window)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to build timeline")
			return
		}

		profile, err := app.Profiles().Profile(c.Request.Context(), user.ID)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to load profile")
			return
		}

		candidates, fallback, err := app.Suggestions().Suggest(c.Request.Context(), &task, timeline, profile)
		if err != nil {
			if errors.Is(err, internal.ErrInvalidTask) {
				HandleError(c, app.Logger(), err, 400, "Task validation failed")
				return
			}
			if service.IsNoSlot(err) {
				HandleError(c, app.Logger(), err, 404, "No open slot; try a longer lookahead window or pick a time manually")
				return
			}
			HandleError(c, app.Logger(), err, 500, "Failed to build suggestions")
			return
		}

		meta := map[string]any{"fallback": fallback}
		if len(timeline.Warnings) > 0 {
			meta["warnings"] = timeline.Warnings
		}
		HandleSuccess(c, app.Logger(), candidates, meta)
	}
}
