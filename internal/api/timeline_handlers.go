package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Myrhythm0106/myrhythmapp-sub012/internal"
)

// GetTimeline returns the user's merged timeline, optionally clipped to
// [from, to) given as RFC3339 query params.
func GetTimeline(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		var window *internal.Window
		fromRaw := c.Query("from")
		toRaw := c.Query("to")
		if fromRaw != "" || toRaw != "" {
			window = &internal.Window{}
			var err error
			if fromRaw != "" {
				window.Start, err = time.Parse(time.RFC3339, fromRaw)
				if err != nil {
					HandleError(c, app.Logger(), err, 400, "Invalid 'from' timestamp")
					return
				}
			}
			if toRaw != "" {
				window.End, err = time.Parse(time.RFC3339, toRaw)
				if err != nil {
					HandleError(c, app.Logger(), err, 400, "Invalid 'to' timestamp")
					return
				}
			}
		}

		timeline, err := app.Timelines().BuildTimeline(c.Request.Context(), user.ID, window)
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Failed to build timeline")
			return
		}

		var meta map[string]any
		if len(timeline.Warnings) > 0 {
			meta = map[string]any{"warnings": timeline.Warnings}
		}
		HandleSuccess(c, app.Logger(), timeline, meta)
	}
}
