package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Myrhythm0106/myrhythmapp-sub012/internal"
)

func GetProfile(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		profile, err := app.Profiles().Profile(c.Request.Context(), user.ID)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to load profile")
			return
		}

		HandleSuccess(c, app.Logger(), profile, nil)
	}
}

type SurveyRequest struct {
	Answers map[string]string `json:"answers" binding:"required"`
}

// PostSurvey stores a completed survey and returns the freshly derived
// profile.
func PostSurvey(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		var body SurveyRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON: answers required")
			return
		}

		survey, err := app.Profiles().SubmitSurvey(c.Request.Context(), user.ID, body.Answers)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to save survey")
			return
		}

		profile, err := app.Profiles().Profile(c.Request.Context(), user.ID)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to derive profile")
			return
		}

		HandleSuccess(c, app.Logger(), profile, map[string]any{"survey_id": survey.ID})
	}
}
