package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Myrhythm0106/myrhythmapp-sub012/internal/auth"
	"github.com/Myrhythm0106/myrhythmapp-sub012/internal/config"
)

// NewRouter assembles the engine's HTTP surface. Everything except
// /health sits behind token auth.
func NewRouter(app App, provider auth.Provider, cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	protected := r.Group("/")
	protected.Use(auth.Middleware(provider, cfg))
	protected.GET("/timeline", GetTimeline(app))
	protected.GET("/profile", GetProfile(app))
	protected.POST("/profile/survey", PostSurvey(app))
	protected.POST("/suggestions", PostSuggestions(app))

	return r
}
