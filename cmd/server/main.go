package main

import (
	"log"

	"github.com/Myrhythm0106/myrhythmapp-sub012/internal"
	"github.com/Myrhythm0106/myrhythmapp-sub012/internal/api"
	"github.com/Myrhythm0106/myrhythmapp-sub012/internal/auth"
	"github.com/Myrhythm0106/myrhythmapp-sub012/internal/config"
	"github.com/Myrhythm0106/myrhythmapp-sub012/internal/reasoner"
	"github.com/Myrhythm0106/myrhythmapp-sub012/internal/service"
	"github.com/Myrhythm0106/myrhythmapp-sub012/internal/storage"
)

type app struct {
	logger      internal.Logger
	timelines   *service.TimelineService
	profiles    *service.ProfileService
	suggestions *service.SuggestService
}

func (a *app) Logger() internal.Logger              { return a.logger }
func (a *app) Timelines() *service.TimelineService  { return a.timelines }
func (a *app) Profiles() *service.ProfileService    { return a.profiles }
func (a *app) Suggestions() *service.SuggestService { return a.suggestions }

func main() {
	cfg := config.Load()

	logger, err := internal.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	repos, err := storage.NewRepositories(cfg, logger)
	if err != nil {
		logger.Fatalf("failed to init storage: %v", err)
	}
	defer repos.Close()

	var client reasoner.Client
	if cfg.ReasonerURL != "" {
		client = reasoner.NewHTTPClient(cfg.ReasonerURL, cfg.ReasonerAPIKey, cfg.ReasonerTimeout, logger)
	} else {
		logger.Warn("no reasoner configured; suggestions use the deterministic fallback only")
		client = reasoner.Disabled{}
	}

	a := &app{
		logger:      logger,
		timelines:   service.NewTimelineService(repos.Calendar, repos.Actions, repos.Commitments, logger),
		profiles:    service.NewProfileService(repos.Surveys, cfg.ProfileCacheTTL, logger),
		suggestions: service.NewSuggestService(client, logger),
	}

	var provider auth.Provider
	if cfg.Env == "development" {
		provider = auth.NewLocalAuthProvider(cfg.AuthToken, logger)
	} else {
		provider = auth.NewRemoteAuthProvider(cfg.AuthServiceURL, logger)
	}

	r := api.NewRouter(a, provider, cfg)

	logger.Infof("server running on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatalf("failed to start server: %v", err)
	}
}
