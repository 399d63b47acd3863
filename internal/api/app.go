package api

import (
	"github.com/Myrhythm0106/myrhythmapp-sub012/internal"
	"github.com/Myrhythm0106/myrhythmapp-sub012/internal/service"
)

type App interface {
	Logger() internal.Logger
	Timelines() *service.TimelineService
	Profiles() *service.ProfileService
	Suggestions() *service.SuggestService
}
