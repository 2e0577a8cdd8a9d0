package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/romariotrain/animation-platform/internal/animation/domain"
)

type Resolution string

const (
	Resolution480p  Resolution = "480p"
	Resolution720p  Resolution = "720p"
	Resolution1080p Resolution = "1080p"
)

// Rendering defaults applied when a request leaves a setting out.
const (
	DefaultDuration        = 5.0
	DefaultResolution      = Resolution720p
	DefaultFrameRate       = 30
	DefaultBackgroundColor = "#000000"
)

// Settings are the rendering parameters forwarded to both render-service calls.
type Settings struct {
	Duration        float64
	Resolution      Resolution
	FrameRate       int
	BackgroundColor string
}

// GenerateRequest is an already validated generation request.
type GenerateRequest struct {
	Title       string
	Description *string
	Prompt      string
	Settings    Settings
}

type Animation struct {
	ID              uuid.UUID     `db:"id"`
	UserID          uuid.UUID     `db:"user_id"`
	Title           string        `db:"title"`
	Description     *string       `db:"description"`
	Prompt          string        `db:"prompt"`
	Duration        float64       `db:"duration"`
	Resolution      Resolution    `db:"resolution"`
	FrameRate       int           `db:"frame_rate"`
	BackgroundColor string        `db:"background_color"`
	GeneratedCode   *string       `db:"generated_code"`
	VideoPath       *string       `db:"video_path"`
	ErrorLog        *string       `db:"error_log"`
	Thumbnail       *string       `db:"thumbnail"`
	Status          domain.Status `db:"status"`
	CreatedAt       time.Time     `db:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at"`
}

func (a *Animation) Settings() Settings {
	return Settings{
		Duration:        a.Duration,
		Resolution:      a.Resolution,
		FrameRate:       a.FrameRate,
		BackgroundColor: a.BackgroundColor,
	}
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps (page-1)*limit far inside int range.
	MaxPage = 1_000_000
)

// ListFilter selects one page of a user's animations, newest first.
type ListFilter struct {
	Status *domain.Status
	Page   int
	Limit  int
}

func (f ListFilter) Normalize() ListFilter {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Page > MaxPage {
		f.Page = MaxPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	return f
}

func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type AnimationPage struct {
	Items []Animation
	Total int
	Page  int
	Limit int
}

func (p AnimationPage) Pages() int {
	if p.Limit <= 0 {
		return 0
	}
	return (p.Total + p.Limit - 1) / p.Limit
}
