package httpapi

import (
	"time"

	"github.com/google/uuid"

	"github.com/romariotrain/animation-platform/internal/animation/domain"
	"github.com/romariotrain/animation-platform/internal/animation/models"
)

// envelope is the body of every JSON response under /api.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Details any    `json:"details,omitempty"`
	Usage   any    `json:"usage,omitempty"`
	Error   string `json:"error,omitempty"`
}

type GenerateAnimationRequest struct {
	Title           string  `json:"title" validate:"required,min=1,max=100"`
	Description     *string `json:"description" validate:"omitnil,max=500"`
	Prompt          string  `json:"prompt" validate:"required,min=10,max=1000"`
	Duration        float64 `json:"duration" validate:"gte=1,lte=60"`
	Resolution      string  `json:"resolution" validate:"oneof=480p 720p 1080p"`
	FrameRate       int     `json:"frameRate" validate:"oneof=24 30 60"`
	BackgroundColor string  `json:"backgroundColor" validate:"hexcolor6"`
}

// newGenerateAnimationRequest returns a request pre-filled with the
// rendering defaults; decoding a body over it keeps them for omitted keys.
func newGenerateAnimationRequest() GenerateAnimationRequest {
	return GenerateAnimationRequest{
		Duration:        models.DefaultDuration,
		Resolution:      string(models.DefaultResolution),
		FrameRate:       models.DefaultFrameRate,
		BackgroundColor: models.DefaultBackgroundColor,
	}
}

func (r GenerateAnimationRequest) toModel() models.GenerateRequest {
	return models.GenerateRequest{
		Title:       r.Title,
		Description: r.Description,
		Prompt:      r.Prompt,
		Settings: models.Settings{
			Duration:        r.Duration,
			Resolution:      models.Resolution(r.Resolution),
			FrameRate:       r.FrameRate,
			BackgroundColor: r.BackgroundColor,
		},
	}
}

type RegisterRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Username  string  `json:"username" validate:"required,alphanum,min=3,max=30"`
	Password  string  `json:"password" validate:"required,min=6"`
	FirstName *string `json:"firstName" validate:"omitnil,min=1,max=50"`
	LastName  *string `json:"lastName" validate:"omitnil,min=1,max=50"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"firstName" validate:"omitnil,min=1,max=50"`
	LastName  *string `json:"lastName" validate:"omitnil,min=1,max=50"`
}

type AnimationResponse struct {
	ID              uuid.UUID         `json:"id"`
	UserID          uuid.UUID         `json:"userId"`
	Title           string            `json:"title"`
	Description     *string           `json:"description"`
	Prompt          string            `json:"prompt"`
	Duration        float64           `json:"duration"`
	Resolution      models.Resolution `json:"resolution"`
	FrameRate       int               `json:"frameRate"`
	BackgroundColor string            `json:"backgroundColor"`
	ManimCode       *string           `json:"manimCode"`
	VideoPath       *string           `json:"videoPath"`
	Thumbnail       *string           `json:"thumbnail"`
	Status          domain.Status     `json:"status"`
	ErrorLog        *string           `json:"errorLog"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// AnimationSummary is the list projection; it leaves out the prompt, code
// and error detail.
type AnimationSummary struct {
	ID          uuid.UUID         `json:"id"`
	Title       string            `json:"title"`
	Description *string           `json:"description"`
	Status      domain.Status     `json:"status"`
	Duration    float64           `json:"duration"`
	Resolution  models.Resolution `json:"resolution"`
	VideoPath   *string           `json:"videoPath"`
	Thumbnail   *string           `json:"thumbnail"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type UserResponse struct {
	ID        uuid.UUID   `json:"id"`
	Email     string      `json:"email"`
	Username  string      `json:"username"`
	FirstName *string     `json:"firstName"`
	LastName  *string     `json:"lastName"`
	Plan      models.Plan `json:"plan"`
	APICalls  int         `json:"apiCalls"`
	MaxCalls  int         `json:"maxCalls"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

type UsageResponse struct {
	Plan            models.Plan `json:"plan"`
	APICalls        int         `json:"apiCalls"`
	MaxCalls        int         `json:"maxCalls"`
	RemainingCalls  int         `json:"remainingCalls"`
	TotalAnimations int         `json:"totalAnimations"`
}

type quotaUsage struct {
	Current int         `json:"current"`
	Limit   int         `json:"limit"`
	Plan    models.Plan `json:"plan"`
}

type animationData struct {
	Animation AnimationResponse `json:"animation"`
}

type animationListData struct {
	Animations []AnimationSummary `json:"animations"`
	Pagination Pagination         `json:"pagination"`
}

type userData struct {
	User UserResponse `json:"user"`
}

type sessionData struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

type usageData struct {
	Usage UsageResponse `json:"usage"`
}

func toAnimationResponse(a *models.Animation) AnimationResponse {
	return AnimationResponse{
		ID:              a.ID,
		UserID:          a.UserID,
		Title:           a.Title,
		Description:     a.Description,
		Prompt:          a.Prompt,
		Duration:        a.Duration,
		Resolution:      a.Resolution,
		FrameRate:       a.FrameRate,
		BackgroundColor: a.BackgroundColor,
		ManimCode:       a.GeneratedCode,
		VideoPath:       a.VideoPath,
		Thumbnail:       a.Thumbnail,
		Status:          a.Status,
		ErrorLog:        a.ErrorLog,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func toAnimationSummary(a models.Animation) AnimationSummary {
	return AnimationSummary{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Status:      a.Status,
		Duration:    a.Duration,
		Resolution:  a.Resolution,
		VideoPath:   a.VideoPath,
		Thumbnail:   a.Thumbnail,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Plan:      u.Plan,
		APICalls:  u.APICalls,
		MaxCalls:  u.MaxCalls,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
