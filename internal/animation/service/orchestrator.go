package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/romariotrain/animation-platform/internal/animation/domain"
	"github.com/romariotrain/animation-platform/internal/animation/metrics"
	"github.com/romariotrain/animation-platform/internal/animation/models"
	"github.com/romariotrain/animation-platform/internal/animation/render"
	"github.com/romariotrain/animation-platform/internal/animation/repository"
	"github.com/romariotrain/animation-platform/internal/auth"
)

// Renderer is the two-phase render service contract. Failures are reported
// as *render.Error.
type Renderer interface {
	GenerateCode(ctx context.Context, prompt string, s models.Settings) (string, error)
	Render(ctx context.Context, code string, animationID uuid.UUID, s models.Settings) (string, error)
}

const genericUpstreamDetail = "render service error"

// Orchestrator drives one generation from PENDING to a terminal status.
type Orchestrator struct {
	animations repository.AnimationRepository
	users      repository.UserRepository
	renderer   Renderer
	metrics    *metrics.Collector
	logger     zerolog.Logger
	clock      func() time.Time
	idGen      func() uuid.UUID

	mu       sync.RWMutex
	draining bool
	inflight sync.WaitGroup
}

func NewOrchestrator(
	animations repository.AnimationRepository,
	users repository.UserRepository,
	renderer Renderer,
	m *metrics.Collector,
	logger zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		animations: animations,
		users:      users,
		renderer:   renderer,
		metrics:    m,
		logger:     logger.With().Str("component", "orchestrator").Logger(),
		clock:      time.Now,
		idGen:      uuid.New,
	}
}

// Generate runs the whole workflow synchronously and returns the COMPLETED
// animation, or a *models.GenerationError once the record is FAILED.
//
// One call is reserved on the user's counter before the record is created
// and released again if the workflow fails, so only COMPLETED generations
// consume quota. The workflow is detached from ctx cancellation: a client
// that disconnects does not leave a record in PENDING or PROCESSING.
func (o *Orchestrator) Generate(ctx context.Context, req models.GenerateRequest, user *models.User) (*models.Animation, error) {
	if user == nil || user.ID == uuid.Nil {
		return nil, models.ErrInvalidArgument
	}
	if !o.begin() {
		return nil, models.ErrUnavailable
	}
	defer o.inflight.Done()

	ctx = context.WithoutCancel(ctx)
	start := o.clock()

	if _, err := o.users.ReserveCall(ctx, user.ID); err != nil {
		var qe *models.QuotaExceededError
		if errors.As(err, &qe) {
			o.metrics.QuotaRejected(qe.Plan)
		}
		// Deleted after authentication: same answer the gateway gives.
		if errors.Is(err, models.ErrNotFound) {
			err = auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("reserve call: %w", err)
	}

	a := &models.Animation{
		ID:              o.idGen(),
		UserID:          user.ID,
		Title:           req.Title,
		Description:     req.Description,
		Prompt:          req.Prompt,
		Duration:        req.Settings.Duration,
		Resolution:      req.Settings.Resolution,
		FrameRate:       req.Settings.FrameRate,
		BackgroundColor: req.Settings.BackgroundColor,
		Status:          domain.Pending,
		CreatedAt:       start,
		UpdatedAt:       start,
	}
	log := o.logger.With().Str("animation_id", a.ID.String()).Str("user_id", user.ID.String()).Logger()

	if err := o.animations.Create(ctx, a); err != nil {
		o.release(ctx, log, user.ID)
		return nil, fmt.Errorf("create animation: %w", err)
	}
	log.Info().Str("to", string(domain.Pending)).Msg("animation created")

	code, err := o.renderer.GenerateCode(ctx, req.Prompt, req.Settings)
	if err != nil {
		return nil, o.fail(ctx, log, a, models.StageCodegen, err, start)
	}
	processing, err := o.animations.MarkProcessing(ctx, a.ID, code)
	if err != nil {
		return nil, o.fail(ctx, log, a, models.StageCodegen, fmt.Errorf("persist generated code: %w", err), start)
	}
	a = processing
	o.transitioned(log, domain.Pending, domain.Processing)

	videoPath, err := o.renderer.Render(ctx, code, a.ID, req.Settings)
	if err != nil {
		return nil, o.fail(ctx, log, a, models.StageRender, err, start)
	}
	completed, err := o.animations.MarkCompleted(ctx, a.ID, videoPath)
	if err != nil {
		return nil, o.fail(ctx, log, a, models.StageRender, fmt.Errorf("persist video path: %w", err), start)
	}
	o.transitioned(log, domain.Processing, domain.Completed)
	o.metrics.Finished(domain.Completed, o.clock().Sub(start))

	return completed, nil
}

func (o *Orchestrator) begin() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.draining {
		return false
	}
	o.inflight.Add(1)
	return true
}

// Drain refuses new generations and waits for the running ones to reach a
// terminal status. Stores must stay open until it returns.
func (o *Orchestrator) Drain(ctx context.Context) error {
	o.mu.Lock()
	o.draining = true
	o.mu.Unlock()

	done := make(chan struct{})
	go func() {
		o.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain: %w", ctx.Err())
	}
}

// fail records cause on the animation, gives the reserved call back and
// builds the error returned to the caller. cur is the last known state of
// the animation.
func (o *Orchestrator) fail(ctx context.Context, log zerolog.Logger, cur *models.Animation, stage models.Stage, cause error, start time.Time) error {
	recorded, public := describeFailure(stage, cause, o.metrics)
	log.Warn().Err(cause).Str("stage", string(stage)).Msg("generation failed")

	failed, err := o.animations.MarkFailed(ctx, cur.ID, recorded)
	if err != nil {
		log.Error().Err(err).Msg("failed to record FAILED status")
		failed = nil
	} else {
		o.transitioned(log, cur.Status, domain.Failed)
	}
	o.release(ctx, log, cur.UserID)
	o.metrics.Finished(domain.Failed, o.clock().Sub(start))

	return &models.GenerationError{
		Stage:     stage,
		Detail:    public,
		Animation: failed,
		Err:       cause,
	}
}

// describeFailure returns the detail stored on the animation and the detail
// shown to the client. Structured upstream messages win; otherwise the
// record keeps the full error text and the client gets a generic message.
func describeFailure(stage models.Stage, cause error, m *metrics.Collector) (recorded, public string) {
	var rerr *render.Error
	if !errors.As(cause, &rerr) {
		return cause.Error(), genericUpstreamDetail
	}
	m.UpstreamError(stage, rerr.Kind.String())

	if rerr.Kind == render.KindStatus && rerr.Detail != "" {
		return rerr.Detail, rerr.Detail
	}
	return rerr.Error(), genericUpstreamDetail
}

func (o *Orchestrator) release(ctx context.Context, log zerolog.Logger, userID uuid.UUID) {
	if err := o.users.ReleaseCall(ctx, userID); err != nil {
		log.Error().Err(err).Msg("failed to release reserved call")
	}
}

func (o *Orchestrator) transitioned(log zerolog.Logger, from, to domain.Status) {
	o.metrics.Transition(to)
	log.Info().Str("from", string(from)).Str("to", string(to)).Msg("status changed")
}
