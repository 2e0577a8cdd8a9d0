package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/romariotrain/animation-platform/internal/animation/domain"
	"github.com/romariotrain/animation-platform/internal/animation/models"
)

const animationColumns = `id, user_id, title, description, prompt, duration, resolution, frame_rate,
	background_color, generated_code, video_path, error_log, thumbnail, status, created_at, updated_at`

// AnimationRepo persists animations. Every status change is committed
// together with an AnimationStatusChanged outbox row.
type AnimationRepo struct {
	db     *sqlx.DB
	outbox *OutboxRepo
}

func NewAnimationRepo(db *sqlx.DB, outbox *OutboxRepo) *AnimationRepo {
	return &AnimationRepo{db: db, outbox: outbox}
}

func (r *AnimationRepo) Create(ctx context.Context, a *models.Animation) error {
	const q = `
		INSERT INTO animations (id, user_id, title, description, prompt, duration, resolution, frame_rate,
			background_color, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, q,
		a.ID, a.UserID, a.Title, a.Description, a.Prompt, a.Duration, a.Resolution, a.FrameRate,
		a.BackgroundColor, a.Status, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrConflict
		}
		return fmt.Errorf("animation create: %w", err)
	}
	return nil
}

func (r *AnimationRepo) GetForOwner(ctx context.Context, id, ownerID uuid.UUID) (*models.Animation, error) {
	q := `SELECT ` + animationColumns + ` FROM animations WHERE id = $1 AND user_id = $2`

	var a models.Animation
	if err := r.db.GetContext(ctx, &a, q, id, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("animation get: %w", err)
	}
	return &a, nil
}

func (r *AnimationRepo) ListForOwner(ctx context.Context, ownerID uuid.UUID, f models.ListFilter) ([]models.Animation, int, error) {
	const where = ` FROM animations WHERE user_id = $1 AND ($2::text IS NULL OR status = $2)`
	f = f.Normalize()

	var status sql.NullString
	if f.Status != nil {
		status = sql.NullString{String: string(*f.Status), Valid: true}
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*)`+where, ownerID, status); err != nil {
		return nil, 0, fmt.Errorf("animation count: %w", err)
	}

	items := []models.Animation{}
	q := `SELECT ` + animationColumns + where + ` ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4`
	if err := r.db.SelectContext(ctx, &items, q, ownerID, status, f.Limit, f.Offset()); err != nil {
		return nil, 0, fmt.Errorf("animation list: %w", err)
	}
	return items, total, nil
}

func (r *AnimationRepo) CountForOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM animations WHERE user_id = $1`, ownerID); err != nil {
		return 0, fmt.Errorf("animation count: %w", err)
	}
	return n, nil
}

func (r *AnimationRepo) DeleteForOwner(ctx context.Context, id, ownerID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM animations WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("animation delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("animation delete: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *AnimationRepo) MarkProcessing(ctx context.Context, id uuid.UUID, generatedCode string) (*models.Animation, error) {
	return r.transition(ctx, id, domain.Processing, "generated_code", generatedCode)
}

func (r *AnimationRepo) MarkCompleted(ctx context.Context, id uuid.UUID, videoPath string) (*models.Animation, error) {
	return r.transition(ctx, id, domain.Completed, "video_path", videoPath)
}

func (r *AnimationRepo) MarkFailed(ctx context.Context, id uuid.UUID, detail string) (*models.Animation, error) {
	return r.transition(ctx, id, domain.Failed, "error_log", detail)
}

// transition locks the row, checks the move against the state machine,
// writes status and column together and records the outbox event. column is
// always one of the constants passed by the Mark methods.
func (r *AnimationRepo) transition(ctx context.Context, id uuid.UUID, to domain.Status, column, value string) (*models.Animation, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer rollback(tx)

	var cur struct {
		Status domain.Status `db:"status"`
		UserID uuid.UUID     `db:"user_id"`
	}
	const lockQ = `SELECT status, user_id FROM animations WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &cur, lockQ, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("lock animation: %w", err)
	}
	if err := domain.ValidateTransition(cur.Status, to); err != nil {
		return nil, err
	}

	updateQ := fmt.Sprintf(`
		UPDATE animations
		SET status = $2, %s = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, column, animationColumns)

	var a models.Animation
	if err := tx.GetContext(ctx, &a, updateQ, id, to, value); err != nil {
		return nil, fmt.Errorf("update animation status: %w", err)
	}

	if err := r.outbox.Add(ctx, tx, models.NewAnimationStatusChanged(id, cur.UserID, cur.Status, to)); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &a, nil
}
