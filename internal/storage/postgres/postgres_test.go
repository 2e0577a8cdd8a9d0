package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romariotrain/animation-platform/internal/animation/domain"
	"github.com/romariotrain/animation-platform/internal/animation/models"
	"github.com/romariotrain/animation-platform/internal/animation/repository"
)

var (
	_ repository.AnimationRepository = (*AnimationRepo)(nil)
	_ repository.UserRepository      = (*UserRepo)(nil)
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return sqlx.NewDb(db, "sqlmock"), mock
}

func q(s string) string {
	return regexp.QuoteMeta(s)
}

var animationCols = []string{
	"id", "user_id", "title", "description", "prompt", "duration", "resolution", "frame_rate",
	"background_color", "generated_code", "video_path", "error_log", "thumbnail", "status", "created_at", "updated_at",
}

func animationRow(rows *sqlmock.Rows, id, owner uuid.UUID, status domain.Status, code, video, errLog any) *sqlmock.Rows {
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	return rows.AddRow(
		id.String(), owner.String(), "Orbit", nil, "a moon orbiting a planet", 5.0, "720p", 30,
		"#000000", code, video, errLog, nil, string(status), now, now,
	)
}

var userCols = []string{"id", "email", "username", "first_name", "last_name", "plan", "api_calls", "max_calls", "created_at", "updated_at"}

func userRow(rows *sqlmock.Rows, id uuid.UUID, apiCalls, maxCalls int) *sqlmock.Rows {
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	return rows.AddRow(id.String(), "ada@example.com", "ada", "Ada", nil, "FREE", apiCalls, maxCalls, now, now)
}

func TestAnimationRepo_MarkProcessingWritesOutbox(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAnimationRepo(db, NewOutboxRepo(db))
	id, owner := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT status, user_id FROM animations WHERE id = $1 FOR UPDATE")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"status", "user_id"}).AddRow("PENDING", owner.String()))
	mock.ExpectQuery(q("SET status = $2, generated_code = $3, updated_at = NOW()")).
		WithArgs(id, domain.Processing, "scene code").
		WillReturnRows(animationRow(sqlmock.NewRows(animationCols), id, owner, domain.Processing, "scene code", nil, nil))
	mock.ExpectExec(q("INSERT INTO outbox")).
		WithArgs(sqlmock.AnyArg(), "AnimationStatusChanged", id, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	a, err := repo.MarkProcessing(context.Background(), id, "scene code")
	require.NoError(t, err)
	assert.Equal(t, domain.Processing, a.Status)
	require.NotNil(t, a.GeneratedCode)
	assert.Equal(t, "scene code", *a.GeneratedCode)
	assert.Nil(t, a.VideoPath)
	assert.Equal(t, owner, a.UserID)
}

func TestAnimationRepo_TransitionFromTerminalIsRejected(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAnimationRepo(db, NewOutboxRepo(db))
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(q("FOR UPDATE")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"status", "user_id"}).AddRow("COMPLETED", uuid.NewString()))
	mock.ExpectRollback()

	_, err := repo.MarkFailed(context.Background(), id, "late")
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestAnimationRepo_TransitionMissingRow(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAnimationRepo(db, NewOutboxRepo(db))
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(q("FOR UPDATE")).WithArgs(id).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.MarkCompleted(context.Background(), id, "/v.mp4")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestAnimationRepo_OutboxFailureRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAnimationRepo(db, NewOutboxRepo(db))
	id, owner := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(q("FOR UPDATE")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"status", "user_id"}).AddRow("PROCESSING", owner.String()))
	mock.ExpectQuery(q("SET status = $2, video_path = $3")).
		WillReturnRows(animationRow(sqlmock.NewRows(animationCols), id, owner, domain.Completed, "code", "/v.mp4", nil))
	mock.ExpectExec(q("INSERT INTO outbox")).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.MarkCompleted(context.Background(), id, "/v.mp4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert outbox")
}

func TestAnimationRepo_CreateDuplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAnimationRepo(db, NewOutboxRepo(db))

	mock.ExpectExec(q("INSERT INTO animations")).WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &models.Animation{ID: uuid.New(), Status: domain.Pending})
	require.ErrorIs(t, err, models.ErrConflict)
}

func TestAnimationRepo_ListForOwner(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAnimationRepo(db, NewOutboxRepo(db))
	owner := uuid.New()
	failed := domain.Failed

	mock.ExpectQuery(q("SELECT COUNT(*) FROM animations WHERE user_id = $1 AND ($2::text IS NULL OR status = $2)")).
		WithArgs(owner, "FAILED").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	rows := sqlmock.NewRows(animationCols)
	animationRow(rows, uuid.New(), owner, domain.Failed, nil, nil, "boom")
	animationRow(rows, uuid.New(), owner, domain.Failed, "code", nil, "boom")
	mock.ExpectQuery(q("ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4")).
		WithArgs(owner, "FAILED", 10, 10).
		WillReturnRows(rows)

	items, total, err := repo.ListForOwner(context.Background(), owner, models.ListFilter{Status: &failed, Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	require.Len(t, items, 2)
	assert.Equal(t, domain.Failed, items[0].Status)
	require.NotNil(t, items[1].ErrorLog)
}

func TestAnimationRepo_ListWithoutFilterPassesNull(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAnimationRepo(db, NewOutboxRepo(db))
	owner := uuid.New()

	mock.ExpectQuery(q("SELECT COUNT(*)")).
		WithArgs(owner, nil).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(q("ORDER BY created_at DESC")).
		WithArgs(owner, nil, models.DefaultLimit, 0).
		WillReturnRows(sqlmock.NewRows(animationCols))

	items, total, err := repo.ListForOwner(context.Background(), owner, models.ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestAnimationRepo_GetForOwnerNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAnimationRepo(db, NewOutboxRepo(db))
	id, owner := uuid.New(), uuid.New()

	mock.ExpectQuery(q("FROM animations WHERE id = $1 AND user_id = $2")).
		WithArgs(id, owner).
		WillReturnRows(sqlmock.NewRows(animationCols))

	_, err := repo.GetForOwner(context.Background(), id, owner)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestAnimationRepo_DeleteForOwner(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAnimationRepo(db, NewOutboxRepo(db))
	id, owner := uuid.New(), uuid.New()

	mock.ExpectExec(q("DELETE FROM animations WHERE id = $1 AND user_id = $2")).
		WithArgs(id, owner).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("DELETE FROM animations")).
		WithArgs(id, owner).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.DeleteForOwner(context.Background(), id, owner))
	require.ErrorIs(t, repo.DeleteForOwner(context.Background(), id, owner), models.ErrNotFound)
}

func TestUserRepo_ReserveCall(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)
	id := uuid.New()

	mock.ExpectQuery(q("SET api_calls = api_calls + 1")).
		WithArgs(id).
		WillReturnRows(userRow(sqlmock.NewRows(userCols), id, 4, 10))

	u, err := repo.ReserveCall(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 4, u.APICalls)
	assert.Equal(t, models.PlanFree, u.Plan)
}

func TestUserRepo_ReserveCallAtCeiling(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)
	id := uuid.New()

	mock.ExpectQuery(q("api_calls < max_calls")).WithArgs(id).WillReturnRows(sqlmock.NewRows(userCols))
	mock.ExpectQuery(q("FROM users WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(userRow(sqlmock.NewRows(userCols), id, 10, 10))

	_, err := repo.ReserveCall(context.Background(), id)
	require.ErrorIs(t, err, models.ErrQuotaExceeded)
	var qe *models.QuotaExceededError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, 10, qe.Current)
	assert.Equal(t, 10, qe.Limit)
}

func TestUserRepo_ReserveCallUnknownUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)
	id := uuid.New()

	mock.ExpectQuery(q("api_calls < max_calls")).WithArgs(id).WillReturnRows(sqlmock.NewRows(userCols))
	mock.ExpectQuery(q("FROM users WHERE id = $1")).WithArgs(id).WillReturnRows(sqlmock.NewRows(userCols))

	_, err := repo.ReserveCall(context.Background(), id)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestUserRepo_ReleaseCall(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)
	id := uuid.New()

	mock.ExpectExec(q("SET api_calls = GREATEST(api_calls - 1, 0)")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("GREATEST(api_calls - 1, 0)")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.ReleaseCall(context.Background(), id))
	require.ErrorIs(t, repo.ReleaseCall(context.Background(), id), models.ErrNotFound)
}

func TestUserRepo_CreateDuplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(q("INSERT INTO users")).WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := repo.Create(context.Background(), &models.Credentials{User: models.User{ID: uuid.New()}})
	require.ErrorIs(t, err, models.ErrConflict)
}

func TestUserRepo_GetCredentialsByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)
	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery(q("WHERE lower(email) = lower($1)")).
		WithArgs("Ada@Example.com").
		WillReturnRows(sqlmock.NewRows(append(append([]string{}, userCols...), "password_hash")).
			AddRow(id.String(), "ada@example.com", "ada", nil, nil, "PRO", 1, 100, now, now, "$2a$12$hash"))

	c, err := repo.GetCredentialsByEmail(context.Background(), "Ada@Example.com")
	require.NoError(t, err)
	assert.Equal(t, id, c.ID)
	assert.Equal(t, models.PlanPro, c.Plan)
	assert.Equal(t, "$2a$12$hash", c.PasswordHash)
}

func TestUserRepo_UpdateProfile(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)
	id := uuid.New()
	first := "Ada"

	mock.ExpectQuery(q("SET first_name = COALESCE($2, first_name)")).
		WithArgs(id, "Ada", nil).
		WillReturnRows(userRow(sqlmock.NewRows(userCols), id, 0, 10))

	u, err := repo.UpdateProfile(context.Background(), id, &first, nil)
	require.NoError(t, err)
	require.NotNil(t, u.FirstName)
	assert.Equal(t, "Ada", *u.FirstName)
}

func TestOutboxRepo_PendingAndMark(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOutboxRepo(db)
	eventID, aggID := uuid.New(), uuid.New()

	mock.ExpectQuery(q("WHERE processed_at IS NULL")).
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "event_type", "aggregate_id", "payload", "occurred_at"}).
			AddRow(int64(7), eventID.String(), "AnimationStatusChanged", aggID.String(), []byte(`{"to":"COMPLETED"}`), time.Now()))
	mock.ExpectExec(q("SET processed_at = NOW()")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	records, err := repo.GetPending(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, eventID, records[0].EventID)
	assert.Equal(t, aggID, records[0].AggregateID)
	assert.JSONEq(t, `{"to":"COMPLETED"}`, string(records[0].Payload))

	require.NoError(t, repo.MarkProcessed(context.Background(), 7))
}

func TestMigrate(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	for range schema {
		mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectCommit()

	require.NoError(t, Migrate(context.Background(), db))
}

func TestMigrate_StopsOnError(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(q("CREATE TABLE IF NOT EXISTS users")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q("CREATE UNIQUE INDEX")).WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	err := Migrate(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrate step 2")
}
