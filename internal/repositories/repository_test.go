package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"recruitsync_backend/internal/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	return openMockDB(t, sqlDB), mock
}

// newRecordingMockDB matches every statement and keeps its SQL text.
func newRecordingMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *[]string) {
	t.Helper()

	var statements []string
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherFunc(
		func(_, actual string) error {
			statements = append(statements, actual)
			return nil
		},
	)))
	require.NoError(t, err)
	return openMockDB(t, sqlDB), mock, &statements
}

func openMockDB(t *testing.T, sqlDB *sql.DB) *gorm.DB {
	t.Helper()
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestConnectionRepository_RecordSyncIsAtomicIncrement(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConnectionRepository(db)

	mock.ExpectExec(`UPDATE "platform_connections" SET .*"total_synced"=total_synced \+ \$\d`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	now := time.Now()
	require.NoError(t, repo.RecordSync(context.Background(), "conn-1", 3, &now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnectionRepository_RecordSyncNothingToDo(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConnectionRepository(db)

	require.NoError(t, repo.RecordSync(context.Background(), "conn-1", 0, nil))
	assert.NoError(t, mock.ExpectationsWereMet(), "no statement is issued")
}

func TestConnectionRepository_ClearCredentials(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConnectionRepository(db)

	mock.ExpectExec(`UPDATE "platform_connections" SET "api_key"=\$1,"oauth_provider"=\$2,"refresh_token"=\$3,"status"=\$4,"token_expires_at"=\$5,"token_scopes"=\$6`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ClearCredentials(context.Background(), "conn-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnectionRepository_UpdateStatusNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConnectionRepository(db)

	mock.ExpectExec(`UPDATE "platform_connections" SET "status"=\$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", models.ConnectionStatusPaused)
	assert.ErrorIs(t, err, ErrConnectionNotFound)
}

func TestConnectionRepository_UpdateTokens(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConnectionRepository(db)

	mock.ExpectExec(`UPDATE "platform_connections" SET "api_key"=\$1,"refresh_token"=\$2,"token_expires_at"=\$3`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateTokens(context.Background(), "conn-1", models.OAuthCredential{
		Token:        "AQ-new",
		RefreshToken: "r2",
		ExpiresAt:    time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnectionRepository_UpdateLeavesSyncCountersAlone(t *testing.T) {
	db, mock, statements := newRecordingMockDB(t)
	repo := NewConnectionRepository(db)

	mock.ExpectExec("UPDATE").WillReturnResult(sqlmock.NewResult(0, 1))

	now := time.Now()
	conn := &models.PlatformConnection{
		Name:        "LinkedIn Recruiter",
		Type:        models.PlatformTypePremium,
		Status:      models.ConnectionStatusActive,
		TotalSynced: 7,
		LastSyncAt:  &now,
		ConnectedAt: &now,
	}
	conn.ID = "conn-1"
	conn.SetAPIKey("AQ-reconnected")

	require.NoError(t, repo.Update(context.Background(), conn))
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, *statements, 1)
	stmt := (*statements)[0]
	assert.Contains(t, stmt, `UPDATE "platform_connections" SET`)
	assert.Contains(t, stmt, `"api_key"=`)
	assert.Contains(t, stmt, `"status"=`)
	assert.Contains(t, stmt, `"connected_at"=`)
	assert.NotContains(t, stmt, `"total_synced"`)
	assert.NotContains(t, stmt, `"last_sync_at"`)
	assert.NotContains(t, stmt, `"created_at"`)
}

func TestConnectionRepository_UpdateTokensKeepsStoredExpiry(t *testing.T) {
	db, mock, statements := newRecordingMockDB(t)
	repo := NewConnectionRepository(db)

	mock.ExpectExec("UPDATE").WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateTokens(context.Background(), "conn-1", models.OAuthCredential{Token: "AQ-new"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, *statements, 1)
	stmt := (*statements)[0]
	assert.Contains(t, stmt, `"api_key"=`)
	assert.NotContains(t, stmt, `"token_expires_at"`)
	assert.NotContains(t, stmt, `"refresh_token"`)
}

func TestCandidateRepository_ExistsByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCandidateRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "candidates" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "candidates" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	exists, err := repo.ExistsByEmail(context.Background(), "jane@x.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail(context.Background(), "new@x.com")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func newSyncedCandidate(email string) *models.Candidate {
	return &models.Candidate{
		FirstName: "Jane",
		Email:     email,
		Source:    "Indeed",
		Status:    models.CandidateStatusNew,
		AppliedAt: time.Now(),
	}
}

const insertIgnoringEmailConflict = `INSERT INTO "candidates" .* ON CONFLICT \("email"\) DO NOTHING`

func TestCandidateRepository_CreateIfAbsentInserts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCandidateRepository(db)

	mock.ExpectExec(insertIgnoringEmailConflict).WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := repo.CreateIfAbsent(context.Background(), newSyncedCandidate("jane@x.com"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateRepository_CreateIfAbsentConflictIsNotAnError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCandidateRepository(db)

	mock.ExpectExec(insertIgnoringEmailConflict).WillReturnResult(sqlmock.NewResult(0, 0))

	created, err := repo.CreateIfAbsent(context.Background(), newSyncedCandidate("jane@x.com"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateRepository_CreateIfAbsentDuplicateKey(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCandidateRepository(db)

	mock.ExpectExec(insertIgnoringEmailConflict).WillReturnError(gorm.ErrDuplicatedKey)

	created, err := repo.CreateIfAbsent(context.Background(), newSyncedCandidate("jane@x.com"))
	require.NoError(t, err)
	assert.False(t, created)
}

func TestCandidateRepository_CreateIfAbsentOtherErrors(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCandidateRepository(db)

	boom := errors.New("connection reset")
	mock.ExpectExec(insertIgnoringEmailConflict).WillReturnError(boom)

	created, err := repo.CreateIfAbsent(context.Background(), newSyncedCandidate("jane@x.com"))
	assert.ErrorIs(t, err, boom)
	assert.False(t, created)
}

func TestCandidateRepository_UpdateStatusConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCandidateRepository(db)

	mock.ExpectExec(`UPDATE "candidates" SET "status"=\$1,"updated_at"=\$2 WHERE id = \$3 AND status = \$4`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "cand-1", models.CandidateStatusNew, models.CandidateStatusScreening)
	assert.ErrorIs(t, err, ErrStatusConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHireTx_MarkHiredOnlyOnce(t *testing.T) {
	db, mock := newMockDB(t)
	tx := &gormHireTx{db: db}

	mock.ExpectExec(`UPDATE "candidates" SET "hired_at"=\$1,"status"=\$2,"updated_at"=\$3 WHERE id = \$4 AND status <> \$5`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "candidates" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, tx.MarkHired("cand-1", time.Now()))
	assert.ErrorIs(t, tx.MarkHired("cand-1", time.Now()), ErrAlreadyHired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHireRepository_RollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewHireRepository(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := repo.WithinTransaction(context.Background(), func(tx HireTx) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHireTx_CreateTasksEmptyIsNoop(t *testing.T) {
	db, mock := newMockDB(t)
	tx := &gormHireTx{db: db}

	require.NoError(t, tx.CreateTasks(nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNormalizePage(t *testing.T) {
	page, size := NormalizePage(0, 500)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, size)

	page, size = NormalizePage(3, 50)
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, size)
}
