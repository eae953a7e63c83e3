package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"recruitsync_backend/internal/models"
	"recruitsync_backend/internal/secrets"
)

var (
	ErrConnectionNotFound = errors.New("platform connection not found")
	ErrConnectionExists   = errors.New("platform connection already exists")
)

// ConnectionRepository persists one PlatformConnection per external platform.
type ConnectionRepository interface {
	Create(ctx context.Context, conn *models.PlatformConnection) error

	// Update writes the credential, type, cost, status and connected_at
	// columns of conn. Sync counters are left alone.
	Update(ctx context.Context, conn *models.PlatformConnection) error
	FindByID(ctx context.Context, id string) (*models.PlatformConnection, error)
	FindByName(ctx context.Context, name string) (*models.PlatformConnection, error)
	List(ctx context.Context) ([]models.PlatformConnection, error)
	ListByStatus(ctx context.Context, status models.ConnectionStatus) ([]models.PlatformConnection, error)

	// UpdateTokens writes a refreshed OAuth credential in place. An empty
	// refresh token, zero expiry or empty scope list keeps the stored value, so
	// a refreshed connection is never demoted to a long-lived key.
	UpdateTokens(ctx context.Context, id string, cred models.OAuthCredential) error

	// ClearCredentials drops every secret and marks the connection DISCONNECTED.
	ClearCredentials(ctx context.Context, id string) error

	UpdateStatus(ctx context.Context, id string, status models.ConnectionStatus) error

	// RecordSync adds imported to total_synced atomically and, when
	// lastSyncAt is non-nil, stamps last_sync_at.
	RecordSync(ctx context.Context, id string, imported int, lastSyncAt *time.Time) error

	// Delete removes the connection and its sync history.
	Delete(ctx context.Context, id string) error
}

type connectionRepository struct {
	db *gorm.DB
}

func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

func (r *connectionRepository) Create(ctx context.Context, conn *models.PlatformConnection) error {
	if err := r.db.WithContext(ctx).Create(conn).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrConnectionExists
		}
		return err
	}
	return nil
}

// connectionColumns are the columns Update writes. total_synced and
// last_sync_at are owned by RecordSync.
var connectionColumns = []string{
	"type", "monthly_cost", "status",
	"api_key", "refresh_token", "token_expires_at", "oauth_provider", "token_scopes",
	"connected_at",
}

func (r *connectionRepository) Update(ctx context.Context, conn *models.PlatformConnection) error {
	return r.db.WithContext(ctx).
		Model(conn).
		Select(connectionColumns).
		Updates(conn).Error
}

func (r *connectionRepository) FindByID(ctx context.Context, id string) (*models.PlatformConnection, error) {
	var conn models.PlatformConnection
	if err := r.db.WithContext(ctx).First(&conn, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConnectionNotFound
		}
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepository) FindByName(ctx context.Context, name string) (*models.PlatformConnection, error) {
	var conn models.PlatformConnection
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&conn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConnectionNotFound
		}
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepository) List(ctx context.Context) ([]models.PlatformConnection, error) {
	var conns []models.PlatformConnection
	err := r.db.WithContext(ctx).Order("name ASC").Find(&conns).Error
	return conns, err
}

func (r *connectionRepository) ListByStatus(ctx context.Context, status models.ConnectionStatus) ([]models.PlatformConnection, error) {
	var conns []models.PlatformConnection
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("name ASC").
		Find(&conns).Error
	return conns, err
}

func (r *connectionRepository) UpdateTokens(ctx context.Context, id string, cred models.OAuthCredential) error {
	updates := map[string]interface{}{
		"api_key": secrets.Sealed(cred.Token),
	}
	if cred.RefreshToken != "" {
		updates["refresh_token"] = secrets.Sealed(cred.RefreshToken)
	}
	if !cred.ExpiresAt.IsZero() {
		updates["token_expires_at"] = cred.ExpiresAt
	}
	if len(cred.Scopes) > 0 {
		updates["token_scopes"] = datatypes.JSONSlice[string](cred.Scopes)
	}

	return r.updateByID(ctx, id, updates)
}

func (r *connectionRepository) ClearCredentials(ctx context.Context, id string) error {
	return r.updateByID(ctx, id, map[string]interface{}{
		"api_key":          nil,
		"refresh_token":    nil,
		"token_expires_at": nil,
		"oauth_provider":   nil,
		"token_scopes":     nil,
		"status":           models.ConnectionStatusDisconnected,
	})
}

func (r *connectionRepository) UpdateStatus(ctx context.Context, id string, status models.ConnectionStatus) error {
	return r.updateByID(ctx, id, map[string]interface{}{"status": status})
}

func (r *connectionRepository) RecordSync(ctx context.Context, id string, imported int, lastSyncAt *time.Time) error {
	updates := map[string]interface{}{}
	if imported > 0 {
		updates["total_synced"] = gorm.Expr("total_synced + ?", imported)
	}
	if lastSyncAt != nil {
		updates["last_sync_at"] = *lastSyncAt
	}
	if len(updates) == 0 {
		return nil
	}
	return r.updateByID(ctx, id, updates)
}

func (r *connectionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("platform_id = ?", id).Delete(&models.SyncLog{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&models.PlatformConnection{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrConnectionNotFound
		}
		return nil
	})
}

func (r *connectionRepository) updateByID(ctx context.Context, id string, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&models.PlatformConnection{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConnectionNotFound
	}
	return nil
}
