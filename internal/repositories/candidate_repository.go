package repositories

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"recruitsync_backend/internal/models"
)

var (
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrCandidateExists   = errors.New("candidate with this email already exists")
	ErrStatusConflict    = errors.New("candidate status changed concurrently")
)

type CandidateFilter struct {
	Status   models.CandidateStatus
	Source   string
	Search   string
	Page     int
	PageSize int
}

type CandidateRepository interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// CreateIfAbsent inserts c unless its email is taken. It reports false,
	// not an error, when the unique index rejected the row.
	CreateIfAbsent(ctx context.Context, c *models.Candidate) (bool, error)

	Create(ctx context.Context, c *models.Candidate) error
	FindByID(ctx context.Context, id string) (*models.Candidate, error)
	List(ctx context.Context, filter CandidateFilter) ([]models.Candidate, int64, error)

	// UpdateStatus moves a candidate from one status to another and fails with
	// ErrStatusConflict when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to models.CandidateStatus) error
}

type candidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

func (r *candidateRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Candidate{}).
		Where("email = ?", email).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

func (r *candidateRepository) CreateIfAbsent(ctx context.Context, c *models.Candidate) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).
		Create(c)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *candidateRepository) Create(ctx context.Context, c *models.Candidate) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrCandidateExists
		}
		return err
	}
	return nil
}

func (r *candidateRepository) FindByID(ctx context.Context, id string) (*models.Candidate, error) {
	var c models.Candidate
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCandidateNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *candidateRepository) List(ctx context.Context, filter CandidateFilter) ([]models.Candidate, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Candidate{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR email LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize := NormalizePage(filter.Page, filter.PageSize)

	var candidates []models.Candidate
	err := query.
		Order("applied_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&candidates).Error
	return candidates, total, err
}

func (r *candidateRepository) UpdateStatus(ctx context.Context, id string, from, to models.CandidateStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Candidate{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
