package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"recruitsync_backend/internal/models"
)

var (
	ErrAlreadyHired   = errors.New("candidate already hired")
	ErrEmployeeExists = errors.New("employee already exists for candidate")
)

// HireTx is the unit of work of one hire. Every call runs inside the same
// database transaction.
type HireTx interface {
	// LockCandidate reads the candidate with a row lock held until commit.
	LockCandidate(id string) (*models.Candidate, error)

	// FindPosition returns nil without error when the position does not exist.
	FindPosition(id string) (*models.Position, error)

	CreateEmployee(e *models.Employee) error

	// OnboardingItems lists every item of ONBOARDING checklists in template order.
	OnboardingItems() ([]models.ChecklistItem, error)

	CreateTasks(tasks []models.EmployeeTask) error

	// MarkHired flips the candidate to HIRED unless it already is.
	MarkHired(candidateID string, hiredAt time.Time) error
}

type HireRepository interface {
	// WithinTransaction runs fn in one transaction; any error rolls it back.
	WithinTransaction(ctx context.Context, fn func(tx HireTx) error) error
}

type hireRepository struct {
	db *gorm.DB
}

func NewHireRepository(db *gorm.DB) HireRepository {
	return &hireRepository{db: db}
}

func (r *hireRepository) WithinTransaction(ctx context.Context, fn func(tx HireTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormHireTx{db: tx})
	})
}

type gormHireTx struct {
	db *gorm.DB
}

func (t *gormHireTx) LockCandidate(id string) (*models.Candidate, error) {
	var c models.Candidate
	err := t.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCandidateNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (t *gormHireTx) FindPosition(id string) (*models.Position, error) {
	var p models.Position
	err := t.db.Preload("Department").First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (t *gormHireTx) CreateEmployee(e *models.Employee) error {
	if err := t.db.Omit(clause.Associations).Create(e).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmployeeExists
		}
		return err
	}
	return nil
}

func (t *gormHireTx) OnboardingItems() ([]models.ChecklistItem, error) {
	var items []models.ChecklistItem
	err := t.db.
		Joins("JOIN checklists ON checklists.id = checklist_items.checklist_id").
		Where("checklists.type = ?", models.ChecklistTypeOnboarding).
		Order("checklists.created_at ASC").
		Order("checklist_items.sort_order ASC").
		Order("checklist_items.created_at ASC").
		Find(&items).Error
	return items, err
}

func (t *gormHireTx) CreateTasks(tasks []models.EmployeeTask) error {
	if len(tasks) == 0 {
		return nil
	}
	return t.db.CreateInBatches(tasks, 100).Error
}

func (t *gormHireTx) MarkHired(candidateID string, hiredAt time.Time) error {
	result := t.db.Model(&models.Candidate{}).
		Where("id = ? AND status <> ?", candidateID, models.CandidateStatusHired).
		Updates(map[string]interface{}{
			"status":   models.CandidateStatusHired,
			"hired_at": hiredAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAlreadyHired
	}
	return nil
}
