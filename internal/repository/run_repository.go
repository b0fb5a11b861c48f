package repository

import (
	"context"
	"errors"
	"fmt"

	"multiverse-identity/backend/internal/models"

	"gorm.io/gorm"
)

// ErrRunNotFound is returned when no run has the requested ID
var ErrRunNotFound = errors.New("run not found")

// RunRepository stores generation runs
type RunRepository interface {
	Create(ctx context.Context, run *models.Run) error
	GetByID(ctx context.Context, id string) (*models.Run, error)
	ListRecent(ctx context.Context, limit int) ([]models.Run, error)
}

type GormRunRepository struct {
	db *gorm.DB
}

func NewGormRunRepository(db *gorm.DB) *GormRunRepository {
	return &GormRunRepository{db: db}
}

// Migrate creates the runs and personas tables
func (r *GormRunRepository) Migrate() error {
	return r.db.AutoMigrate(&models.Run{}, &models.Persona{})
}

func (r *GormRunRepository) Create(ctx context.Context, run *models.Run) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("create run %s: %w", run.ID, err)
	}
	return nil
}

func (r *GormRunRepository) GetByID(ctx context.Context, id string) (*models.Run, error) {
	var run models.Run
	err := r.db.WithContext(ctx).
		Preload("Personas", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return &run, nil
}

func (r *GormRunRepository) ListRecent(ctx context.Context, limit int) ([]models.Run, error) {
	var runs []models.Run
	err := r.db.WithContext(ctx).
		Preload("Personas", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	if runs == nil {
		runs = []models.Run{}
	}
	return runs, nil
}
