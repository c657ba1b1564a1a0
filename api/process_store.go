package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/procboard/procboard/api/models"
	"github.com/procboard/procboard/internal/slogging"
	"gorm.io/gorm"
)

// ErrNotFound indicates a lookup for a record that does not exist
var ErrNotFound = errors.New("record not found")

// ProcessStore defines persistence for tracked processes
type ProcessStore interface {
	Create(ctx context.Context, process *models.Process) error
	Get(ctx context.Context, id string) (*models.Process, error)
	Update(ctx context.Context, process *models.Process) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, offset, limit int) ([]models.Process, error)
}

// GormProcessStore implements ProcessStore using GORM
type GormProcessStore struct {
	db *gorm.DB
}

// NewGormProcessStore creates a database-backed process store
func NewGormProcessStore(db *gorm.DB) *GormProcessStore {
	return &GormProcessStore{db: db}
}

// Create persists a new process
func (s *GormProcessStore) Create(ctx context.Context, process *models.Process) error {
	if process.ID == "" {
		process.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	process.CreatedAt = now
	process.ModifiedAt = now

	if err := s.db.WithContext(ctx).Create(process).Error; err != nil {
		slogging.Get().Error("Failed to create process %s: %v", process.ID, err)
		return fmt.Errorf("failed to create process: %w", err)
	}
	return nil
}

// Get retrieves a process by ID
func (s *GormProcessStore) Get(ctx context.Context, id string) (*models.Process, error) {
	var process models.Process
	err := s.db.WithContext(ctx).First(&process, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load process: %w", err)
	}
	return &process, nil
}

// Update overwrites an existing process
func (s *GormProcessStore) Update(ctx context.Context, process *models.Process) error {
	process.ModifiedAt = time.Now().UTC()

	result := s.db.WithContext(ctx).Model(&models.Process{}).
		Where("id = ?", process.ID).
		Select("*").Omit("id", "created_at").
		Updates(process)
	if result.Error != nil {
		slogging.Get().Error("Failed to update process %s: %v", process.ID, result.Error)
		return fmt.Errorf("failed to update process: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a process by ID
func (s *GormProcessStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.Process{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete process: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns processes ordered by creation time, newest first
func (s *GormProcessStore) List(ctx context.Context, offset, limit int) ([]models.Process, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var processes []models.Process
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&processes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}
	return processes, nil
}
