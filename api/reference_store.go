package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/procboard/procboard/api/models"
	"gorm.io/gorm"
)

// Categories and companies are small reference tables with identical access
// patterns, so their stores share one file.

// CategoryStore defines persistence for process categories
type CategoryStore interface {
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.Category, error)
}

// CompanyStore defines persistence for companies
type CompanyStore interface {
	Create(ctx context.Context, company *models.Company) error
	Update(ctx context.Context, company *models.Company) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.Company, error)
}

// GormCategoryStore implements CategoryStore using GORM
type GormCategoryStore struct {
	db *gorm.DB
}

// NewGormCategoryStore creates a database-backed category store
func NewGormCategoryStore(db *gorm.DB) *GormCategoryStore {
	return &GormCategoryStore{db: db}
}

func (s *GormCategoryStore) Create(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (s *GormCategoryStore) Update(ctx context.Context, category *models.Category) error {
	result := s.db.WithContext(ctx).Model(&models.Category{}).
		Where("id = ?", category.ID).
		Update("name", category.Name)
	if result.Error != nil {
		return fmt.Errorf("failed to update category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormCategoryStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormCategoryStore) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// GormCompanyStore implements CompanyStore using GORM
type GormCompanyStore struct {
	db *gorm.DB
}

// NewGormCompanyStore creates a database-backed company store
func NewGormCompanyStore(db *gorm.DB) *GormCompanyStore {
	return &GormCompanyStore{db: db}
}

func (s *GormCompanyStore) Create(ctx context.Context, company *models.Company) error {
	if company.ID == "" {
		company.ID = uuid.New().String()
	}
	if err := s.db.WithContext(ctx).Create(company).Error; err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}
	return nil
}

func (s *GormCompanyStore) Update(ctx context.Context, company *models.Company) error {
	result := s.db.WithContext(ctx).Model(&models.Company{}).
		Where("id = ?", company.ID).
		Select("name", "location").
		Updates(company)
	if result.Error != nil {
		return fmt.Errorf("failed to update company: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormCompanyStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.Company{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete company: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormCompanyStore) List(ctx context.Context) ([]models.Company, error) {
	var companies []models.Company
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&companies).Error; err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, nil
}

// SettingsStore defines persistence for the singleton settings row
type SettingsStore interface {
	Get(ctx context.Context) (*models.Settings, error)
	Update(ctx context.Context, settings *models.Settings) error
}

// GormSettingsStore implements SettingsStore using GORM
type GormSettingsStore struct {
	db *gorm.DB
}

// NewGormSettingsStore creates a database-backed settings store
func NewGormSettingsStore(db *gorm.DB) *GormSettingsStore {
	return &GormSettingsStore{db: db}
}

// Get returns the settings row, creating defaults on first access
func (s *GormSettingsStore) Get(ctx context.Context) (*models.Settings, error) {
	var settings models.Settings
	err := s.db.WithContext(ctx).First(&settings, "id = ?", 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = models.Settings{ID: 1, AppName: "procboard", AllowRegistration: true, RetentionDays: 365}
		if err := s.db.WithContext(ctx).Create(&settings).Error; err != nil {
			return nil, fmt.Errorf("failed to seed settings: %w", err)
		}
		return &settings, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return &settings, nil
}

// Update overwrites the settings row
func (s *GormSettingsStore) Update(ctx context.Context, settings *models.Settings) error {
	settings.ID = 1
	if err := s.db.WithContext(ctx).Save(settings).Error; err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return nil
}
