package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/irenemg8/chatbot-sub001/internal/models"
)

// PatternRepository persists deployment-defined detection patterns.
type PatternRepository struct {
	db *gorm.DB
}

func NewPatternRepository(db *gorm.DB) *PatternRepository {
	return &PatternRepository{db: db}
}

// GetActivePatterns returns every pattern enabled for detection.
func (r *PatternRepository) GetActivePatterns() ([]models.Pattern, error) {
	var patterns []models.Pattern
	if err := r.db.Where("is_active = ?", true).Find(&patterns).Error; err != nil {
		return nil, err
	}
	return patterns, nil
}

// ListPatterns returns every stored pattern, active or not.
func (r *PatternRepository) ListPatterns() ([]models.Pattern, error) {
	var patterns []models.Pattern
	if err := r.db.Order("name").Find(&patterns).Error; err != nil {
		return nil, err
	}
	return patterns, nil
}

// CreatePattern stores a new pattern.
func (r *PatternRepository) CreatePattern(p *models.Pattern) error {
	if p == nil {
		return errors.New("pattern is nil")
	}
	return r.db.Create(p).Error
}

// DeletePattern removes a pattern by ID.
func (r *PatternRepository) DeletePattern(id uint) error {
	result := r.db.Delete(&models.Pattern{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
