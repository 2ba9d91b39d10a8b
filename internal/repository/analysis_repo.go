package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/YashRaythatha/hackathon-code-validation/internal/model"
)

const defaultListLimit = 50

type analysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

func (r *analysisRepository) Create(record *model.AnalysisRecord) error {
	return r.db.Create(record).Error
}

func (r *analysisRepository) Get(id string) (*model.AnalysisRecord, error) {
	var record model.AnalysisRecord
	result := r.db.Where("id = ?", id).First(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &record, nil
}

// ListRecent 按创建时间倒序返回最近的记录
func (r *analysisRepository) ListRecent(limit int) ([]model.AnalysisRecord, error) {
	var records []model.AnalysisRecord
	err := r.db.Order("created_at DESC, id DESC").Limit(normalizeLimit(limit)).Find(&records).Error
	return records, err
}

func (r *analysisRepository) ListByRepo(repoURL string, limit int) ([]model.AnalysisRecord, error) {
	var records []model.AnalysisRecord
	err := r.db.Where("repo_url = ?", repoURL).
		Order("created_at DESC, id DESC").
		Limit(normalizeLimit(limit)).
		Find(&records).Error
	return records, err
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return defaultListLimit
	}
	return limit
}
