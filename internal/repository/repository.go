package repository

import (
	"errors"

	"github.com/YashRaythatha/hackathon-code-validation/internal/model"
	"github.com/YashRaythatha/hackathon-code-validation/internal/pkg/agents"
)

// ErrNotFound 记录不存在错误
var ErrNotFound = errors.New("record not found")

type AnalysisRepository interface {
	Create(record *model.AnalysisRecord) error
	Get(id string) (*model.AnalysisRecord, error)
	ListRecent(limit int) ([]model.AnalysisRecord, error)
	ListByRepo(repoURL string, limit int) ([]model.AnalysisRecord, error)
}

// LearningStateRepository 以数据库保存学习状态，实现 agents.LearningStore
type LearningStateRepository interface {
	agents.LearningStore
}
