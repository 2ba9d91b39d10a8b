package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/YashRaythatha/hackathon-code-validation/internal/model"
	"github.com/YashRaythatha/hackathon-code-validation/internal/pkg/agents"
)

// learningSnapshotID 学习状态只保存一行
const learningSnapshotID = 1

type learningStateRepository struct {
	db *gorm.DB
}

func NewLearningStateRepository(db *gorm.DB) LearningStateRepository {
	return &learningStateRepository{db: db}
}

func (r *learningStateRepository) Load(ctx context.Context) (*agents.LearningState, error) {
	var snap model.LearningSnapshot
	result := r.db.WithContext(ctx).First(&snap, learningSnapshotID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return agents.NewLearningState(), nil
		}
		return nil, fmt.Errorf("%w: %v", agents.ErrLearningStore, result.Error)
	}
	state := agents.NewLearningState()
	if err := json.Unmarshal([]byte(snap.State), state); err != nil {
		return nil, fmt.Errorf("%w: decode snapshot: %v", agents.ErrLearningStore, err)
	}
	if state.PatternWeights == nil {
		state.PatternWeights = map[string]float64{}
	}
	return state, nil
}

func (r *learningStateRepository) Save(ctx context.Context, state *agents.LearningState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("%w: encode snapshot: %v", agents.ErrLearningStore, err)
	}
	snap := model.LearningSnapshot{
		ID:            learningSnapshotID,
		TotalAnalyses: state.TotalAnalyses,
		State:         string(data),
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_analyses", "state", "updated_at"}),
	}).Create(&snap).Error
	if err != nil {
		return fmt.Errorf("%w: %v", agents.ErrLearningStore, err)
	}
	return nil
}
