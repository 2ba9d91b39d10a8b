package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/YashRaythatha/hackathon-code-validation/internal/domain"
)

// AnalysisRecord 一次评分报告的持久化记录，Verdict 以 JSON 文本保存
type AnalysisRecord struct {
	ID               string    `json:"id" gorm:"primaryKey;size:26"`
	RepoURL          string    `json:"repo_url" gorm:"size:500;index;not null"`
	Branch           string    `json:"branch" gorm:"size:255"`
	Agents           string    `json:"agents" gorm:"size:500"`
	Status           string    `json:"status" gorm:"size:20;index"`
	TotalScore       int       `json:"total_score"`
	PassFail         string    `json:"pass_fail" gorm:"size:20"`
	Confidence       float64   `json:"confidence"`
	Cached           bool      `json:"cached"`
	ErrorMsg         string    `json:"error_msg" gorm:"size:1000"`
	MissingArtifacts string    `json:"missing_artifacts" gorm:"size:500"`
	Verdict          string    `json:"verdict" gorm:"type:text"`
	CreatedAt        time.Time `json:"created_at" gorm:"index"`
}

// LearningSnapshot 学习 Agent 状态快照，仅保存一行
type LearningSnapshot struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	TotalAnalyses int       `json:"total_analyses"`
	State         string    `json:"state" gorm:"type:text"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewAnalysisRecord 将报告转换为持久化记录
func NewAnalysisRecord(report *domain.Report) (*AnalysisRecord, error) {
	record := &AnalysisRecord{
		ID:               report.ID,
		RepoURL:          report.RepoURL,
		Branch:           report.Branch,
		Agents:           strings.Join(report.Agents, ","),
		Status:           report.Status,
		Cached:           report.Cached,
		ErrorMsg:         report.Error,
		MissingArtifacts: strings.Join(report.MissingArtifacts, ","),
		CreatedAt:        report.CreatedAt,
	}
	if report.Verdict != nil {
		data, err := json.Marshal(report.Verdict)
		if err != nil {
			return nil, fmt.Errorf("序列化评分结论失败: %w", err)
		}
		record.Verdict = string(data)
		record.TotalScore = report.Verdict.TotalScore
		record.PassFail = string(report.Verdict.PassFail)
		record.Confidence = report.Verdict.Confidence
	}
	return record, nil
}

// ToReport 从持久化记录还原报告
func (record *AnalysisRecord) ToReport() (*domain.Report, error) {
	report := &domain.Report{
		ID:        record.ID,
		RepoURL:   record.RepoURL,
		Branch:    record.Branch,
		Agents:    splitList(record.Agents),
		Status:    record.Status,
		Cached:    record.Cached,
		Error:     record.ErrorMsg,
		CreatedAt: record.CreatedAt,
	}
	report.MissingArtifacts = splitList(record.MissingArtifacts)
	if record.Verdict != "" {
		var verdict domain.Verdict
		if err := json.Unmarshal([]byte(record.Verdict), &verdict); err != nil {
			return nil, fmt.Errorf("解析评分结论失败: %w", err)
		}
		report.Verdict = &verdict
	}
	return report, nil
}

func splitList(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}
