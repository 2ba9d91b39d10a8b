package handler

import (
	"github.com/YashRaythatha/hackathon-code-validation/internal/domain"
	"github.com/YashRaythatha/hackathon-code-validation/internal/model"
)

func toReports(records []model.AnalysisRecord) ([]*domain.Report, error) {
	reports := make([]*domain.Report, 0, len(records))
	for i := range records {
		report, err := records[i].ToReport()
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}
