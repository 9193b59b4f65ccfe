package service

import (
	"context"
	"fmt"

	"github.com/tuanvumaihuynh/crm/internal/model"
	"github.com/tuanvumaihuynh/crm/internal/repository"
)

type ReportService interface {
	GetStats(ctx context.Context) (model.Stats, error)
}

type reportService struct {
	reportRepo repository.ReportRepository
}

func NewReportService(reportRepo repository.ReportRepository) ReportService {
	return &reportService{reportRepo: reportRepo}
}

func (s *reportService) GetStats(ctx context.Context) (model.Stats, error) {
	stats, err := s.reportRepo.GetStats(ctx)
	if err != nil {
		return model.Stats{}, fmt.Errorf("report repository get stats: %w", err)
	}

	return stats, nil
}
