package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tuanvumaihuynh/crm/internal/model"
	"github.com/tuanvumaihuynh/crm/internal/storage/db"
)

type ReportRepository interface {
	WithDB(db db.DB) ReportRepository
	GetStats(ctx context.Context) (model.Stats, error)
}

type reportRepository struct {
	db db.DB
}

func NewReportRepository(db db.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r reportRepository) WithDB(db db.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r reportRepository) GetStats(ctx context.Context) (model.Stats, error) {
	query, args, err := psql.Select(
		"(SELECT COUNT(*) FROM customers)",
		"(SELECT COUNT(*) FROM orders)",
		"(SELECT COALESCE(SUM(total_amount), 0) FROM orders)",
	).ToSql()
	if err != nil {
		return model.Stats{}, fmt.Errorf("build stats query: %w", err)
	}

	var (
		stats   model.Stats
		revenue pgtype.Numeric
	)
	if err := r.db.QueryRow(ctx, query, args...).Scan(&stats.TotalCustomers, &stats.TotalOrders, &revenue); err != nil {
		return model.Stats{}, fmt.Errorf("query stats: %w", err)
	}

	stats.TotalRevenue, err = numericToDecimal(revenue)
	if err != nil {
		return model.Stats{}, fmt.Errorf("convert revenue: %w", err)
	}

	return stats, nil
}
