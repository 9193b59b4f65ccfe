package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tuanvumaihuynh/crm/internal/service"
	"github.com/tuanvumaihuynh/crm/pkg/ptr"
)

const (
	heartbeatLayout = "02/01/2006-15:04:05"
	logLayout       = "2006-01-02 15:04:05"
)

// Heartbeat records that the process is alive and probes the HTTP health
// endpoint. A failed probe is logged but does not fail the job.
func (s *Service) Heartbeat(ctx context.Context) error {
	line := fmt.Sprintf("%s CRM is alive", s.now().Format(heartbeatLayout))
	if err := appendLines(s.cfg.HeartbeatLogPath, line); err != nil {
		return fmt.Errorf("append heartbeat: %w", err)
	}

	if err := s.probeHealth(ctx); err != nil {
		s.logger.WarnContext(ctx, "crm health check failed", slog.Any("error", err))
		return nil
	}

	s.logger.InfoContext(ctx, "crm health endpoint is responsive")
	return nil
}

func (s *Service) probeHealth(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.HealthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.HealthURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", s.cfg.HealthURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: unexpected status %d", s.cfg.HealthURL, resp.StatusCode)
	}

	return nil
}

// Restock tops up every low-stock product and records the new stock levels.
func (s *Service) Restock(ctx context.Context) error {
	ts := s.now().Format(logLayout)

	res, err := s.productSvc.UpdateLowStockProducts(ctx)
	if err != nil {
		line := fmt.Sprintf("[%s] Error updating low stock products: %v", ts, err)
		return appendJobError(s.cfg.RestockLogPath, line, fmt.Errorf("product service update low stock products: %w", err))
	}

	lines := make([]string, 0, len(res.Products))
	for _, p := range res.Products {
		lines = append(lines, fmt.Sprintf("[%s] Product: %s, New stock: %d", ts, p.Name, p.Stock))
	}

	if err := appendLines(s.cfg.RestockLogPath, lines...); err != nil {
		return fmt.Errorf("append restock log: %w", err)
	}

	s.logger.InfoContext(ctx, res.Message)
	return nil
}

// SendOrderReminders records a reminder for every order placed within the
// configured lookback window.
func (s *Service) SendOrderReminders(ctx context.Context) error {
	now := s.now()
	ts := now.Format(logLayout)

	params := service.ListOrdersParams{
		Since: ptr.New(now.Add(-s.cfg.ReminderLookback)),
		Limit: service.MaxPageSize,
	}

	var lines []string
	for {
		orders, err := s.orderSvc.ListOrders(ctx, params)
		if err != nil {
			line := fmt.Sprintf("[%s] Error fetching orders: %v", ts, err)
			return appendJobError(s.cfg.ReminderLogPath, line, fmt.Errorf("order service list orders: %w", err))
		}

		for _, o := range orders {
			email := ptr.Deref(o.Customer).Email
			lines = append(lines, fmt.Sprintf("[%s] Order ID: %s, Email: %s", ts, o.ID, email))
		}

		if uint64(len(orders)) < params.Limit {
			break
		}
		params.Offset += params.Limit
	}

	if err := appendLines(s.cfg.ReminderLogPath, lines...); err != nil {
		return fmt.Errorf("append reminder log: %w", err)
	}

	s.logger.InfoContext(ctx, "order reminders processed", slog.Int("orders", len(lines)))
	return nil
}

// Report records the aggregate customer, order and revenue figures.
func (s *Service) Report(ctx context.Context) error {
	ts := s.now().Format(logLayout)

	stats, err := s.reportSvc.GetStats(ctx)
	if err != nil {
		line := fmt.Sprintf("%s - ERROR: %v", ts, err)
		return appendJobError(s.cfg.ReportLogPath, line, fmt.Errorf("report service get stats: %w", err))
	}

	line := fmt.Sprintf("%s - Report: %d customers, %d orders, %s revenue",
		ts, stats.TotalCustomers, stats.TotalOrders, stats.TotalRevenue.StringFixed(2))
	if err := appendLines(s.cfg.ReportLogPath, line); err != nil {
		return fmt.Errorf("append report log: %w", err)
	}

	return nil
}

// appendJobError writes the failure line for a job and returns jobErr, joined
// with the write error if the line could not be written.
func appendJobError(path, line string, jobErr error) error {
	if err := appendLines(path, line); err != nil {
		return fmt.Errorf("%w; %w", jobErr, err)
	}
	return jobErr
}
