package event

import (
	"context"
	"log/slog"
)

func (s *Service) handleCustomerCreatedEvent(ctx context.Context, ev CustomerCreatedEvent) error {
	s.logger.InfoContext(ctx, "customer created",
		slog.String("customer_id", ev.CustomerID.String()),
		slog.String("email", ev.Email),
	)
	return nil
}

func (s *Service) handleOrderCreatedEvent(ctx context.Context, ev OrderCreatedEvent) error {
	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", ev.OrderID.String()),
		slog.String("customer_id", ev.CustomerID.String()),
		slog.Int("products", len(ev.ProductIDs)),
		slog.String("total_amount", ev.TotalAmount.StringFixed(2)),
	)
	return nil
}

func (s *Service) handleProductsRestockedEvent(ctx context.Context, ev ProductsRestockedEvent) error {
	for _, p := range ev.Products {
		s.logger.InfoContext(ctx, "product restocked",
			slog.String("product_id", p.ProductID.String()),
			slog.String("name", p.Name),
			slog.Int("old_stock", p.OldStock),
			slog.Int("new_stock", p.NewStock),
		)
	}
	return nil
}
