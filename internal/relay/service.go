package relay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tuanvumaihuynh/crm/internal/config"
	"github.com/tuanvumaihuynh/crm/internal/repository"
	"github.com/tuanvumaihuynh/crm/internal/storage/db"
	"github.com/tuanvumaihuynh/crm/internal/storage/mq"
	"github.com/tuanvumaihuynh/crm/pkg/outbox"
	"github.com/tuanvumaihuynh/crm/pkg/ptr"
)

type Service struct {
	cfg           config.Relay
	logger        *slog.Logger
	db            db.DB
	outboxMsgRepo repository.OutboxMsgRepository
	mqProducer    mq.Producer

	stopChan chan struct{}
}

func NewService(
	cfg config.Relay,
	logger *slog.Logger,
	db db.DB,
	outboxMsgRepo repository.OutboxMsgRepository,
	mqProducer mq.Producer,
) *Service {
	return &Service{
		cfg:           cfg,
		logger:        logger.With(slog.String("service", "relay")),
		db:            db,
		outboxMsgRepo: outboxMsgRepo,
		mqProducer:    mqProducer,
		stopChan:      make(chan struct{}),
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) CleanupFunc {
	ctx, cancel := context.WithCancel(ctx)

	stoppedChan := make(chan struct{})
	go func() {
		defer close(stoppedChan)
		s.run(ctx)
	}()

	return func() {
		close(s.stopChan)
		select {
		case <-stoppedChan:
		case <-time.After(5 * time.Second):
			cancel()
			<-stoppedChan
		}
		cancel()
	}
}

func (s *Service) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-time.After(s.cfg.Interval):
			if _, err := s.RelayBatch(ctx); err != nil {
				s.logger.ErrorContext(ctx, "error relaying outbox msgs", slog.Any("error", err))
				continue
			}
		}
	}
}

// RelayBatch produces one batch of unprocessed outbox messages and marks each
// of them processed, storing the producer error for messages that failed.
// It returns the number of messages handled.
func (s *Service) RelayBatch(ctx context.Context) (int, error) {
	var handled int

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		outboxMsgs, err := s.outboxMsgRepo.
			WithDB(db).
			ListUnprocessedOutboxMsgs(ctx, repository.ListUnprocessedOutboxMsgsParams{
				//nolint:gosec
				BatchSize: int32(s.cfg.BatchSize),
			})
		if err != nil {
			return fmt.Errorf("list unprocessed outbox msgs: %w", err)
		}

		if len(outboxMsgs) == 0 {
			return nil
		}

		s.logger.InfoContext(ctx, "relaying outbox msgs", slog.Int("count", len(outboxMsgs)))

		items := make([]repository.BulkUpdateOutboxMsgsItem, 0, len(outboxMsgs))
		var mu sync.Mutex

		var g errgroup.Group
		g.SetLimit(s.concurrency())
		for _, group := range groupByPartitionKey(outboxMsgs) {
			g.Go(func() error {
				for _, msg := range group {
					item := s.relayMsg(ctx, msg)

					mu.Lock()
					items = append(items, item)
					mu.Unlock()
				}
				return nil
			})
		}

		//nolint:errcheck
		g.Wait()

		if err := s.outboxMsgRepo.
			WithDB(db).
			BulkUpdateOutboxMsgs(ctx, repository.BulkUpdateOutboxMsgsParams{
				Items: items,
			}); err != nil {
			return fmt.Errorf("bulk update outbox msgs: %w", err)
		}

		handled = len(items)
		return nil
	}); err != nil {
		return 0, err
	}

	return handled, nil
}

// relayMsg produces msg and returns its processed state.
func (s *Service) relayMsg(ctx context.Context, msg repository.ListUnprocessedOutboxMsgsResult) repository.BulkUpdateOutboxMsgsItem {
	item := repository.BulkUpdateOutboxMsgsItem{ID: msg.ID}
	if err := s.produce(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx,
			"error producing message",
			slog.String("outbox_msg_id", msg.ID.String()),
			slog.String("topic", msg.Topic),
			slog.Any("error", err),
		)
		item.Error = ptr.New(err.Error())
	}
	return item
}

// groupByPartitionKey splits msgs into groups produced concurrently with each
// other. Messages sharing a partition key land in one group in their original
// order. Messages without a key each form their own group.
func groupByPartitionKey(msgs []repository.ListUnprocessedOutboxMsgsResult) [][]repository.ListUnprocessedOutboxMsgsResult {
	groups := make([][]repository.ListUnprocessedOutboxMsgsResult, 0, len(msgs))
	byKey := make(map[string]int)

	for _, msg := range msgs {
		if msg.PartitionKey == nil {
			groups = append(groups, []repository.ListUnprocessedOutboxMsgsResult{msg})
			continue
		}

		if i, ok := byKey[*msg.PartitionKey]; ok {
			groups[i] = append(groups[i], msg)
			continue
		}

		byKey[*msg.PartitionKey] = len(groups)
		groups = append(groups, []repository.ListUnprocessedOutboxMsgsResult{msg})
	}

	return groups
}

// concurrency returns the producer goroutine limit, unbounded when unset.
func (s *Service) concurrency() int {
	if s.cfg.Concurrency <= 0 {
		return -1
	}
	return s.cfg.Concurrency
}

// produce publishes msg under the trace and correlation context of the request
// that stored it.
func (s *Service) produce(ctx context.Context, msg repository.ListUnprocessedOutboxMsgsResult) error {
	ctx = outbox.ExtractContextFromHeaders(ctx, msg.Headers)

	produceMsg := mq.ProduceMsg{
		Topic:        msg.Topic,
		Headers:      msg.Headers,
		Payload:      msg.Payload,
		PartitionKey: msg.PartitionKey,
	}
	if err := s.mqProducer.Produce(ctx, produceMsg); err != nil {
		return fmt.Errorf("produce message: %w", err)
	}

	return nil
}
