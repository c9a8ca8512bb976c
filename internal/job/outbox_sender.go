package job

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/gaida-lisongo/server-batis-nexus/internal/config"
	"github.com/gaida-lisongo/server-batis-nexus/internal/infrastructure/mq"
	"github.com/gaida-lisongo/server-batis-nexus/internal/model"
	"github.com/gaida-lisongo/server-batis-nexus/internal/repository"
)

// OutboxSender drains pending finance events to Kafka. Delivery is
// at-least-once; a message that keeps failing past the retry budget is parked
// as failed for manual inspection.
type OutboxSender struct {
	outboxRepo *repository.OutboxRepository
	producer   *mq.Producer
	cfg        *config.Config
	stopCh     chan struct{}
	interval   time.Duration
	batchSize  int
}

func NewOutboxSender(db *gorm.DB, producer *mq.Producer, cfg *config.Config) *OutboxSender {
	return &OutboxSender{
		outboxRepo: repository.NewOutboxRepository(db),
		producer:   producer,
		cfg:        cfg,
		stopCh:     make(chan struct{}),
		interval:   100 * time.Millisecond,
		batchSize:  100,
	}
}

func (s *OutboxSender) Start(ctx context.Context) {
	log.Println("[OutboxSender] started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[OutboxSender] context cancelled, exiting")
			return
		case <-s.stopCh:
			log.Println("[OutboxSender] stopped")
			return
		case <-ticker.C:
			s.processPending(ctx)
		}
	}
}

func (s *OutboxSender) Stop() {
	close(s.stopCh)
}

func (s *OutboxSender) processPending(ctx context.Context) {
	messages, err := s.outboxRepo.GetPending(ctx, s.batchSize)
	if err != nil {
		log.Printf("[OutboxSender] fetch pending failed: %v", err)
		return
	}

	for _, msg := range messages {
		s.send(ctx, msg)
	}
}

func (s *OutboxSender) send(ctx context.Context, msg *model.OutboxMessage) {
	err := s.producer.Send(msg.Topic, msg.MessageKey, msg.Payload)
	if err == nil {
		if updateErr := s.outboxRepo.MarkSent(ctx, msg.ID); updateErr != nil {
			log.Printf("[OutboxSender] mark sent failed: id=%d, err=%v", msg.ID, updateErr)
		}
		return
	}

	log.Printf("[OutboxSender] delivery failed: id=%d, topic=%s, err=%v", msg.ID, msg.Topic, err)

	if err := s.outboxRepo.IncrementRetry(ctx, msg.ID); err != nil {
		log.Printf("[OutboxSender] increment retry failed: id=%d, err=%v", msg.ID, err)
	}

	if msg.RetryCount+1 >= s.cfg.Business.MaxRetryCount {
		if err := s.outboxRepo.MarkFailed(ctx, msg.ID); err != nil {
			log.Printf("[OutboxSender] mark failed failed: id=%d, err=%v", msg.ID, err)
		} else {
			log.Printf("[OutboxSender] retry budget exhausted, parked: id=%d", msg.ID)
		}
	}
}
