package job

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/gaida-lisongo/server-batis-nexus/internal/config"
	"github.com/gaida-lisongo/server-batis-nexus/internal/service"
)

// RechargeTimeoutJob sweeps pending recharges whose payment never arrived,
// marking them failed once they outlive the configured window.
type RechargeTimeoutJob struct {
	rechargeService *service.RechargeService
	cfg             *config.Config
	stopCh          chan struct{}
	interval        time.Duration
	batchSize       int
}

func NewRechargeTimeoutJob(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *RechargeTimeoutJob {
	return &RechargeTimeoutJob{
		rechargeService: service.NewRechargeService(db, redisClient, cfg),
		cfg:             cfg,
		stopCh:          make(chan struct{}),
		interval:        time.Minute,
		batchSize:       100,
	}
}

func (j *RechargeTimeoutJob) Start(ctx context.Context) {
	log.Println("[RechargeTimeoutJob] started")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[RechargeTimeoutJob] context cancelled, exiting")
			return
		case <-j.stopCh:
			log.Println("[RechargeTimeoutJob] stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *RechargeTimeoutJob) Stop() {
	close(j.stopCh)
}

func (j *RechargeTimeoutJob) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-time.Duration(j.cfg.Business.RechargeTimeoutMinutes) * time.Minute)

	swept, err := j.rechargeService.ExpirePending(ctx, cutoff, j.batchSize)
	if err != nil {
		log.Printf("[RechargeTimeoutJob] sweep failed: %v", err)
		return
	}
	if swept > 0 {
		log.Printf("[RechargeTimeoutJob] swept %d expired recharges", swept)
	}
}
