package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gaida-lisongo/server-batis-nexus/internal/config"
	"github.com/gaida-lisongo/server-batis-nexus/internal/infrastructure/lock"
	"github.com/gaida-lisongo/server-batis-nexus/internal/model"
	"github.com/gaida-lisongo/server-batis-nexus/internal/repository"
	"github.com/gaida-lisongo/server-batis-nexus/pkg/apperrors"
	"github.com/gaida-lisongo/server-batis-nexus/pkg/idgen"
)

// RechargeService drives the wallet top-up lifecycle. A recharge starts
// pending and moves exactly once to completed, failed or cancelled.
// MarkCompleted and MarkFailed are the payment-callback contract: the
// provider reports an order number plus, on success, its own transaction
// reference.
type RechargeService struct {
	cfg          *config.Config
	redisClient  *redis.Client
	rechargeRepo *repository.RechargeRepository
}

func NewRechargeService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *RechargeService {
	return &RechargeService{
		cfg:          cfg,
		redisClient:  redisClient,
		rechargeRepo: repository.NewRechargeRepository(db),
	}
}

type CreateRechargeInput struct {
	Phone         string
	Amount        decimal.Decimal
	Currency      string
	Description   string
	EtudiantID    *uint
	PaymentMethod string
}

// Create validates the request and persists a pending recharge. Order-number
// generation retries on the rare collision; the unique index decides.
func (s *RechargeService) Create(ctx context.Context, input CreateRechargeInput) (*model.Recharge, error) {
	if !model.PhonePattern.MatchString(input.Phone) {
		return nil, apperrors.NewValidation("invalid phone number, expected format 243XXXXXXXXX")
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.NewValidation("amount must be greater than 0")
	}
	if input.Description == "" {
		return nil, apperrors.NewValidation("description is required")
	}
	if len(input.Description) > 500 {
		return nil, apperrors.NewValidation("description cannot exceed 500 characters")
	}

	currency := input.Currency
	if currency == "" {
		currency = model.CurrencyUSD
	}
	if !model.IsValidCurrency(currency) {
		return nil, apperrors.NewValidation("invalid currency %q", currency)
	}

	paymentMethod := input.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = model.PaymentMethodMobileMoney
	}

	attempts := s.cfg.Business.OrderNumberRetries
	if attempts < 1 {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		recharge := &model.Recharge{
			OrderNumber:   idgen.GenerateRechargeOrderNumber(),
			Phone:         input.Phone,
			Amount:        input.Amount,
			Currency:      currency,
			Description:   input.Description,
			Status:        model.RechargeStatusPending,
			EtudiantID:    input.EtudiantID,
			PaymentMethod: paymentMethod,
		}

		err := s.rechargeRepo.Create(ctx, recharge)
		if err == nil {
			return recharge, nil
		}
		if !errors.Is(err, repository.ErrDuplicateOrderNumber) {
			return nil, apperrors.NewInternal(err)
		}
		log.Printf("[Recharge] order number collision on %s, regenerating", recharge.OrderNumber)
	}

	return nil, apperrors.NewConflict("could not allocate a unique order number")
}

func (s *RechargeService) GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Recharge, error) {
	recharge, err := s.rechargeRepo.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, repository.ErrRechargeNotFound) {
			return nil, apperrors.NewNotFound("Recharge")
		}
		return nil, apperrors.NewInternal(err)
	}
	return recharge, nil
}

// Cancel aborts a top-up the payer gave up on. Only a pending recharge can be
// cancelled.
func (s *RechargeService) Cancel(ctx context.Context, orderNumber string) (*model.Recharge, error) {
	recharge, err := s.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if recharge.Status != model.RechargeStatusPending {
		return nil, apperrors.NewState("only pending recharges can be cancelled, current status: %s", recharge.Status)
	}

	err = s.rechargeRepo.UpdateStatus(ctx, orderNumber, model.RechargeStatusPending, model.RechargeStatusCancelled, "")
	if err != nil {
		if errors.Is(err, repository.ErrRechargeStatusInvalid) {
			return nil, apperrors.NewState("recharge is no longer pending")
		}
		return nil, apperrors.NewInternal(err)
	}

	return s.GetByOrderNumber(ctx, orderNumber)
}

// MarkCompleted finalizes a top-up after the provider confirmed payment.
// Replayed callbacks for an already-completed order succeed idempotently.
func (s *RechargeService) MarkCompleted(ctx context.Context, orderNumber, externalTxID string) (*model.Recharge, error) {
	return s.finalize(ctx, orderNumber, model.RechargeStatusCompleted, externalTxID)
}

// MarkFailed records a provider-side payment failure.
func (s *RechargeService) MarkFailed(ctx context.Context, orderNumber string) (*model.Recharge, error) {
	return s.finalize(ctx, orderNumber, model.RechargeStatusFailed, "")
}

func (s *RechargeService) finalize(ctx context.Context, orderNumber, toStatus, externalTxID string) (*model.Recharge, error) {
	callbackLock := lock.NewCallbackLock(s.redisClient, orderNumber, uuid.NewString())
	if err := callbackLock.Lock(ctx, 100*time.Millisecond, 20); err != nil {
		return nil, apperrors.NewInternal(err)
	}
	defer callbackLock.Unlock(ctx)

	recharge, err := s.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	// Replay of the same outcome is fine; a conflicting outcome is not.
	if recharge.Status == toStatus {
		return recharge, nil
	}
	if recharge.Status != model.RechargeStatusPending {
		return nil, apperrors.NewState("recharge %s is already %s", orderNumber, recharge.Status)
	}

	err = s.rechargeRepo.UpdateStatus(ctx, orderNumber, model.RechargeStatusPending, toStatus, externalTxID)
	if err != nil {
		if errors.Is(err, repository.ErrRechargeStatusInvalid) {
			return nil, apperrors.NewState("recharge %s is no longer pending", orderNumber)
		}
		return nil, apperrors.NewInternal(err)
	}

	log.Printf("[Recharge] %s -> %s", orderNumber, toStatus)
	return s.GetByOrderNumber(ctx, orderNumber)
}

func (s *RechargeService) ListByEtudiant(ctx context.Context, etudiantID uint) ([]*model.Recharge, error) {
	return s.rechargeRepo.ListByEtudiant(ctx, etudiantID)
}

func (s *RechargeService) ListByPhone(ctx context.Context, phone string) ([]*model.Recharge, error) {
	return s.rechargeRepo.ListByPhone(ctx, phone)
}

func (s *RechargeService) ListByStatus(ctx context.Context, status string) ([]*model.Recharge, error) {
	return s.rechargeRepo.ListByStatus(ctx, status)
}

// Statistics returns count and amount totals per status.
func (s *RechargeService) Statistics(ctx context.Context) ([]model.RechargeStats, error) {
	return s.rechargeRepo.Statistics(ctx)
}

// ExpirePending fails pending recharges older than the cutoff. Called by the
// timeout job; returns how many were swept.
func (s *RechargeService) ExpirePending(ctx context.Context, before time.Time, limit int) (int, error) {
	expired, err := s.rechargeRepo.GetExpiredPending(ctx, before, limit)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, recharge := range expired {
		err := s.rechargeRepo.UpdateStatus(ctx, recharge.OrderNumber, model.RechargeStatusPending, model.RechargeStatusFailed, "")
		if err != nil {
			log.Printf("[Recharge] sweep of %s lost to a concurrent transition: %v", recharge.OrderNumber, err)
			continue
		}
		swept++
	}
	return swept, nil
}
