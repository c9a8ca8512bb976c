package service

import (
	"context"
	"errors"
	"log"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gaida-lisongo/server-batis-nexus/internal/config"
	"github.com/gaida-lisongo/server-batis-nexus/internal/model"
	"github.com/gaida-lisongo/server-batis-nexus/internal/repository"
	"github.com/gaida-lisongo/server-batis-nexus/pkg/apperrors"
	"github.com/gaida-lisongo/server-batis-nexus/pkg/idgen"
)

// DepenseService records agent withdrawal requests. It is a plain CRUD state
// holder: a withdrawal's effect on the agent's solde, if any, is applied by
// whoever settles it, not by this component.
type DepenseService struct {
	cfg         *config.Config
	depenseRepo *repository.DepenseRepository
}

func NewDepenseService(db *gorm.DB, cfg *config.Config) *DepenseService {
	return &DepenseService{
		cfg:         cfg,
		depenseRepo: repository.NewDepenseRepository(db),
	}
}

type CreateDepenseInput struct {
	AgentID uint
	AnneeID uint
	Service string
	Amount  decimal.Decimal
}

func (s *DepenseService) Create(ctx context.Context, input CreateDepenseInput) (*model.Depense, error) {
	if input.AgentID == 0 || input.AnneeID == 0 || input.Service == "" {
		return nil, apperrors.NewValidation("agentId, anneeId, service and amount are required")
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.NewValidation("amount must be a positive number")
	}

	attempts := s.cfg.Business.OrderNumberRetries
	if attempts < 1 {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		depense := &model.Depense{
			AgentID:     input.AgentID,
			AnneeID:     input.AnneeID,
			Service:     input.Service,
			Amount:      input.Amount,
			Status:      model.StatusPending,
			OrderNumber: idgen.GenerateDepenseOrderNumber(),
		}

		err := s.depenseRepo.Create(ctx, depense)
		if err == nil {
			return depense, nil
		}
		if !errors.Is(err, repository.ErrDuplicateOrderNumber) {
			return nil, apperrors.NewInternal(err)
		}
		log.Printf("[Depense] order number collision on %s, regenerating", depense.OrderNumber)
	}

	return nil, apperrors.NewConflict("could not allocate a unique order number")
}

func (s *DepenseService) Get(ctx context.Context, id uint) (*model.Depense, error) {
	depense, err := s.depenseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDepenseNotFound) {
			return nil, apperrors.NewNotFound("Depense")
		}
		return nil, apperrors.NewInternal(err)
	}
	return depense, nil
}

func (s *DepenseService) ListByAgent(ctx context.Context, agentID uint) ([]*model.Depense, error) {
	return s.depenseRepo.ListByAgent(ctx, agentID)
}

func (s *DepenseService) ListByAnnee(ctx context.Context, anneeID uint) ([]*model.Depense, error) {
	return s.depenseRepo.ListByAnnee(ctx, anneeID)
}

func (s *DepenseService) ListAll(ctx context.Context) ([]*model.Depense, error) {
	return s.depenseRepo.ListAll(ctx)
}

type UpdateDepenseInput struct {
	AnneeID *uint
	Service *string
	Amount  *decimal.Decimal
	Status  *string
}

func (s *DepenseService) Update(ctx context.Context, id uint, input UpdateDepenseInput) (*model.Depense, error) {
	fields := map[string]interface{}{}
	if input.AnneeID != nil {
		fields["annee_id"] = *input.AnneeID
	}
	if input.Service != nil {
		fields["service"] = *input.Service
	}
	if input.Amount != nil {
		if input.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, apperrors.NewValidation("amount must be a positive number")
		}
		fields["amount"] = *input.Amount
	}
	if input.Status != nil {
		switch *input.Status {
		case model.StatusPending, model.StatusCompleted, model.StatusFailed:
			fields["status"] = *input.Status
		default:
			return nil, apperrors.NewValidation("invalid status %q", *input.Status)
		}
	}

	if len(fields) == 0 {
		return s.Get(ctx, id)
	}

	if err := s.depenseRepo.Updates(ctx, id, fields); err != nil {
		if errors.Is(err, repository.ErrDepenseNotFound) {
			return nil, apperrors.NewNotFound("Depense")
		}
		return nil, apperrors.NewInternal(err)
	}

	return s.Get(ctx, id)
}

func (s *DepenseService) Delete(ctx context.Context, id uint) error {
	if err := s.depenseRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrDepenseNotFound) {
			return apperrors.NewNotFound("Depense")
		}
		return apperrors.NewInternal(err)
	}
	return nil
}
