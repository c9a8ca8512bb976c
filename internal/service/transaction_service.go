package service

import (
	"context"
	"errors"
	"math"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gaida-lisongo/server-batis-nexus/internal/config"
	"github.com/gaida-lisongo/server-batis-nexus/internal/model"
	"github.com/gaida-lisongo/server-batis-nexus/internal/repository"
	"github.com/gaida-lisongo/server-batis-nexus/pkg/apperrors"
)

// TransactionService owns the transaction ledger: creation, lookup,
// filtered listing, guarded update and guarded deletion.
type TransactionService struct {
	db              *gorm.DB
	cfg             *config.Config
	transactionRepo *repository.TransactionRepository
	linker          *ProductLinker
}

func NewTransactionService(db *gorm.DB, cfg *config.Config, linker *ProductLinker) *TransactionService {
	return &TransactionService{
		db:              db,
		cfg:             cfg,
		transactionRepo: repository.NewTransactionRepository(db),
		linker:          linker,
	}
}

type CreateTransactionInput struct {
	Amount      decimal.Decimal
	AgentID     *uint
	ProductID   uint
	ProductType string
}

// Create opens a Pending ledger entry and points the product's reciprocal
// reference at it. The attach is best-effort: a missing catalog record never
// blocks the ledger write.
func (s *TransactionService) Create(ctx context.Context, input CreateTransactionInput) (*model.Transaction, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.NewValidation("amount must be a positive number")
	}
	if input.ProductID == 0 {
		return nil, apperrors.NewValidation("productId is required")
	}
	if !model.IsValidProductType(input.ProductType) {
		return nil, apperrors.NewValidation("invalid productType %q", input.ProductType)
	}

	transaction := &model.Transaction{
		Amount:      input.Amount,
		AgentID:     input.AgentID,
		ProductID:   input.ProductID,
		ProductType: input.ProductType,
		Status:      model.StatusPending,
	}

	if err := s.transactionRepo.Create(ctx, nil, transaction); err != nil {
		return nil, apperrors.NewInternal(err)
	}

	s.linker.Attach(ctx, transaction.ProductType, transaction.ProductID, transaction.ID)

	return s.Get(ctx, transaction.ID)
}

func (s *TransactionService) Get(ctx context.Context, id uint) (*model.Transaction, error) {
	transaction, err := s.transactionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return nil, apperrors.NewNotFound("Transaction")
		}
		return nil, apperrors.NewInternal(err)
	}
	return transaction, nil
}

// ListQuery is the filtered/paginated read surface.
type ListQuery struct {
	Filter    repository.TransactionFilter
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Pagination is the page metadata returned beside a listing.
type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
	HasNext      bool  `json:"hasNext"`
	HasPrev      bool  `json:"hasPrev"`
}

// List returns one page of transactions with payer and subscriber identities
// resolved. Page size defaults to business.default_page_size and is capped at
// business.max_page_size.
func (s *TransactionService) List(ctx context.Context, query ListQuery) ([]*model.Transaction, *Pagination, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit <= 0 {
		limit = s.cfg.Business.DefaultPageSize
	}
	if limit > s.cfg.Business.MaxPageSize {
		limit = s.cfg.Business.MaxPageSize
	}

	transactions, total, err := s.transactionRepo.List(ctx, query.Filter, repository.ListOptions{
		Page:      page,
		Limit:     limit,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
	})
	if err != nil {
		return nil, nil, apperrors.NewInternal(err)
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	pagination := &Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: limit,
		HasNext:      page < totalPages,
		HasPrev:      page > 1,
	}

	return transactions, pagination, nil
}

type UpdateTransactionInput struct {
	Amount      *decimal.Decimal
	AgentID     *uint
	ProductID   *uint
	ProductType *string
	Status      *string
}

// Update patches the given fields. A Completed transaction is immutable.
// When the product link changes, the old product is detached and the new one
// attached; both sides are best-effort like Create's attach.
func (s *TransactionService) Update(ctx context.Context, id uint, input UpdateTransactionInput) (*model.Transaction, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if existing.Status == model.StatusCompleted {
		return nil, apperrors.NewState("a completed transaction cannot be modified")
	}

	fields := map[string]interface{}{}
	if input.Amount != nil {
		if input.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, apperrors.NewValidation("amount must be a positive number")
		}
		fields["amount"] = *input.Amount
	}
	if input.AgentID != nil {
		fields["agent_id"] = *input.AgentID
	}
	if input.ProductID != nil {
		fields["product_id"] = *input.ProductID
	}
	if input.ProductType != nil {
		if !model.IsValidProductType(*input.ProductType) {
			return nil, apperrors.NewValidation("invalid productType %q", *input.ProductType)
		}
		fields["product_type"] = *input.ProductType
	}
	if input.Status != nil {
		if !model.TransactionCanTransition(existing.Status, *input.Status) {
			return nil, apperrors.NewState("cannot transition transaction from %s to %s", existing.Status, *input.Status)
		}
		fields["status"] = *input.Status
	}

	if len(fields) == 0 {
		return existing, nil
	}

	if err := s.transactionRepo.Updates(ctx, id, fields); err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return nil, apperrors.NewNotFound("Transaction")
		}
		return nil, apperrors.NewInternal(err)
	}

	// Repoint the product back-reference when the link changed. These are
	// three separate writes with no shared atomic scope; the linker absorbs
	// partial failures as logged soft failures.
	if input.ProductID != nil || input.ProductType != nil {
		newProductID := existing.ProductID
		if input.ProductID != nil {
			newProductID = *input.ProductID
		}
		newProductType := existing.ProductType
		if input.ProductType != nil {
			newProductType = *input.ProductType
		}
		if newProductID != existing.ProductID || newProductType != existing.ProductType {
			s.linker.Detach(ctx, existing.ProductType, existing.ProductID)
			s.linker.Attach(ctx, newProductType, newProductID, id)
		}
	}

	return s.Get(ctx, id)
}

// Delete removes a transaction that has not completed, clearing the product's
// back-reference first.
func (s *TransactionService) Delete(ctx context.Context, id uint) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if existing.Status == model.StatusCompleted {
		return apperrors.NewState("cannot delete a completed transaction; consider changing status to Failed instead")
	}

	s.linker.Detach(ctx, existing.ProductType, existing.ProductID)

	if err := s.transactionRepo.Delete(ctx, id); err != nil {
		return apperrors.NewInternal(err)
	}
	return nil
}
