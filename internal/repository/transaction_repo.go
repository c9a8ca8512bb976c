package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/gaida-lisongo/server-batis-nexus/internal/model"
)

var (
	ErrTransactionNotFound   = errors.New("transaction not found")
	ErrDuplicateSubscription = errors.New("student already subscribed to this transaction")
	ErrSubscriptionNotFound  = errors.New("subscription not found")
)

// Sort fields accepted by List; anything else falls back to created_at.
var transactionSortFields = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"amount":    "amount",
	"status":    "status",
}

// TransactionFilter narrows List results. Zero values mean "no filter".
type TransactionFilter struct {
	Status      string
	ProductType string
	ProductID   uint
	AgentID     uint
}

// ListOptions carries pagination and sorting. Page and Limit are assumed
// already clamped by the service.
type ListOptions struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *gorm.DB, transaction *model.Transaction) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(transaction).Error
}

// GetByID loads a transaction enriched with the payee agent and every
// subscriber's identity.
func (r *TransactionRepository) GetByID(ctx context.Context, id uint) (*model.Transaction, error) {
	var transaction model.Transaction
	err := r.db.WithContext(ctx).
		Preload("Agent").
		Preload("Subscriptions.Etudiant").
		First(&transaction, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &transaction, nil
}

// GetForUpdate re-reads the bare transaction row inside the caller's
// transaction scope. The subscribe flow uses it to re-validate its checks.
func (r *TransactionRepository) GetForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*model.Transaction, error) {
	if tx == nil {
		tx = r.db
	}
	var transaction model.Transaction
	err := tx.WithContext(ctx).First(&transaction, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &transaction, nil
}

func (r *TransactionRepository) List(ctx context.Context, filter TransactionFilter, opts ListOptions) ([]*model.Transaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Transaction{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ProductType != "" {
		query = query.Where("product_type = ?", filter.ProductType)
	}
	if filter.ProductID != 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.AgentID != 0 {
		query = query.Where("agent_id = ?", filter.AgentID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := transactionSortFields[opts.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if opts.SortOrder == "asc" {
		direction = "ASC"
	}

	var transactions []*model.Transaction
	err := query.
		Preload("Agent").
		Preload("Subscriptions.Etudiant").
		Order(column + " " + direction).
		Offset((opts.Page - 1) * opts.Limit).
		Limit(opts.Limit).
		Find(&transactions).Error

	return transactions, total, err
}

func (r *TransactionRepository) Updates(ctx context.Context, id uint, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (r *TransactionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transaction_id = ?", id).Delete(&model.Subscription{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Transaction{}, id).Error
	})
}

// HasSubscription reports whether the student already holds an entry on this
// transaction, read inside the caller's transaction scope.
func (r *TransactionRepository) HasSubscription(ctx context.Context, tx *gorm.DB, transactionID, etudiantID uint) (bool, error) {
	if tx == nil {
		tx = r.db
	}
	var count int64
	err := tx.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("transaction_id = ? AND etudiant_id = ?", transactionID, etudiantID).
		Count(&count).Error
	return count > 0, err
}

// CreateSubscription appends the audit entry. The unique index on
// (transaction_id, etudiant_id) turns a concurrent double-subscribe into
// ErrDuplicateSubscription, aborting the enclosing transfer.
func (r *TransactionRepository) CreateSubscription(ctx context.Context, tx *gorm.DB, sub *model.Subscription) error {
	if tx == nil {
		tx = r.db
	}
	err := tx.WithContext(ctx).Create(sub).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateSubscription
	}
	return err
}

// GetSubscription loads one audit entry inside the caller's transaction.
func (r *TransactionRepository) GetSubscription(ctx context.Context, tx *gorm.DB, transactionID, etudiantID uint) (*model.Subscription, error) {
	if tx == nil {
		tx = r.db
	}
	var sub model.Subscription
	err := tx.WithContext(ctx).
		Where("transaction_id = ? AND etudiant_id = ?", transactionID, etudiantID).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *TransactionRepository) DeleteSubscription(ctx context.Context, tx *gorm.DB, transactionID, etudiantID uint) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Where("transaction_id = ? AND etudiant_id = ?", transactionID, etudiantID).
		Delete(&model.Subscription{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
