package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gaida-lisongo/server-batis-nexus/internal/model"
)

var (
	ErrEtudiantNotFound = errors.New("etudiant not found")
	ErrAgentNotFound    = errors.New("agent not found")
	ErrOptimisticLock   = errors.New("concurrent balance update, retry")
)

// AccountRepository is the store behind student and agent accounts. Solde
// writes are version-guarded so a concurrent mutation aborts the enclosing
// transaction instead of silently overwriting.
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetEtudiant(ctx context.Context, tx *gorm.DB, id uint) (*model.Etudiant, error) {
	if tx == nil {
		tx = r.db
	}
	var etudiant model.Etudiant
	err := tx.WithContext(ctx).First(&etudiant, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEtudiantNotFound
		}
		return nil, err
	}
	return &etudiant, nil
}

func (r *AccountRepository) GetAgent(ctx context.Context, tx *gorm.DB, id uint) (*model.Agent, error) {
	if tx == nil {
		tx = r.db
	}
	var agent model.Agent
	err := tx.WithContext(ctx).First(&agent, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgentNotFound
		}
		return nil, err
	}
	return &agent, nil
}

func (r *AccountRepository) CreateEtudiant(ctx context.Context, etudiant *model.Etudiant) error {
	return r.db.WithContext(ctx).Create(etudiant).Error
}

func (r *AccountRepository) CreateAgent(ctx context.Context, agent *model.Agent) error {
	return r.db.WithContext(ctx).Create(agent).Error
}

// SetEtudiantSolde writes a new student balance, guarded by the version read
// earlier in the same transaction.
func (r *AccountRepository) SetEtudiantSolde(ctx context.Context, tx *gorm.DB, id uint, solde decimal.Decimal, version int) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Model(&model.Etudiant{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]interface{}{
			"solde":   solde,
			"version": gorm.Expr("version + 1"),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetEtudiant(ctx, tx, id); err != nil {
			return err
		}
		return ErrOptimisticLock
	}
	return nil
}

// SetAgentSolde writes a new agent balance with the same version guard.
func (r *AccountRepository) SetAgentSolde(ctx context.Context, tx *gorm.DB, id uint, solde decimal.Decimal, version int) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Model(&model.Agent{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]interface{}{
			"solde":   solde,
			"version": gorm.Expr("version + 1"),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetAgent(ctx, tx, id); err != nil {
			return err
		}
		return ErrOptimisticLock
	}
	return nil
}
