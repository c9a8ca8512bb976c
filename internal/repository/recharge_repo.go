package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/gaida-lisongo/server-batis-nexus/internal/model"
)

var (
	ErrRechargeNotFound      = errors.New("recharge not found")
	ErrDuplicateOrderNumber  = errors.New("duplicate order number")
	ErrRechargeStatusInvalid = errors.New("recharge status transition not allowed")
)

type RechargeRepository struct {
	db *gorm.DB
}

func NewRechargeRepository(db *gorm.DB) *RechargeRepository {
	return &RechargeRepository{db: db}
}

func (r *RechargeRepository) Create(ctx context.Context, recharge *model.Recharge) error {
	err := r.db.WithContext(ctx).Create(recharge).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateOrderNumber
	}
	return err
}

func (r *RechargeRepository) GetByID(ctx context.Context, id uint) (*model.Recharge, error) {
	var recharge model.Recharge
	err := r.db.WithContext(ctx).First(&recharge, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRechargeNotFound
		}
		return nil, err
	}
	return &recharge, nil
}

func (r *RechargeRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Recharge, error) {
	var recharge model.Recharge
	err := r.db.WithContext(ctx).Where("order_number = ?", orderNumber).First(&recharge).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRechargeNotFound
		}
		return nil, err
	}
	return &recharge, nil
}

func (r *RechargeRepository) ListByEtudiant(ctx context.Context, etudiantID uint) ([]*model.Recharge, error) {
	var recharges []*model.Recharge
	err := r.db.WithContext(ctx).
		Where("etudiant_id = ?", etudiantID).
		Order("created_at DESC").
		Find(&recharges).Error
	return recharges, err
}

func (r *RechargeRepository) ListByPhone(ctx context.Context, phone string) ([]*model.Recharge, error) {
	var recharges []*model.Recharge
	err := r.db.WithContext(ctx).
		Where("phone = ?", phone).
		Order("created_at DESC").
		Find(&recharges).Error
	return recharges, err
}

func (r *RechargeRepository) ListByStatus(ctx context.Context, status string) ([]*model.Recharge, error) {
	var recharges []*model.Recharge
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&recharges).Error
	return recharges, err
}

// UpdateStatus applies one state-machine step with a conditional write, so a
// concurrent transition loses cleanly instead of double-applying. The
// external payment reference is recorded alongside a completion.
func (r *RechargeRepository) UpdateStatus(ctx context.Context, orderNumber, fromStatus, toStatus, externalTxID string) error {
	if !model.RechargeCanTransition(fromStatus, toStatus) {
		return ErrRechargeStatusInvalid
	}

	updates := map[string]interface{}{
		"status": toStatus,
	}
	if externalTxID != "" {
		updates["transaction_id"] = externalTxID
	}

	result := r.db.WithContext(ctx).
		Model(&model.Recharge{}).
		Where("order_number = ? AND status = ?", orderNumber, fromStatus).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByOrderNumber(ctx, orderNumber); err != nil {
			return err
		}
		return ErrRechargeStatusInvalid
	}
	return nil
}

// GetExpiredPending returns pending recharges created before the cutoff,
// for the timeout sweep.
func (r *RechargeRepository) GetExpiredPending(ctx context.Context, before time.Time, limit int) ([]*model.Recharge, error) {
	var recharges []*model.Recharge
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", model.RechargeStatusPending, before).
		Limit(limit).
		Find(&recharges).Error
	return recharges, err
}

func (r *RechargeRepository) Statistics(ctx context.Context) ([]model.RechargeStats, error) {
	var stats []model.RechargeStats
	err := r.db.WithContext(ctx).
		Model(&model.Recharge{}).
		Select("status, COUNT(*) AS count, SUM(amount) AS total_amount").
		Group("status").
		Scan(&stats).Error
	return stats, err
}
