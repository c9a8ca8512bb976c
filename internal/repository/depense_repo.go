package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/gaida-lisongo/server-batis-nexus/internal/model"
)

var ErrDepenseNotFound = errors.New("depense not found")

type DepenseRepository struct {
	db *gorm.DB
}

func NewDepenseRepository(db *gorm.DB) *DepenseRepository {
	return &DepenseRepository{db: db}
}

func (r *DepenseRepository) Create(ctx context.Context, depense *model.Depense) error {
	err := r.db.WithContext(ctx).Create(depense).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateOrderNumber
	}
	return err
}

func (r *DepenseRepository) GetByID(ctx context.Context, id uint) (*model.Depense, error) {
	var depense model.Depense
	err := r.db.WithContext(ctx).Preload("Agent").First(&depense, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepenseNotFound
		}
		return nil, err
	}
	return &depense, nil
}

func (r *DepenseRepository) ListByAgent(ctx context.Context, agentID uint) ([]*model.Depense, error) {
	var depenses []*model.Depense
	err := r.db.WithContext(ctx).
		Preload("Agent").
		Where("agent_id = ?", agentID).
		Order("created_at DESC").
		Find(&depenses).Error
	return depenses, err
}

func (r *DepenseRepository) ListByAnnee(ctx context.Context, anneeID uint) ([]*model.Depense, error) {
	var depenses []*model.Depense
	err := r.db.WithContext(ctx).
		Preload("Agent").
		Where("annee_id = ?", anneeID).
		Order("created_at DESC").
		Find(&depenses).Error
	return depenses, err
}

func (r *DepenseRepository) ListAll(ctx context.Context) ([]*model.Depense, error) {
	var depenses []*model.Depense
	err := r.db.WithContext(ctx).
		Preload("Agent").
		Order("created_at DESC").
		Find(&depenses).Error
	return depenses, err
}

func (r *DepenseRepository) Updates(ctx context.Context, id uint, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&model.Depense{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDepenseNotFound
	}
	return nil
}

func (r *DepenseRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&model.Depense{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDepenseNotFound
	}
	return nil
}
