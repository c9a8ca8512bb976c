package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/gaida-lisongo/server-batis-nexus/internal/model"
)

var ErrProductNotFound = errors.New("product not found")

// ProductCollection is the capability a product kind exposes to the ledger:
// setting and clearing its reciprocal transaction reference.
type ProductCollection interface {
	Attach(ctx context.Context, productID, transactionID uint) error
	Detach(ctx context.Context, productID uint) error
}

// gormCollection implements ProductCollection for one catalog table.
type gormCollection struct {
	db    *gorm.DB
	model interface{}
}

func (c *gormCollection) exists(ctx context.Context, productID uint) error {
	var count int64
	err := c.db.WithContext(ctx).Model(c.model).Where("id = ?", productID).Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (c *gormCollection) Attach(ctx context.Context, productID, transactionID uint) error {
	if err := c.exists(ctx, productID); err != nil {
		return err
	}
	return c.db.WithContext(ctx).Model(c.model).
		Where("id = ?", productID).
		Update("transaction_id", transactionID).Error
}

func (c *gormCollection) Detach(ctx context.Context, productID uint) error {
	if err := c.exists(ctx, productID); err != nil {
		return err
	}
	return c.db.WithContext(ctx).Model(c.model).
		Where("id = ?", productID).
		Update("transaction_id", nil).Error
}

// NewProductRegistry maps each product type to its catalog collection.
// Document, Enrollement and Modalite have no collection yet; the linker
// treats an unmapped type as a soft failure.
func NewProductRegistry(db *gorm.DB) map[string]ProductCollection {
	return map[string]ProductCollection{
		model.ProductTypeInscription: &gormCollection{db: db, model: &model.Parcours{}},
		model.ProductTypeRessource:   &gormCollection{db: db, model: &model.Ressource{}},
		model.ProductTypeActivity:    &gormCollection{db: db, model: &model.Activity{}},
		model.ProductTypeRecours:     &gormCollection{db: db, model: &model.Recours{}},
		model.ProductTypeBulletin:    &gormCollection{db: db, model: &model.Commande{}},
	}
}
