package service

import (
	"context"
	"errors"
	"log"

	"github.com/gaida-lisongo/server-batis-nexus/internal/repository"
)

// LinkOutcome is the typed result of a best-effort link operation.
type LinkOutcome string

const (
	LinkApplied        LinkOutcome = "applied"
	LinkUnmappedType   LinkOutcome = "unmapped_type"
	LinkMissingProduct LinkOutcome = "missing_product"
	LinkStoreError     LinkOutcome = "store_error"
)

// ProductLinker resolves a (productType, productId) pair to its catalog
// collection and flips the product's reciprocal transaction reference.
//
// Link failures are deliberately non-fatal: the ledger stays the source of
// truth for money movement even when the academic catalog is missing the
// product row, so outcomes are logged and reported, never propagated as
// errors to the transaction write.
type ProductLinker struct {
	registry map[string]repository.ProductCollection
}

func NewProductLinker(registry map[string]repository.ProductCollection) *ProductLinker {
	return &ProductLinker{registry: registry}
}

// Attach points the product's back-reference at the transaction.
func (l *ProductLinker) Attach(ctx context.Context, productType string, productID, transactionID uint) LinkOutcome {
	collection, ok := l.registry[productType]
	if !ok {
		log.Printf("[ProductLinker] no collection mapped for product type %q, skipping attach", productType)
		return LinkUnmappedType
	}

	err := collection.Attach(ctx, productID, transactionID)
	switch {
	case err == nil:
		return LinkApplied
	case errors.Is(err, repository.ErrProductNotFound):
		log.Printf("[ProductLinker] product %s/%d not found, skipping attach", productType, productID)
		return LinkMissingProduct
	default:
		log.Printf("[ProductLinker] attach failed for %s/%d: %v", productType, productID, err)
		return LinkStoreError
	}
}

// Detach clears the product's back-reference.
func (l *ProductLinker) Detach(ctx context.Context, productType string, productID uint) LinkOutcome {
	collection, ok := l.registry[productType]
	if !ok {
		log.Printf("[ProductLinker] no collection mapped for product type %q, skipping detach", productType)
		return LinkUnmappedType
	}

	err := collection.Detach(ctx, productID)
	switch {
	case err == nil:
		return LinkApplied
	case errors.Is(err, repository.ErrProductNotFound):
		log.Printf("[ProductLinker] product %s/%d not found, skipping detach", productType, productID)
		return LinkMissingProduct
	default:
		log.Printf("[ProductLinker] detach failed for %s/%d: %v", productType, productID, err)
		return LinkStoreError
	}
}
