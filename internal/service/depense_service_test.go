package service_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gaida-lisongo/server-batis-nexus/internal/model"
	"github.com/gaida-lisongo/server-batis-nexus/internal/service"
	"github.com/gaida-lisongo/server-batis-nexus/pkg/apperrors"
)

func newDepenseService(db *gorm.DB) *service.DepenseService {
	return service.NewDepenseService(db, newTestConfig())
}

func TestCreateDepense(t *testing.T) {
	db := newTestDB(t)
	svc := newDepenseService(db)

	agent := seedAgent(t, db, "0")

	depense, err := svc.Create(context.Background(), service.CreateDepenseInput{
		AgentID: agent.ID,
		AnneeID: 3,
		Service: "Fournitures de bureau",
		Amount:  decimal.RequireFromString("120.50"),
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusPending, depense.Status)
	assert.Len(t, depense.OrderNumber, 8)
}

func TestCreateDepense_Validation(t *testing.T) {
	db := newTestDB(t)
	svc := newDepenseService(db)
	ctx := context.Background()

	var validationErr *apperrors.ValidationError

	cases := []service.CreateDepenseInput{
		{AgentID: 0, AnneeID: 1, Service: "x", Amount: decimal.RequireFromString("10")},
		{AgentID: 1, AnneeID: 0, Service: "x", Amount: decimal.RequireFromString("10")},
		{AgentID: 1, AnneeID: 1, Service: "", Amount: decimal.RequireFromString("10")},
		{AgentID: 1, AnneeID: 1, Service: "x", Amount: decimal.Zero},
	}
	for _, input := range cases {
		_, err := svc.Create(ctx, input)
		require.ErrorAs(t, err, &validationErr, "input %+v", input)
	}
}

func TestUpdateDepense_StatusWhitelist(t *testing.T) {
	db := newTestDB(t)
	svc := newDepenseService(db)
	ctx := context.Background()

	agent := seedAgent(t, db, "0")
	depense, err := svc.Create(ctx, service.CreateDepenseInput{
		AgentID: agent.ID,
		AnneeID: 1,
		Service: "Transport",
		Amount:  decimal.RequireFromString("40"),
	})
	require.NoError(t, err)

	completed := model.StatusCompleted
	updated, err := svc.Update(ctx, depense.ID, service.UpdateDepenseInput{Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, updated.Status)

	bogus := "Archived"
	var validationErr *apperrors.ValidationError
	_, err = svc.Update(ctx, depense.ID, service.UpdateDepenseInput{Status: &bogus})
	require.ErrorAs(t, err, &validationErr)
}

func TestDepenseListings(t *testing.T) {
	db := newTestDB(t)
	svc := newDepenseService(db)
	ctx := context.Background()

	agentA := seedAgent(t, db, "0")
	agentB := seedAgent(t, db, "0")

	for i, input := range []service.CreateDepenseInput{
		{AgentID: agentA.ID, AnneeID: 1, Service: "Transport", Amount: decimal.RequireFromString("10")},
		{AgentID: agentA.ID, AnneeID: 2, Service: "Impression", Amount: decimal.RequireFromString("20")},
		{AgentID: agentB.ID, AnneeID: 1, Service: "Cantine", Amount: decimal.RequireFromString("30")},
	} {
		_, err := svc.Create(ctx, input)
		require.NoError(t, err, "input %d", i)
	}

	byAgent, err := svc.ListByAgent(ctx, agentA.ID)
	require.NoError(t, err)
	assert.Len(t, byAgent, 2)

	byAnnee, err := svc.ListByAnnee(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, byAnnee, 2)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestDeleteDepense(t *testing.T) {
	db := newTestDB(t)
	svc := newDepenseService(db)
	ctx := context.Background()

	agent := seedAgent(t, db, "0")
	depense, err := svc.Create(ctx, service.CreateDepenseInput{
		AgentID: agent.ID,
		AnneeID: 1,
		Service: "Transport",
		Amount:  decimal.RequireFromString("10"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, depense.ID))

	var notFoundErr *apperrors.NotFoundError
	_, err = svc.Get(ctx, depense.ID)
	require.ErrorAs(t, err, &notFoundErr)

	require.ErrorAs(t, svc.Delete(ctx, depense.ID), &notFoundErr)
}
