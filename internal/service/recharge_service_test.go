package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gaida-lisongo/server-batis-nexus/internal/model"
	"github.com/gaida-lisongo/server-batis-nexus/internal/service"
	"github.com/gaida-lisongo/server-batis-nexus/pkg/apperrors"
)

func newRechargeService(t *testing.T, db *gorm.DB) *service.RechargeService {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return service.NewRechargeService(db, client, newTestConfig())
}

func createRecharge(t *testing.T, svc *service.RechargeService, amount string) *model.Recharge {
	t.Helper()
	recharge, err := svc.Create(context.Background(), service.CreateRechargeInput{
		Phone:       "243812345678",
		Amount:      decimal.RequireFromString(amount),
		Description: "Wallet top-up",
	})
	require.NoError(t, err)
	return recharge
}

func TestCreateRecharge_DefaultsAndOrderNumber(t *testing.T) {
	db := newTestDB(t)
	svc := newRechargeService(t, db)

	recharge := createRecharge(t, svc, "25")

	assert.Equal(t, model.RechargeStatusPending, recharge.Status)
	assert.Equal(t, model.CurrencyUSD, recharge.Currency)
	assert.Equal(t, model.PaymentMethodMobileMoney, recharge.PaymentMethod)
	assert.Regexp(t, `^RCH[0-9]{6}[0-9A-F]{4}$`, recharge.OrderNumber)
}

func TestCreateRecharge_Validation(t *testing.T) {
	db := newTestDB(t)
	svc := newRechargeService(t, db)
	ctx := context.Background()

	var validationErr *apperrors.ValidationError

	cases := []service.CreateRechargeInput{
		{Phone: "0812345678", Amount: decimal.RequireFromString("10"), Description: "d"},
		{Phone: "24381234567", Amount: decimal.RequireFromString("10"), Description: "d"},
		{Phone: "2438123456789", Amount: decimal.RequireFromString("10"), Description: "d"},
		{Phone: "243812345678", Amount: decimal.Zero, Description: "d"},
		{Phone: "243812345678", Amount: decimal.RequireFromString("-5"), Description: "d"},
		{Phone: "243812345678", Amount: decimal.RequireFromString("10"), Description: ""},
		{Phone: "243812345678", Amount: decimal.RequireFromString("10"), Description: "d", Currency: "GBP"},
	}
	for _, input := range cases {
		_, err := svc.Create(ctx, input)
		require.ErrorAs(t, err, &validationErr, "input %+v", input)
	}
}

func TestCancelRecharge_OnlyPending(t *testing.T) {
	db := newTestDB(t)
	svc := newRechargeService(t, db)
	ctx := context.Background()

	recharge := createRecharge(t, svc, "25")

	cancelled, err := svc.Cancel(ctx, recharge.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, model.RechargeStatusCancelled, cancelled.Status)

	var stateErr *apperrors.StateError
	_, err = svc.Cancel(ctx, recharge.OrderNumber)
	require.ErrorAs(t, err, &stateErr)
}

func TestMarkCompleted_StampsProviderReference(t *testing.T) {
	db := newTestDB(t)
	svc := newRechargeService(t, db)
	ctx := context.Background()

	recharge := createRecharge(t, svc, "25")

	completed, err := svc.MarkCompleted(ctx, recharge.OrderNumber, "FLEX-123")
	require.NoError(t, err)
	assert.Equal(t, model.RechargeStatusCompleted, completed.Status)
	assert.Equal(t, "FLEX-123", completed.TransactionID)
}

func TestMarkCompleted_ReplayedCallbackIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newRechargeService(t, db)
	ctx := context.Background()

	recharge := createRecharge(t, svc, "25")

	_, err := svc.MarkCompleted(ctx, recharge.OrderNumber, "FLEX-123")
	require.NoError(t, err)

	replayed, err := svc.MarkCompleted(ctx, recharge.OrderNumber, "FLEX-123")
	require.NoError(t, err)
	assert.Equal(t, model.RechargeStatusCompleted, replayed.Status)

	// a conflicting outcome for the same order is refused
	var stateErr *apperrors.StateError
	_, err = svc.MarkFailed(ctx, recharge.OrderNumber)
	require.ErrorAs(t, err, &stateErr)
}

func TestMarkFailed_FromPending(t *testing.T) {
	db := newTestDB(t)
	svc := newRechargeService(t, db)

	recharge := createRecharge(t, svc, "25")

	failed, err := svc.MarkFailed(context.Background(), recharge.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, model.RechargeStatusFailed, failed.Status)
}

func TestRechargeStatistics(t *testing.T) {
	db := newTestDB(t)
	svc := newRechargeService(t, db)
	ctx := context.Background()

	first := createRecharge(t, svc, "10")
	createRecharge(t, svc, "15")
	createRecharge(t, svc, "30")

	_, err := svc.MarkCompleted(ctx, first.OrderNumber, "FLEX-1")
	require.NoError(t, err)

	stats, err := svc.Statistics(ctx)
	require.NoError(t, err)

	byStatus := map[string]model.RechargeStats{}
	for _, row := range stats {
		byStatus[row.Status] = row
	}

	assert.Equal(t, int64(1), byStatus[model.RechargeStatusCompleted].Count)
	assert.True(t, byStatus[model.RechargeStatusCompleted].TotalAmount.Equal(decimal.RequireFromString("10")))
	assert.Equal(t, int64(2), byStatus[model.RechargeStatusPending].Count)
	assert.True(t, byStatus[model.RechargeStatusPending].TotalAmount.Equal(decimal.RequireFromString("45")))
}

func TestExpirePending_SweepsOnlyOldPending(t *testing.T) {
	db := newTestDB(t)
	svc := newRechargeService(t, db)
	ctx := context.Background()

	stale := createRecharge(t, svc, "10")
	fresh := createRecharge(t, svc, "15")

	cutoff := time.Now().Add(-30 * time.Minute)
	require.NoError(t, db.Model(&model.Recharge{}).
		Where("order_number = ?", stale.OrderNumber).
		Update("created_at", cutoff.Add(-time.Hour)).Error)

	swept, err := svc.ExpirePending(ctx, cutoff, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	staleAfter, err := svc.GetByOrderNumber(ctx, stale.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, model.RechargeStatusFailed, staleAfter.Status)

	freshAfter, err := svc.GetByOrderNumber(ctx, fresh.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, model.RechargeStatusPending, freshAfter.Status)
}

func TestListRechargesByPhone(t *testing.T) {
	db := newTestDB(t)
	svc := newRechargeService(t, db)
	ctx := context.Background()

	createRecharge(t, svc, "10")
	createRecharge(t, svc, "20")

	recharges, err := svc.ListByPhone(ctx, "243812345678")
	require.NoError(t, err)
	assert.Len(t, recharges, 2)

	none, err := svc.ListByPhone(ctx, "243899999999")
	require.NoError(t, err)
	assert.Empty(t, none)
}
