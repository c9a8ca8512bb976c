package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gaida-lisongo/server-batis-nexus/internal/config"
	"github.com/gaida-lisongo/server-batis-nexus/internal/handler"
	"github.com/gaida-lisongo/server-batis-nexus/internal/infrastructure/database"
	"github.com/gaida-lisongo/server-batis-nexus/internal/model"
	"github.com/gaida-lisongo/server-batis-nexus/pkg/response"
	"github.com/gaida-lisongo/server-batis-nexus/pkg/token"
)

func newTestRouter(t *testing.T, cfg *config.Config) (http.Handler, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))

	return handler.SetupRouter(db, cfg), db
}

func testConfig() *config.Config {
	return &config.Config{
		Business: config.BusinessConfig{
			DefaultPageSize:    20,
			MaxPageSize:        200,
			OrderNumberRetries: 3,
		},
	}
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var envelope response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), "body: %s", w.Body.String())
	return w, envelope
}

func TestCreateRecette(t *testing.T) {
	router, db := newTestRouter(t, testConfig())

	w, envelope := doJSON(t, router, http.MethodPost, "/finance/recettes",
		`{"amount": 25.5, "productId": 1, "productType": "Ressource"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, envelope.Success)

	var count int64
	require.NoError(t, db.Model(&model.Transaction{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateRecette_InvalidProductType(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	w, envelope := doJSON(t, router, http.MethodPost, "/finance/recettes",
		`{"amount": 25.5, "productId": 1, "productType": "Cantine"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, envelope.Success)
	assert.NotEmpty(t, envelope.Error)
}

func TestGetRecette_NotFound(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	w, envelope := doJSON(t, router, http.MethodGet, "/finance/recettes?id=9999", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, envelope.Success)
}

func TestSubscribeRecette_StatusMapping(t *testing.T) {
	router, db := newTestRouter(t, testConfig())

	etudiant := &model.Etudiant{Nom: "Kalala", Matricule: "ETU-1", Solde: decimal.RequireFromString("50")}
	require.NoError(t, db.Create(etudiant).Error)

	transaction := &model.Transaction{
		Amount:      decimal.RequireFromString("20"),
		ProductID:   1,
		ProductType: model.ProductTypeRessource,
		Status:      model.StatusPending,
	}
	require.NoError(t, db.Create(transaction).Error)

	body := fmt.Sprintf(`{"transactionId": %d, "studentId": %d}`, transaction.ID, etudiant.ID)

	w, envelope := doJSON(t, router, http.MethodPatch, "/finance/recettes", body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, envelope.Success)

	// second subscribe conflicts
	w, envelope = doJSON(t, router, http.MethodPatch, "/finance/recettes", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, envelope.Success)

	// broke student gets a 400
	broke := &model.Etudiant{Nom: "Mbuyi", Matricule: "ETU-2", Solde: decimal.RequireFromString("1")}
	require.NoError(t, db.Create(broke).Error)

	w, envelope = doJSON(t, router, http.MethodPatch, "/finance/recettes",
		fmt.Sprintf(`{"transactionId": %d, "studentId": %d}`, transaction.ID, broke.ID))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, envelope.Error, "Insufficient balance")
}

func TestRetraitLifecycle(t *testing.T) {
	router, db := newTestRouter(t, testConfig())

	agent := &model.Agent{Nom: "Ilunga", Matricule: "AGT-1"}
	require.NoError(t, db.Create(agent).Error)

	w, envelope := doJSON(t, router, http.MethodPost, "/finance/retraits",
		fmt.Sprintf(`{"agentId": %d, "anneeId": 2, "service": "Transport", "amount": 40}`, agent.ID))
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, envelope.Success)

	var depense model.Depense
	require.NoError(t, db.First(&depense).Error)

	w, envelope = doJSON(t, router, http.MethodGet, fmt.Sprintf("/finance/retraits/user/%d", agent.ID), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, envelope.Success)

	w, envelope = doJSON(t, router, http.MethodPut, fmt.Sprintf("/finance/retraits/update/%d", depense.ID),
		`{"status": "Completed"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, envelope.Success)

	w, envelope = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/finance/retraits/%d", depense.ID), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, envelope.Success)

	w, envelope = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/finance/retraits/%d", depense.ID), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, envelope.Success)
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testConfig()
	cfg.Server.AuthSecret = "shared-secret"
	router, _ := newTestRouter(t, cfg)

	w, envelope := doJSON(t, router, http.MethodGet, "/finance/recettes", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, envelope.Success)

	signer := token.NewSigner("shared-secret", time.Hour)
	wire, err := signer.Generate("agent-1", "", "admin")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/finance/recettes", nil)
	req.Header.Set("Authorization", "Bearer "+wire)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// wrong secret is rejected
	badWire, err := token.NewSigner("other", time.Hour).Generate("agent-1", "", "")
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/finance/recettes", nil)
	req.Header.Set("Authorization", "Bearer "+badWire)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
