package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gaida-lisongo/server-batis-nexus/internal/config"
	"github.com/gaida-lisongo/server-batis-nexus/internal/infrastructure/database"
	"github.com/gaida-lisongo/server-batis-nexus/internal/model"
	"github.com/gaida-lisongo/server-batis-nexus/internal/repository"
	"github.com/gaida-lisongo/server-batis-nexus/internal/service"
)

// newTestDB opens an in-memory store with the full schema. Connections are
// capped at one so every query sees the same in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		Business: config.BusinessConfig{
			DefaultPageSize:        20,
			MaxPageSize:            200,
			RechargeTimeoutMinutes: 30,
			OrderNumberRetries:     3,
			MaxRetryCount:          5,
		},
	}
}

func newTransactionService(t *testing.T, db *gorm.DB) *service.TransactionService {
	t.Helper()
	linker := service.NewProductLinker(repository.NewProductRegistry(db))
	return service.NewTransactionService(db, newTestConfig(), linker)
}

func seedEtudiant(t *testing.T, db *gorm.DB, solde string) *model.Etudiant {
	t.Helper()
	etudiant := &model.Etudiant{
		Nom:       "Kabongo",
		PostNom:   "Mwamba",
		Prenom:    "Jean",
		Matricule: "ETU-" + uuidSuffix(t),
		Solde:     decimal.RequireFromString(solde),
	}
	require.NoError(t, db.Create(etudiant).Error)
	return etudiant
}

func seedAgent(t *testing.T, db *gorm.DB, solde string) *model.Agent {
	t.Helper()
	agent := &model.Agent{
		Nom:       "Ilunga",
		Prenom:    "Marie",
		Matricule: "AGT-" + uuidSuffix(t),
		Solde:     decimal.RequireFromString(solde),
	}
	require.NoError(t, db.Create(agent).Error)
	return agent
}

func seedTransaction(t *testing.T, db *gorm.DB, amount string, agentID *uint) *model.Transaction {
	t.Helper()
	transaction := &model.Transaction{
		Amount:      decimal.RequireFromString(amount),
		AgentID:     agentID,
		ProductID:   1,
		ProductType: model.ProductTypeRessource,
		Status:      model.StatusPending,
	}
	require.NoError(t, db.Create(transaction).Error)
	return transaction
}

func uuidSuffix(t *testing.T) string {
	t.Helper()
	return uuid.NewString()[:8]
}
