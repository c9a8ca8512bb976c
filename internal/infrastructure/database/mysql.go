package database

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gaida-lisongo/server-batis-nexus/internal/config"
	"github.com/gaida-lisongo/server-batis-nexus/internal/model"
)

// Init opens the MySQL connection, configures the pool and migrates the
// schema. TranslateError maps driver duplicate-key errors onto
// gorm.ErrDuplicatedKey, which the repositories rely on.
func Init(cfg *config.MySQLConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return db, nil
}

// Migrate creates or updates every table the module owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Etudiant{},
		&model.Agent{},
		&model.Transaction{},
		&model.Subscription{},
		&model.Recharge{},
		&model.Depense{},
		&model.Parcours{},
		&model.Ressource{},
		&model.Activity{},
		&model.Recours{},
		&model.Commande{},
		&model.OutboxMessage{},
	)
}
