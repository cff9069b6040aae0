package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"quantum/internal/config"
	"quantum/internal/middleware"
	"quantum/internal/models"
	"quantum/internal/observability"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Blob is one persisted snapshot row.
type Blob struct {
	Key       string    `gorm:"primaryKey;column:key"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the gorm table name.
func (Blob) TableName() string { return "blobs" }

// DBStore persists snapshots in a relational blob table. SQLite by default;
// PostgreSQL is available for deployments that want a server database.
type DBStore struct {
	db *gorm.DB
}

// Open connects using the configured driver and migrates the blob table.
func Open(cfg *config.Config) (*DBStore, error) {
	var dial gorm.Dialector
	switch cfg.StorageDriver {
	case "postgres":
		sslMode := cfg.DBSSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		dsn := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, sslMode,
		)
		dial = postgres.Open(dsn)
	default:
		dial = sqlite.Open(cfg.StoragePath)
	}

	db, err := gorm.Open(dial, &gorm.Config{Logger: newGormLogger()})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to storage: %w", err)
	}

	if err := db.AutoMigrate(&Blob{}); err != nil {
		return nil, fmt.Errorf("failed to migrate storage: %w", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	middleware.Logger.Info("Storage connected", "driver", cfg.StorageDriver)
	return &DBStore{db: db}, nil
}

// NewDBStore wraps an existing gorm connection. Used by tests.
func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

// Load implements Store.
func (s *DBStore) Load(ctx context.Context, key string, dest any) (bool, error) {
	defer observability.ObserveSnapshot(key, "load", time.Now())

	var blob Blob
	err := s.db.WithContext(ctx).First(&blob, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, models.NewInternalError(err)
	}
	if err := json.Unmarshal([]byte(blob.Value), dest); err != nil {
		return false, models.NewInternalError(err)
	}
	return true, nil
}

// Save implements Store.
func (s *DBStore) Save(ctx context.Context, key string, v any) error {
	defer observability.ObserveSnapshot(key, "save", time.Now())

	raw, err := json.Marshal(v)
	if err != nil {
		return models.NewInternalError(err)
	}
	blob := Blob{Key: key, Value: string(raw), UpdatedAt: time.Now().UTC()}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&blob).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Delete implements Store.
func (s *DBStore) Delete(ctx context.Context, key string) error {
	defer observability.ObserveSnapshot(key, "delete", time.Now())

	if err := s.db.WithContext(ctx).Delete(&Blob{}, "key = ?", key).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Ping reports storage health for readiness checks.
func (s *DBStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *DBStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
