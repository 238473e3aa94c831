package pgstore

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"github.com/dwarvesf/perp-bridge/internal/store/kv"
	"github.com/dwarvesf/perp-bridge/internal/utils/config"
	"github.com/dwarvesf/perp-bridge/internal/utils/logger"
)

// KeyValue is a row of the key_values table created by cmd/migrate.
type KeyValue struct {
	Key       string `gorm:"primaryKey"`
	Value     []byte
	UpdatedAt time.Time
}

func (KeyValue) TableName() string {
	return "key_values"
}

type store struct {
	db *gorm.DB
}

func New(appConfig *config.AppConfig, logger *logger.Logger) (kv.IStore, error) {
	db, err := Connect(appConfig)
	if err != nil {
		logger.Error("[pgstore.New][Connect]", map[string]string{
			"error": err.Error(),
		})
		return nil, err
	}

	logger.Info("database connected")
	return NewWithDB(db), nil
}

func NewWithDB(db *gorm.DB) kv.IStore {
	return &store{db: db}
}

// DSN renders the libpq connection string for the configured database.
func DSN(appConfig *config.AppConfig) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		appConfig.Postgres.Host,
		appConfig.Postgres.User,
		appConfig.Postgres.Pass,
		appConfig.Postgres.Name,
		appConfig.Postgres.Port,
		appConfig.Postgres.SSLMode,
	)
}

func Connect(appConfig *config.AppConfig) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(DSN(appConfig)),
		&gorm.Config{
			NamingStrategy: schema.NamingStrategy{
				SingularTable: false,
			},
		})
}

func (s *store) Get(ctx context.Context, key string) ([]byte, error) {
	var row KeyValue
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, kv.ErrKeyNotFound
		}
		return nil, err
	}

	return row.Value, nil
}

func (s *store) Set(ctx context.Context, key string, value []byte) error {
	row := KeyValue{Key: key, Value: value, UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}

func (s *store) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("key = ?", key).Delete(&KeyValue{}).Error
}

func (s *store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *store) Name() string {
	return "postgres"
}

func (s *store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DB exposes the gorm handle for health reporting.
func DB(s kv.IStore) (*gorm.DB, bool) {
	pg, ok := s.(*store)
	if !ok {
		return nil, false
	}
	return pg.db, true
}
