package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kumar-cmd/syngenta-ai/internal/config"
	"github.com/kumar-cmd/syngenta-ai/internal/logger"
)

// Open returns a gorm DB for the configured MySQL instance. A full DSN in
// cfg.URI wins over the individual connection fields.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := cfg.URI
	if dsn == "" {
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.Database,
			cfg.Params,
		)
	}

	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return gdb, nil
}

// EnsureSchema migrates all models.
func EnsureSchema(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&Order{}, &User{}, &Role{})
}

// OrderStore is the persistence surface the importer depends on. There is
// deliberately no update or delete method: imported rows are immutable.
type OrderStore interface {
	ExistsByOrderID(ctx context.Context, orderID int) (bool, error)
	Create(ctx context.Context, order *Order) error
	Count(ctx context.Context) (int64, error)
}

type orderStore struct {
	db *gorm.DB
}

func NewOrderStore(db *gorm.DB) OrderStore {
	return &orderStore{db: db}
}

func (s *orderStore) ExistsByOrderID(ctx context.Context, orderID int) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Order{}).Where("order_id = ?", orderID).Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create persists one order as its own transaction so a failing row never
// affects its neighbors.
func (s *orderStore) Create(ctx context.Context, order *Order) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
}

func (s *orderStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Order{}).Count(&n).Error
	return n, err
}

// EnsureAdmin seeds the admin user once at startup if it does not exist.
// Only the bcrypt hash of the password is persisted.
func EnsureAdmin(gdb *gorm.DB, email, password string) error {
	var u User
	err := gdb.Where("email = ?", email).First(&u).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	u = User{
		Email:        email,
		Password:     hash,
		Active:       true,
		FsUniquifier: uuid.New().String(),
	}
	if err := gdb.Create(&u).Error; err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	logger.Infof("store: seeded admin user %s", email)
	return nil
}

// HashPassword returns the bcrypt hash of a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plaintext matches a stored bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
