package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fidelidade-next/internal/config"
	applog "github.com/fidelidade-next/internal/logger"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const slowQueryThreshold = 500 * time.Millisecond

// DB 全局数据库连接
var DB *gorm.DB

// DBPoolConfig 数据库连接池配置，零值表示沿用驱动默认值
type DBPoolConfig struct {
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeSeconds int
	ConnMaxIdleTimeSeconds int
}

// PoolFromConfig 由配置生成连接池参数
func PoolFromConfig(cfg config.DatabaseConfig) DBPoolConfig {
	return DBPoolConfig{
		MaxOpenConns:           cfg.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Pool.ConnMaxIdleTimeSeconds,
	}
}

// Setup 打开全局连接并迁移全部表
func Setup(cfg config.DatabaseConfig) error {
	if err := InitDB(cfg.Driver, cfg.DSN, PoolFromConfig(cfg)); err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := AutoMigrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

// InitDB 初始化全局数据库连接
func InitDB(driver, dsn string, pool DBPoolConfig) error {
	db, err := OpenDB(driver, dsn, pool, logger.Warn)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// OpenDB 打开连接，SQL 日志经由应用日志输出
func OpenDB(driver, dsn string, pool DBPoolConfig, level logger.LogLevel) (*gorm.DB, error) {
	dialector, err := dialectorFor(driver, dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(applog.StdLogger(), logger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(seconds(pool.ConnMaxLifetimeSeconds))
	sqlDB.SetConnMaxIdleTime(seconds(pool.ConnMaxIdleTimeSeconds))
	return db, nil
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	dsn = strings.TrimSpace(dsn)
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite":
		if err := ensureSQLiteDir(dsn); err != nil {
			return nil, err
		}
		return sqlite.Open(dsn), nil
	case "postgres", "postgresql":
		if dsn == "" {
			return nil, errors.New("postgres dsn is required")
		}
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// ensureSQLiteDir 为文件型 sqlite 创建所在目录
func ensureSQLiteDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create sqlite dir: %w", err)
	}
	return nil
}

func seconds(value int) time.Duration {
	if value <= 0 {
		return 0
	}
	return time.Duration(value) * time.Second
}

// AllModels 需要迁移的全部模型
func AllModels() []interface{} {
	return []interface{}{
		&Profile{},
		&Merchant{},
		&Offer{},
		&EnrollmentRecord{},
		&PointsTransaction{},
		&Product{},
		&ReportJob{},
	}
}

// AutoMigrate 迁移全局连接
func AutoMigrate() error {
	return MigrateTo(DB)
}

// MigrateTo 在指定连接上迁移全部表
func MigrateTo(db *gorm.DB) error {
	if db == nil {
		return errors.New("db is nil")
	}
	return db.AutoMigrate(AllModels()...)
}
