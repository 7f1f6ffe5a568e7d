package models

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm/logger"
)

func TestOpenDBCreatesSQLiteDirAndMigrates(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "db")
	db, err := OpenDB("sqlite", filepath.Join(dir, "fid.db"), DBPoolConfig{MaxOpenConns: 1}, logger.Silent)
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("expected sqlite dir to be created: %v", err)
	}
	if err := MigrateTo(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	for _, model := range AllModels() {
		if !db.Migrator().HasTable(model) {
			t.Fatalf("missing table for %T", model)
		}
	}
	sqlDB, _ := db.DB()
	_ = sqlDB.Close()
}

func TestOpenDBRejectsUnknownDriver(t *testing.T) {
	if _, err := OpenDB("mysql", "dsn", DBPoolConfig{}, logger.Silent); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
	if _, err := OpenDB("postgres", " ", DBPoolConfig{}, logger.Silent); err == nil {
		t.Fatalf("expected blank postgres dsn error")
	}
}

func TestEnsureSQLiteDirSkipsMemory(t *testing.T) {
	dsn := fmt.Sprintf("file:models_%d?mode=memory&cache=shared", time.Now().UnixNano())
	if err := ensureSQLiteDir(dsn); err != nil {
		t.Fatalf("memory dsn should be skipped: %v", err)
	}
	if err := MigrateTo(nil); err == nil {
		t.Fatalf("nil db should fail")
	}
}
