package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestDBDialectName(t *testing.T) {
	if got := dbDialectName(nil); got != "sqlite" {
		t.Fatalf("nil db dialect want sqlite got %s", got)
	}

	dsn := fmt.Sprintf("file:sql_dialect_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if got := dbDialectName(db); got != "sqlite" {
		t.Fatalf("sqlite dialect name want sqlite got %s", got)
	}
}

func TestRowLockSupported(t *testing.T) {
	dsn := fmt.Sprintf("file:row_lock_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	// sqlite 无行级锁，锁子句必须被跳过而不是生成非法 SQL
	if rowLockSupported(db) {
		t.Fatalf("sqlite must not report row lock support")
	}
	locked := applyRowLockSkipLocked(db.Session(&gorm.Session{}))
	if locked == nil {
		t.Fatalf("applyRowLockSkipLocked returned nil")
	}
}
