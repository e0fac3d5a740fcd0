package repository

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

// rowLockSupported 判断方言是否支持行级锁。
// sqlite 没有 SELECT ... FOR UPDATE，写入由库级锁串行化，跳过锁子句即可。
func rowLockSupported(db *gorm.DB) bool {
	switch dbDialectName(db) {
	case "postgres", "postgresql":
		return true
	default:
		return false
	}
}

// applyRowLock 附加 FOR UPDATE 行锁。
func applyRowLock(query *gorm.DB) *gorm.DB {
	if !rowLockSupported(query) {
		return query
	}
	return query.Clauses(clause.Locking{Strength: "UPDATE"})
}

// applyRowLockSkipLocked 附加 FOR UPDATE SKIP LOCKED 行锁。
// 被并发事务锁定的行会直接从候选集中剔除而不是阻塞等待，
// 高争抢下可能出现总库存足够却报不足的情况，这是既定语义。
func applyRowLockSkipLocked(query *gorm.DB) *gorm.DB {
	if !rowLockSupported(query) {
		return query
	}
	return query.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
}
