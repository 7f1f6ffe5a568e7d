package repository

import (
	"strings"

	"gorm.io/gorm"
)

// dialect 仓储层关心的方言差异
type dialect string

const (
	dialectSQLite   dialect = "sqlite"
	dialectPostgres dialect = "postgres"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// dialectOf 识别连接方言，无法识别时按 sqlite 处理
func dialectOf(db *gorm.DB) dialect {
	if db != nil && db.Dialector != nil {
		switch strings.ToLower(strings.TrimSpace(db.Dialector.Name())) {
		case "postgres", "postgresql":
			return dialectPostgres
		}
	}
	return dialectSQLite
}

// supportsRowLock sqlite 写事务本身串行，不支持 FOR UPDATE
func (d dialect) supportsRowLock() bool {
	return d == dialectPostgres
}

// like 单列大小写不敏感的包含匹配
func (d dialect) like(column string) string {
	if d == dialectPostgres {
		return column + ` ILIKE ? ESCAPE '\'`
	}
	// sqlite 的 LIKE 仅对 ASCII 忽略大小写
	return "LOWER(" + column + `) LIKE LOWER(?) ESCAPE '\'`
}

// matchAny 任一列包含关键字即命中，关键字里的 % 和 _ 按字面匹配
func matchAny(db *gorm.DB, keyword string, columns ...string) (string, []interface{}) {
	d := dialectOf(db)
	pattern := "%" + likeEscaper.Replace(strings.TrimSpace(keyword)) + "%"
	parts := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns))
	for _, column := range columns {
		if column = strings.TrimSpace(column); column == "" {
			continue
		}
		parts = append(parts, d.like(column))
		args = append(args, pattern)
	}
	if len(parts) > 1 {
		return "(" + strings.Join(parts, " OR ") + ")", args
	}
	return strings.Join(parts, ""), args
}
