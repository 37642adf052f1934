package database

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"
)

// Compact reclaims space left behind by deleted rows. The statement depends on
// the dialect: VACUUM for SQLite, OPTIMIZE TABLE per table for MySQL and
// VACUUM FULL for PostgreSQL. Unknown dialects are a no-op.
func Compact(ctx context.Context, db *gorm.DB) error {
	conn := db.WithContext(ctx)
	switch name := db.Dialector.Name(); name {
	case "sqlite":
		if err := conn.Exec("VACUUM").Error; err != nil {
			return fmt.Errorf("sqlite vacuum: %w", err)
		}
	case "mysql":
		tables, err := conn.Migrator().GetTables()
		if err != nil {
			return fmt.Errorf("list tables: %w", err)
		}
		for _, table := range tables {
			if err := conn.Exec(fmt.Sprintf("OPTIMIZE TABLE `%s`", table)).Error; err != nil {
				return fmt.Errorf("optimize %s: %w", table, err)
			}
		}
	case "postgres":
		if err := conn.Exec("VACUUM FULL").Error; err != nil {
			return fmt.Errorf("postgres vacuum full: %w", err)
		}
	}
	return nil
}

// TableStatus is a row count for one table.
type TableStatus struct {
	Table string
	Rows  int64
}

// Status reports the dialect and row counts of every table.
func Status(ctx context.Context, db *gorm.DB) (string, []TableStatus, error) {
	conn := db.WithContext(ctx)
	tables, err := conn.Migrator().GetTables()
	if err != nil {
		return "", nil, fmt.Errorf("list tables: %w", err)
	}
	sort.Strings(tables)

	out := make([]TableStatus, 0, len(tables))
	for _, table := range tables {
		var n int64
		if err := conn.Table(table).Count(&n).Error; err != nil {
			return "", nil, fmt.Errorf("count %s: %w", table, err)
		}
		out = append(out, TableStatus{Table: table, Rows: n})
	}
	return db.Dialector.Name(), out, nil
}
