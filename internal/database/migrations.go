package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// compositeIndexes lists the multi-column indexes the roster and archive queries rely on.
var compositeIndexes = []struct {
	table   string
	name    string
	columns string
}{
	// Roster filter: approved executives with an active committee status
	{"users", "idx_users_committee_roster", "usertype, is_approved, committee_status"},

	// Ledger lookups by cycle
	{"committee_assignments", "idx_assignments_status_number", "status, committee_number"},
	{"committee_assignments", "idx_assignments_number_order", "committee_number, member_order"},

	// Archive reads
	{"previous_committee_members", "idx_previous_number_order", "committee_number, member_order"},
}

// AddIndexes adds the composite indexes that AutoMigrate does not declare.
func AddIndexes(db *gorm.DB) error {
	migrator := db.Migrator()
	for _, idx := range compositeIndexes {
		if migrator.HasIndex(idx.table, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("created index",
			zap.String("index", idx.name),
			zap.String("table", idx.table),
			zap.String("columns", idx.columns),
		)
	}

	return nil
}

// MigrateDatabase runs the migrations that follow AutoMigrate.
func MigrateDatabase(db *gorm.DB) error {
	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	return nil
}
