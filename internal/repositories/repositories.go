package repositories

import (
	"database/sql"
	"fmt"
)

// sequenced lists the tables that have a companion "{table}_sequence" counter row.
var sequenced = map[string]bool{"exports": true}

// NextSequence increments and returns the counter for table. Sequences number exports for the
// history listing (#1, #2, ...) independently of their UUIDs.
func NextSequence(db *sql.DB, table string) (int, error) {
	if !sequenced[table] {
		return 0, fmt.Errorf("no sequence for table %q", table)
	}

	var sequence int
	query := fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)
	if err := db.QueryRow(query).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}
	return sequence, nil
}
