package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tapedeck/internal/models"
	"github.com/desertthunder/tapedeck/internal/shared"
	json "github.com/goccy/go-json"
)

const defaultListLimit = 20

// ExportRepository persists [models.ExportRecord] rows.
type ExportRepository struct {
	db *sql.DB
}

// NewExportRepository creates a new [ExportRepository] with the given database connection
func NewExportRepository(db *sql.DB) *ExportRepository {
	return &ExportRepository{db: db}
}

// Create inserts a record with a generated ID and sequence
func (r *ExportRepository) Create(rec *models.ExportRecord) error {
	if rec.Provider == "" || rec.State == "" {
		return fmt.Errorf("%w: export record needs provider and state", shared.ErrInvalidInput)
	}

	sequence, err := NextSequence(r.db, "exports")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	unresolved := rec.Unresolved
	if unresolved == nil {
		unresolved = []models.TrackRequest{}
	}
	data, err := json.Marshal(unresolved)
	if err != nil {
		return fmt.Errorf("failed to encode unresolved entries: %w", err)
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.ID = shared.GenerateID()
	rec.Sequence = sequence

	query := `
		INSERT INTO exports (
			id, sequence, provider, name, playlist_id, state,
			requested, added, unresolved, error_message, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		rec.ID,
		rec.Sequence,
		rec.Provider,
		rec.Name,
		nullable(rec.PlaylistID),
		rec.State,
		rec.Requested,
		rec.Added,
		string(data),
		nullable(rec.ErrorMessage),
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert export: %w", err)
	}

	return nil
}

// Get retrieves a record by ID
func (r *ExportRepository) Get(id string) (*models.ExportRecord, error) {
	query := `
		SELECT id, sequence, provider, name, playlist_id, state, requested, added, unresolved, error_message, created_at
		FROM exports
		WHERE id = ?
	`

	rec, err := scanExport(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrExportNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query export: %w", err)
	}
	return rec, nil
}

// List returns the most recent records first. A non-positive limit uses the default of 20.
func (r *ExportRepository) List(limit int) ([]*models.ExportRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `
		SELECT id, sequence, provider, name, playlist_id, state, requested, added, unresolved, error_message, created_at
		FROM exports
		ORDER BY sequence DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query exports: %w", err)
	}
	defer rows.Close()

	var records []*models.ExportRecord
	for rows.Next() {
		rec, err := scanExport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExport(s scanner) (*models.ExportRecord, error) {
	var (
		rec          models.ExportRecord
		playlistID   sql.NullString
		unresolved   string
		errorMessage sql.NullString
	)

	err := s.Scan(
		&rec.ID, &rec.Sequence, &rec.Provider, &rec.Name, &playlistID, &rec.State,
		&rec.Requested, &rec.Added, &unresolved, &errorMessage, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.PlaylistID = playlistID.String
	rec.ErrorMessage = errorMessage.String
	if err := json.Unmarshal([]byte(unresolved), &rec.Unresolved); err != nil {
		return nil, fmt.Errorf("failed to decode unresolved entries: %w", err)
	}

	return &rec, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
