package store

import (
	"database/sql"
	"errors"
	"fmt"

	"competition-scheduler/models"
)

// ErrNotFound is returned when no snapshot exists for a competition name.
var ErrNotFound = errors.New("competition not found")

// ErrVersionConflict is returned when a save raced another writer. The
// caller must reload and reapply; the previously committed snapshot is
// untouched.
var ErrVersionConflict = errors.New("competition snapshot was modified by another writer")

// CompetitionStore persists one snapshot row per competition. Every save
// replaces the whole snapshot and bumps a version column; the version check
// in the UPDATE is what keeps two overlapping score batches from silently
// clobbering each other.
type CompetitionStore struct {
	db *sql.DB
}

func New(db *sql.DB) *CompetitionStore {
	return &CompetitionStore{db: db}
}

// Create inserts the initial snapshot for a new competition.
func (cs *CompetitionStore) Create(state *models.CompetitionState) error {
	data, err := models.EncodeSnapshot(state)
	if err != nil {
		return err
	}
	query := `INSERT INTO Competitions (name, version, snapshot) VALUES(?, 1, ?)`
	if _, err := cs.db.Exec(query, state.Name, data); err != nil {
		return fmt.Errorf("create competition %s: %v", state.Name, err)
	}
	return nil
}

// Load retrieves the snapshot for a competition along with the version token
// that a later Save must present.
func (cs *CompetitionStore) Load(name string) (*models.CompetitionState, int, error) {
	var version int
	var data []byte
	query := `SELECT version, snapshot FROM Competitions WHERE name = ?`
	err := cs.db.QueryRow(query, name).Scan(&version, &data)
	if err == sql.ErrNoRows {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("load competition %s: %v", name, err)
	}
	state, err := models.DecodeSnapshot(data)
	if err != nil {
		return nil, 0, err
	}
	return state, version, nil
}

// Save replaces the persisted snapshot. The row is only written when the
// stored version still matches the one the caller loaded; otherwise
// ErrVersionConflict (or ErrNotFound for a vanished row) is returned and the
// prior snapshot remains intact.
func (cs *CompetitionStore) Save(state *models.CompetitionState, version int) error {
	data, err := models.EncodeSnapshot(state)
	if err != nil {
		return err
	}
	query := `UPDATE Competitions SET snapshot = ?, version = version + 1 WHERE name = ? AND version = ?`
	result, err := cs.db.Exec(query, data, state.Name, version)
	if err != nil {
		return fmt.Errorf("save competition %s: %v", state.Name, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("save competition %s: %v", state.Name, err)
	}
	if affected == 0 {
		var exists bool
		if err := cs.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM Competitions WHERE name = ?)`, state.Name).Scan(&exists); err == nil && !exists {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}
