package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// SnapshotSchemaVersion is bumped whenever the persisted layout changes so
// historic competitions are never decoded with the wrong shape.
const SnapshotSchemaVersion = 1

// CompetitionState is the full record of one competition: every student,
// every time block, every score. It is the unit of persistence and is
// read-modified-written as a whole on each call.
type CompetitionState struct {
	SchemaVersion int                 `json:"schema_version"`
	Name          string              `json:"name"`
	Students      map[string]*Student `json:"students"`
	Blocks        []*TimeBlock        `json:"blocks"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func NewCompetitionState(name string, blocks []*TimeBlock) *CompetitionState {
	now := time.Now().UTC()
	return &CompetitionState{
		SchemaVersion: SnapshotSchemaVersion,
		Name:          name,
		Students:      make(map[string]*Student),
		Blocks:        blocks,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// AddStudent registers a student; duplicate identity hashes are rejected.
func (c *CompetitionState) AddStudent(s *Student) error {
	if _, ok := c.Students[s.Hash]; ok {
		return fmt.Errorf("student %s is already registered", s.Hash)
	}
	c.Students[s.Hash] = s
	return nil
}

func (c *CompetitionState) StudentByHash(hash string) *Student {
	return c.Students[hash]
}

func (c *CompetitionState) BlockByID(id string) *TimeBlock {
	for _, b := range c.Blocks {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// SortedStudents returns students in a stable order (last name, first name,
// hash) so batch operations over the map are deterministic.
func (c *CompetitionState) SortedStudents() []*Student {
	students := make([]*Student, 0, len(c.Students))
	for _, s := range c.Students {
		students = append(students, s)
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].LastName != students[j].LastName {
			return students[i].LastName < students[j].LastName
		}
		if students[i].FirstName != students[j].FirstName {
			return students[i].FirstName < students[j].FirstName
		}
		return students[i].Hash < students[j].Hash
	})
	return students
}

// EncodeSnapshot serializes the state for persistence.
func EncodeSnapshot(state *CompetitionState) ([]byte, error) {
	state.SchemaVersion = SnapshotSchemaVersion
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %v", err)
	}
	return data, nil
}

// DecodeSnapshot restores a persisted state, refusing schema versions this
// build does not understand.
func DecodeSnapshot(data []byte) (*CompetitionState, error) {
	var state CompetitionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode snapshot: %v", err)
	}
	if state.SchemaVersion != SnapshotSchemaVersion {
		return nil, fmt.Errorf("decode snapshot: unsupported schema version %d", state.SchemaVersion)
	}
	if state.Students == nil {
		state.Students = make(map[string]*Student)
	}
	return &state, nil
}
