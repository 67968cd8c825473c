package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"competition-scheduler/models"
)

const validCatalog = `
time_blocks:
  - day: Saturday
    start_time: "9:00 AM"
    room: Room 12
    location: Main Hall
    date: "2026-03-07"
    section: traditional
    skill_min: 0
    skill_max: 5
    capacity_minutes: 60
    max_students: 10
  - day: Sunday
    start_time: "1:00 PM"
    room: Recital Hall
    location: Annex
    date: "2026-03-08"
    section: master
    skill_min: 6
    skill_max: 11
    capacity_minutes: 90
    max_students: 8
  - day: Command
    start_time: "3:00 PM"
    room: Recital Hall
    location: Main Hall
    date: "2026-03-08"
    section: command
    skill_min: 0
    skill_max: 11
    capacity_minutes: 120
    max_students: 25
`

func TestParseValidCatalog(t *testing.T) {
	blocks, err := Parse([]byte(validCatalog))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}
	first := blocks[0]
	if first.Day != models.DaySaturday || first.Section != models.SectionTraditional {
		t.Fatalf("first block not parsed: %+v", first)
	}
	if first.CapacityMinutes != 60 || first.SkillMax != 5 {
		t.Fatalf("capacity or skill range not parsed: %+v", first)
	}
	seen := make(map[string]bool)
	for _, b := range blocks {
		if b.ID == "" {
			t.Fatal("block was not assigned an ID")
		}
		if seen[b.ID] {
			t.Fatalf("duplicate block ID %s", b.ID)
		}
		seen[b.ID] = true
	}
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	cases := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "empty",
			yaml:    "time_blocks: []",
			wantErr: "no time blocks",
		},
		{
			name: "bad day",
			yaml: `
time_blocks:
  - day: Monday
    start_time: "9:00 AM"
    room: Room 1
    section: traditional
    skill_min: 0
    skill_max: 11
    capacity_minutes: 60
`,
			wantErr: "unknown day",
		},
		{
			name: "bad section",
			yaml: `
time_blocks:
  - day: Saturday
    start_time: "9:00 AM"
    room: Room 1
    section: jazz
    skill_min: 0
    skill_max: 11
    capacity_minutes: 60
`,
			wantErr: "unknown section",
		},
		{
			name: "missing room",
			yaml: `
time_blocks:
  - day: Saturday
    start_time: "9:00 AM"
    section: traditional
    skill_min: 0
    skill_max: 11
    capacity_minutes: 60
`,
			wantErr: "room",
		},
		{
			name: "zero capacity",
			yaml: `
time_blocks:
  - day: Saturday
    start_time: "9:00 AM"
    room: Room 1
    section: traditional
    skill_min: 0
    skill_max: 11
    capacity_minutes: 0
`,
			wantErr: "capacity_minutes",
		},
		{
			name: "inverted skill range",
			yaml: `
time_blocks:
  - day: Saturday
    start_time: "9:00 AM"
    room: Room 1
    section: traditional
    skill_min: 8
    skill_max: 3
    capacity_minutes: 60
`,
			wantErr: "skill range",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %q", tc.wantErr, err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(path, []byte(validCatalog), 0644); err != nil {
		t.Fatal(err)
	}

	blocks, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected error for a missing file")
	}
}
