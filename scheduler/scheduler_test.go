package scheduler

import (
	"fmt"
	"testing"
	"time"

	"competition-scheduler/models"
)

var testToday = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func makeStudent(t *testing.T, first, last string, section models.SectionType,
	day models.Day, level, playTime int) *models.Student {
	t.Helper()
	songs := []models.Song{
		{Title: "Sonatina", Composer: "Clementi"},
		{Title: "Fur Elise", Composer: "Beethoven"},
	}
	s, err := models.NewStudent("", first, last, section, day, level, playTime,
		"Ms. Harris", "harris@example.com", "parent@example.com", "",
		songs, time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("NewStudent(%s %s) returned error: %v", first, last, err)
	}
	return s
}

func makeBlock(id string, day models.Day, capacity int) *models.TimeBlock {
	return &models.TimeBlock{
		ID: id, Day: day, StartTime: "9:00 AM", Room: "Room " + id,
		Location: "Main Hall", Date: "2026-03-07", Section: models.SectionTraditional,
		SkillMin: models.SkillLevelMin, SkillMax: models.SkillLevelMax,
		CapacityMinutes: capacity, MaxStudents: 20,
	}
}

func newState(t *testing.T, blocks []*models.TimeBlock, students ...*models.Student) *models.CompetitionState {
	t.Helper()
	state := models.NewCompetitionState("Spring Festival", blocks)
	for _, s := range students {
		if err := state.AddStudent(s); err != nil {
			t.Fatal(err)
		}
	}
	return state
}

func TestRunRespectsBlockCapacity(t *testing.T) {
	blocks := []*models.TimeBlock{
		makeBlock("1", models.DaySaturday, 30),
		makeBlock("2", models.DaySaturday, 30),
	}
	var students []*models.Student
	for i := 0; i < 5; i++ {
		students = append(students, makeStudent(t, fmt.Sprintf("kid%d", i), "smith",
			models.SectionTraditional, models.DaySaturday, 5, 10))
	}
	state := newState(t, blocks, students...)

	res := Run(state, testToday)

	if len(res.Placed)+len(res.Unplaced) != 5 {
		t.Fatalf("every student must be placed or reported, got %d placed %d unplaced",
			len(res.Placed), len(res.Unplaced))
	}
	for _, b := range state.Blocks {
		if b.UsedMinutes > b.CapacityMinutes {
			t.Fatalf("block %s over capacity: %d > %d", b.ID, b.UsedMinutes, b.CapacityMinutes)
		}
	}
}

func TestRunEveryStudentPlacedOrReported(t *testing.T) {
	blocks := []*models.TimeBlock{makeBlock("1", models.DaySaturday, 25)}
	students := []*models.Student{
		makeStudent(t, "ann", "adams", models.SectionTraditional, models.DaySaturday, 3, 10),
		makeStudent(t, "bob", "brown", models.SectionTraditional, models.DaySaturday, 3, 10),
		makeStudent(t, "carl", "clark", models.SectionTraditional, models.DaySaturday, 3, 10),
		makeStudent(t, "dana", "davis", models.SectionTraditional, models.DaySunday, 3, 10),
	}
	state := newState(t, blocks, students...)

	res := Run(state, testToday)

	seen := make(map[string]int)
	for _, p := range res.Placed {
		seen[p.Hash]++
	}
	for _, f := range res.Unplaced {
		seen[f.Hash]++
	}
	for _, s := range students {
		if seen[s.Hash] != 1 {
			t.Errorf("student %s appears %d times across placed+unplaced, want exactly 1",
				s.Name(), seen[s.Hash])
		}
	}
	// The Sunday student has no Sunday block and must be a reported failure.
	if len(res.Unplaced) < 1 {
		t.Fatal("expected at least one placement failure")
	}
}

func TestRunIsAppendOnly(t *testing.T) {
	blocks := []*models.TimeBlock{
		makeBlock("1", models.DaySaturday, 40),
		makeBlock("2", models.DaySaturday, 40),
	}
	first := []*models.Student{
		makeStudent(t, "ann", "adams", models.SectionTraditional, models.DaySaturday, 2, 10),
		makeStudent(t, "bob", "brown", models.SectionTraditional, models.DaySaturday, 4, 10),
	}
	state := newState(t, blocks, first...)
	Run(state, testToday)

	type slot struct {
		blockID, startTime, room string
	}
	before := make(map[string]slot)
	for _, s := range first {
		before[s.Hash] = slot{s.BlockID, s.StartTime, s.Room}
	}

	late := makeStudent(t, "zoe", "young", models.SectionTraditional, models.DaySaturday, 8, 10)
	if err := state.AddStudent(late); err != nil {
		t.Fatal(err)
	}
	res := Run(state, testToday)

	if len(res.Placed) != 1 || res.Placed[0].Hash != late.Hash {
		t.Fatalf("rerun should only place the newcomer, placed %+v", res.Placed)
	}
	for _, s := range first {
		after := slot{s.BlockID, s.StartTime, s.Room}
		if after != before[s.Hash] {
			t.Errorf("student %s was reshuffled: %+v -> %+v", s.Name(), before[s.Hash], after)
		}
	}
}

func TestRunScenarioFullBlockThenSecondBlock(t *testing.T) {
	// A Saturday block of 60 minutes already holding 50 minutes cannot take a
	// 15 minute student; a second same-day block with 30 minutes free can.
	full := makeBlock("1", models.DaySaturday, 60)
	spare := makeBlock("2", models.DaySaturday, 30)
	state := newState(t, []*models.TimeBlock{full, spare})

	fillers := []*models.Student{
		makeStudent(t, "ann", "adams", models.SectionTraditional, models.DaySaturday, 5, 25),
		makeStudent(t, "bob", "brown", models.SectionTraditional, models.DaySaturday, 5, 25),
	}
	for _, s := range fillers {
		if err := state.AddStudent(s); err != nil {
			t.Fatal(err)
		}
		if err := full.Assign(s); err != nil {
			t.Fatal(err)
		}
	}

	late := makeStudent(t, "carl", "clark", models.SectionTraditional, models.DaySaturday, 5, 15)
	if err := state.AddStudent(late); err != nil {
		t.Fatal(err)
	}
	res := Run(state, testToday)

	if len(res.Unplaced) != 0 {
		t.Fatalf("student should have been placed in the spare block, failures: %+v", res.Unplaced)
	}
	if late.BlockID != spare.ID {
		t.Fatalf("student went to block %s, want %s", late.BlockID, spare.ID)
	}

	// With only the full block available the same student is a reported failure.
	state2 := newState(t, []*models.TimeBlock{makeBlock("1", models.DaySaturday, 60)})
	for _, name := range []string{"dana", "evan"} {
		s := makeStudent(t, name, "filler", models.SectionTraditional, models.DaySaturday, 5, 25)
		if err := state2.AddStudent(s); err != nil {
			t.Fatal(err)
		}
		if err := state2.Blocks[0].Assign(s); err != nil {
			t.Fatal(err)
		}
	}
	late2 := makeStudent(t, "fred", "ford", models.SectionTraditional, models.DaySaturday, 5, 15)
	if err := state2.AddStudent(late2); err != nil {
		t.Fatal(err)
	}
	res2 := Run(state2, testToday)
	if len(res2.Unplaced) != 1 || res2.Unplaced[0].Hash != late2.Hash {
		t.Fatalf("expected a placement failure for %s, got %+v", late2.Name(), res2.Unplaced)
	}
}

func TestRunTieBreakPrefersCloserAverageSkill(t *testing.T) {
	low := makeBlock("1", models.DaySaturday, 60)
	high := makeBlock("2", models.DaySaturday, 60)
	state := newState(t, []*models.TimeBlock{low, high})

	seedLow := makeStudent(t, "ann", "adams", models.SectionTraditional, models.DaySaturday, 1, 20)
	seedHigh := makeStudent(t, "bob", "brown", models.SectionTraditional, models.DaySaturday, 9, 20)
	for _, pair := range []struct {
		s *models.Student
		b *models.TimeBlock
	}{{seedLow, low}, {seedHigh, high}} {
		if err := state.AddStudent(pair.s); err != nil {
			t.Fatal(err)
		}
		if err := pair.b.Assign(pair.s); err != nil {
			t.Fatal(err)
		}
	}

	// Both blocks have 40 minutes left; the level 9 student should join the
	// block whose average skill is 9, not the first block in catalog order.
	late := makeStudent(t, "carl", "clark", models.SectionTraditional, models.DaySaturday, 9, 10)
	if err := state.AddStudent(late); err != nil {
		t.Fatal(err)
	}
	Run(state, testToday)

	if late.BlockID != high.ID {
		t.Fatalf("tie-break failed: student went to block %s, want %s", late.BlockID, high.ID)
	}
}

func TestRunMasterclassSeparatedFromTraditional(t *testing.T) {
	tradBlock := makeBlock("1", models.DaySaturday, 60)
	masterBlock := makeBlock("2", models.DaySaturday, 60)
	masterBlock.Section = models.SectionMaster
	state := newState(t, []*models.TimeBlock{tradBlock, masterBlock})

	master := makeStudent(t, "ann", "adams", models.SectionMaster, models.DaySaturday, 7, 20)
	trad := makeStudent(t, "bob", "brown", models.SectionTraditional, models.DaySaturday, 7, 20)
	nonComp := makeStudent(t, "carl", "clark", models.SectionNonCompetitive, models.DaySaturday, 7, 20)
	for _, s := range []*models.Student{master, trad, nonComp} {
		if err := state.AddStudent(s); err != nil {
			t.Fatal(err)
		}
	}

	res := Run(state, testToday)
	if len(res.Unplaced) != 0 {
		t.Fatalf("unexpected failures: %+v", res.Unplaced)
	}
	if master.BlockID != masterBlock.ID {
		t.Errorf("masterclass student in block %s, want %s", master.BlockID, masterBlock.ID)
	}
	if trad.BlockID != tradBlock.ID || nonComp.BlockID != tradBlock.ID {
		t.Errorf("traditional and non-competitive students should share block %s, got %s and %s",
			tradBlock.ID, trad.BlockID, nonComp.BlockID)
	}
}

func TestRunDefersCommandPreference(t *testing.T) {
	state := newState(t, []*models.TimeBlock{makeBlock("1", models.DaySaturday, 60)})
	cmd := makeStudent(t, "ann", "adams", models.SectionCommand, models.DayCommand, 5, 10)
	if err := state.AddStudent(cmd); err != nil {
		t.Fatal(err)
	}

	res := Run(state, testToday)
	if len(res.Placed) != 0 || len(res.Unplaced) != 0 {
		t.Fatalf("command-preference student must not be handled by the main run: %+v", res)
	}
	if len(res.Deferred) != 1 || res.Deferred[0] != cmd.Hash {
		t.Fatalf("expected the student in the deferred list, got %+v", res.Deferred)
	}
}
