package scheduler

import (
	"fmt"
	"math"
	"sort"
	"time"

	"competition-scheduler/models"
)

// Placement is one student's assignment in a schedule run.
type Placement struct {
	Hash      string     `json:"hash"`
	Name      string     `json:"name"`
	Day       models.Day `json:"day"`
	StartTime string     `json:"start_time"`
	Room      string     `json:"room"`
	Location  string     `json:"location"`
	Date      string     `json:"date"`
}

// PlacementFailure names a student that could not be placed and why. It is a
// reported outcome, never an abort.
type PlacementFailure struct {
	Hash   string `json:"hash"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Result is the outcome of a schedule run. Every unscheduled student the run
// considered lands in exactly one of Placed or Unplaced; students whose day
// preference is Command are listed in Deferred and handled by the command
// performance pass after results come in.
type Result struct {
	Placed   []Placement        `json:"placed"`
	Unplaced []PlacementFailure `json:"unplaced"`
	Deferred []string           `json:"deferred,omitempty"`
}

// Run packs every not-yet-scheduled student into the competition's time
// blocks. Students are partitioned by requested day, grouped by section pool
// and sorted by skill level so blocks hold tight cohorts. Packing is greedy
// first-fit by play time; when two open blocks have the same remaining
// capacity the one whose average skill level sits closer to the student wins.
// Already placed students are never moved, so re-running after late
// registrations only places the newcomers.
func Run(state *models.CompetitionState, today time.Time) Result {
	var res Result

	var pending []*models.Student
	for _, s := range state.SortedStudents() {
		if s.Scheduled {
			continue
		}
		if s.DayPreference == models.DayCommand {
			res.Deferred = append(res.Deferred, s.Hash)
			continue
		}
		if err := s.RefreshAge(today); err != nil {
			res.Unplaced = append(res.Unplaced, PlacementFailure{
				Hash: s.Hash, Name: s.Name(), Reason: err.Error(),
			})
			continue
		}
		pending = append(pending, s)
	}

	for _, day := range []models.Day{models.DaySaturday, models.DaySunday} {
		for _, group := range []models.SectionType{models.SectionMaster, models.SectionTraditional} {
			cohort := filterStudents(pending, day, group)
			sortCohort(cohort)
			for _, s := range cohort {
				block := findBlock(state, s, day)
				if block == nil {
					res.Unplaced = append(res.Unplaced, PlacementFailure{
						Hash:   s.Hash,
						Name:   s.Name(),
						Reason: fmt.Sprintf("no %s block for level %d has %d minutes free", day, s.SkillLevel, s.PlayTime),
					})
					continue
				}
				if err := block.Assign(s); err != nil {
					res.Unplaced = append(res.Unplaced, PlacementFailure{
						Hash: s.Hash, Name: s.Name(), Reason: err.Error(),
					})
					continue
				}
				res.Placed = append(res.Placed, placementFor(s))
			}
		}
	}
	return res
}

func filterStudents(students []*models.Student, day models.Day, group models.SectionType) []*models.Student {
	var out []*models.Student
	for _, s := range students {
		if s.DayPreference == day && s.Section.BlockGroup() == group {
			out = append(out, s)
		}
	}
	return out
}

// sortCohort orders a day's cohort by skill level, then last and first name.
// Skill-first keeps similar levels adjacent so they pack into the same block;
// the name tail makes the whole run deterministic.
func sortCohort(cohort []*models.Student) {
	sort.Slice(cohort, func(i, j int) bool {
		if cohort[i].SkillLevel != cohort[j].SkillLevel {
			return cohort[i].SkillLevel < cohort[j].SkillLevel
		}
		if cohort[i].LastName != cohort[j].LastName {
			return cohort[i].LastName < cohort[j].LastName
		}
		if cohort[i].FirstName != cohort[j].FirstName {
			return cohort[i].FirstName < cohort[j].FirstName
		}
		return cohort[i].Hash < cohort[j].Hash
	})
}

// findBlock picks the block for a student on a day. Open blocks (already
// holding students) are preferred in catalog order; a block only loses its
// first-fit claim to one with exactly equal remaining capacity and a closer
// average skill level. When no open block fits, the first empty block on the
// day that accepts the student is opened.
func findBlock(state *models.CompetitionState, s *models.Student, day models.Day) *models.TimeBlock {
	var best *models.TimeBlock
	bestDiff := math.MaxFloat64
	for _, b := range state.Blocks {
		if b.Day != day || len(b.Assigned) == 0 || !b.CanFit(s) {
			continue
		}
		diff := math.Abs(b.AverageSkill(state.StudentByHash) - float64(s.SkillLevel))
		if best == nil {
			best, bestDiff = b, diff
			continue
		}
		if b.RemainingMinutes() == best.RemainingMinutes() && diff < bestDiff {
			best, bestDiff = b, diff
		}
	}
	if best != nil {
		return best
	}
	for _, b := range state.Blocks {
		if b.Day == day && len(b.Assigned) == 0 && b.CanFit(s) {
			return b
		}
	}
	return nil
}

func placementFor(s *models.Student) Placement {
	return Placement{
		Hash:      s.Hash,
		Name:      s.Name(),
		Day:       s.AssignedDay,
		StartTime: s.StartTime,
		Room:      s.Room,
		Location:  s.Location,
		Date:      s.Date,
	}
}

// Assignments lists every placed student's slot, for the notification and
// document generation collaborators.
func Assignments(state *models.CompetitionState) []Placement {
	var out []Placement
	for _, s := range state.SortedStudents() {
		if s.Scheduled {
			out = append(out, placementFor(s))
		}
	}
	return out
}

// UnplacedStudents lists registered students that hold no assignment, for
// operator follow-up.
func UnplacedStudents(state *models.CompetitionState) []PlacementFailure {
	var out []PlacementFailure
	for _, s := range state.SortedStudents() {
		if !s.Scheduled {
			out = append(out, PlacementFailure{
				Hash:   s.Hash,
				Name:   s.Name(),
				Reason: "not scheduled",
			})
		}
	}
	return out
}
