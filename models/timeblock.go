package models

import "fmt"

// TimeBlock is one judging session: a day, start time, room and location,
// with capacity expressed both as cumulative play-time minutes and a maximum
// head count, and a skill range it accepts.
type TimeBlock struct {
	ID              string      `json:"id"`
	Day             Day         `json:"day"`
	StartTime       string      `json:"start_time"`
	Room            string      `json:"room"`
	Location        string      `json:"location"`
	Date            string      `json:"date"`
	Section         SectionType `json:"section"`
	SkillMin        int         `json:"skill_min"`
	SkillMax        int         `json:"skill_max"`
	CapacityMinutes int         `json:"capacity_minutes"`
	MaxStudents     int         `json:"max_students"`

	UsedMinutes int      `json:"used_minutes"`
	Assigned    []string `json:"assigned"`
}

func (b *TimeBlock) RemainingMinutes() int {
	return b.CapacityMinutes - b.UsedMinutes
}

// Accepts reports whether the block's section group and skill range admit
// the student. Capacity is checked separately by CanFit.
func (b *TimeBlock) Accepts(s *Student) bool {
	if b.Section.BlockGroup() != s.Section.BlockGroup() {
		return false
	}
	return s.SkillLevel >= b.SkillMin && s.SkillLevel <= b.SkillMax
}

// CanFit reports whether the student can be placed in this block without
// breaking either capacity limit.
func (b *TimeBlock) CanFit(s *Student) bool {
	if !b.Accepts(s) {
		return false
	}
	if b.MaxStudents > 0 && len(b.Assigned) >= b.MaxStudents {
		return false
	}
	return s.PlayTime <= b.RemainingMinutes()
}

// Assign places the student into the block and stamps the student's
// scheduling fields. These fields are written exactly once; assigning an
// already scheduled student is an error.
func (b *TimeBlock) Assign(s *Student) error {
	if s.Scheduled {
		return fmt.Errorf("student %s is already scheduled to block %s", s.Hash, s.BlockID)
	}
	if !b.CanFit(s) {
		return fmt.Errorf("student %s does not fit in block %s", s.Hash, b.ID)
	}
	b.Assigned = append(b.Assigned, s.Hash)
	b.UsedMinutes += s.PlayTime
	s.Scheduled = true
	s.BlockID = b.ID
	s.AssignedDay = b.Day
	s.StartTime = b.StartTime
	s.Room = b.Room
	s.Location = b.Location
	s.Date = b.Date
	return nil
}

// AverageSkill is the mean skill level of the students already assigned,
// resolved through the owning state's lookup. Returns -1 for an empty block.
func (b *TimeBlock) AverageSkill(lookup func(hash string) *Student) float64 {
	if len(b.Assigned) == 0 {
		return -1
	}
	total := 0
	count := 0
	for _, hash := range b.Assigned {
		if s := lookup(hash); s != nil {
			total += s.SkillLevel
			count++
		}
	}
	if count == 0 {
		return -1
	}
	return float64(total) / float64(count)
}
