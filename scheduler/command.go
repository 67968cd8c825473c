package scheduler

import (
	"fmt"

	"competition-scheduler/models"
)

// ScheduleCommandPerformance builds the supplementary command session once
// main results are in. Candidates are students holding an SD or S result plus
// anyone who registered with a Command day preference. A candidate's
// preferred time window is honored when a Command block with that start time
// has room; otherwise the first Command block that fits is used. Students
// already holding a command slot keep it.
func ScheduleCommandPerformance(state *models.CompetitionState) Result {
	var res Result

	for _, s := range state.SortedStudents() {
		qualified := s.Result.CommandEligible()
		requested := s.DayPreference == models.DayCommand
		if !qualified && !requested {
			continue
		}
		if s.CommandBlockID != "" {
			continue
		}

		block := findCommandBlock(state, s)
		if block == nil {
			res.Unplaced = append(res.Unplaced, PlacementFailure{
				Hash:   s.Hash,
				Name:   s.Name(),
				Reason: fmt.Sprintf("no command block has %d minutes free", s.PlayTime),
			})
			continue
		}

		block.Assigned = append(block.Assigned, s.Hash)
		block.UsedMinutes += s.PlayTime
		s.CommandBlockID = block.ID
		if requested && !s.Scheduled {
			// The command session is this student's only performance slot.
			s.Scheduled = true
			s.BlockID = block.ID
			s.AssignedDay = block.Day
			s.StartTime = block.StartTime
			s.Room = block.Room
			s.Location = block.Location
			s.Date = block.Date
		}
		res.Placed = append(res.Placed, Placement{
			Hash:      s.Hash,
			Name:      s.Name(),
			Day:       block.Day,
			StartTime: block.StartTime,
			Room:      block.Room,
			Location:  block.Location,
			Date:      block.Date,
		})
	}
	return res
}

func findCommandBlock(state *models.CompetitionState, s *models.Student) *models.TimeBlock {
	var fallback *models.TimeBlock
	for _, b := range state.Blocks {
		if b.Day != models.DayCommand {
			continue
		}
		if b.MaxStudents > 0 && len(b.Assigned) >= b.MaxStudents {
			continue
		}
		if s.PlayTime > b.RemainingMinutes() {
			continue
		}
		if s.PreferredCommandTime != "" && b.StartTime == s.PreferredCommandTime {
			return b
		}
		if fallback == nil {
			fallback = b
		}
	}
	return fallback
}
