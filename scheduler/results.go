package scheduler

import (
	"fmt"
	"sort"

	"competition-scheduler/models"
)

// ScoreUpdate is one entry of the results feed. Nil fields are left
// untouched on the student, so judges can send results and command
// preferences in separate batches.
type ScoreUpdate struct {
	Result               *models.CompetitionResult `json:"result,omitempty"`
	CommandSongIndex     *int                      `json:"command_song_index,omitempty"`
	PreferredCommandTime *string                   `json:"preferred_command_time,omitempty"`
}

// UpdateFailure records one rejected entry of a score batch.
type UpdateFailure struct {
	Hash   string `json:"hash"`
	Reason string `json:"reason"`
}

// UpdateScores applies a batch of score updates keyed by student identity
// hash. Unknown hashes and invalid values are collected and returned, never
// silently dropped; the rest of the batch still applies. Applying the same
// batch twice leaves the state unchanged.
func UpdateScores(state *models.CompetitionState, updates map[string]ScoreUpdate) []UpdateFailure {
	var failures []UpdateFailure

	hashes := make([]string, 0, len(updates))
	for hash := range updates {
		hashes = append(hashes, hash)
	}
	sort.Strings(hashes)

	for _, hash := range hashes {
		update := updates[hash]
		student := state.StudentByHash(hash)
		if student == nil {
			failures = append(failures, UpdateFailure{Hash: hash, Reason: "student not found"})
			continue
		}
		if update.Result != nil {
			if !update.Result.Valid() {
				failures = append(failures, UpdateFailure{
					Hash:   hash,
					Reason: fmt.Sprintf("unknown result %q", *update.Result),
				})
				continue
			}
			student.Result = *update.Result
			if !student.Result.CommandEligible() {
				student.CommandSong = nil
			}
		}
		if update.PreferredCommandTime != nil {
			student.PreferredCommandTime = *update.PreferredCommandTime
		}
		if update.CommandSongIndex != nil {
			if err := student.SetCommandSong(update.CommandSongIndex); err != nil {
				failures = append(failures, UpdateFailure{Hash: hash, Reason: err.Error()})
			}
		}
	}
	return failures
}

// TrophyEntry is one eligible student on the trophy list.
type TrophyEntry struct {
	Hash    string                   `json:"hash"`
	Name    string                   `json:"name"`
	Teacher string                   `json:"teacher"`
	Result  models.CompetitionResult `json:"result"`
}

// TrophyGroup is the eligible students of one section and skill level.
type TrophyGroup struct {
	Section models.SectionType `json:"section"`
	Level   int                `json:"level"`
	Entries []TrophyEntry      `json:"entries"`
}

// TrophyList derives the per-section, per-level list of students whose result
// earns a trophy (SD or S). The output is ordered by section, then level,
// then last and first name, and is a pure function of the state: computing it
// twice without intervening updates yields identical output.
func TrophyList(state *models.CompetitionState) []TrophyGroup {
	grouped := make(map[models.SectionType]map[int][]TrophyEntry)
	for _, s := range state.SortedStudents() {
		if !s.Result.CommandEligible() {
			continue
		}
		if grouped[s.Section] == nil {
			grouped[s.Section] = make(map[int][]TrophyEntry)
		}
		grouped[s.Section][s.SkillLevel] = append(grouped[s.Section][s.SkillLevel], TrophyEntry{
			Hash:    s.Hash,
			Name:    s.Name(),
			Teacher: s.TeacherName,
			Result:  s.Result,
		})
	}

	var groups []TrophyGroup
	for _, section := range []models.SectionType{
		models.SectionMaster, models.SectionTraditional,
		models.SectionNonCompetitive, models.SectionCommand,
	} {
		levels := grouped[section]
		if levels == nil {
			continue
		}
		keys := make([]int, 0, len(levels))
		for level := range levels {
			keys = append(keys, level)
		}
		sort.Ints(keys)
		for _, level := range keys {
			groups = append(groups, TrophyGroup{
				Section: section,
				Level:   level,
				Entries: levels[level],
			})
		}
	}
	return groups
}
