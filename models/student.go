package models

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// SectionType is the competition format a student registered for.
type SectionType string

const (
	SectionMaster         SectionType = "master"
	SectionTraditional    SectionType = "traditional"
	SectionNonCompetitive SectionType = "non_competitive"
	SectionCommand        SectionType = "command"
)

func (s SectionType) Valid() bool {
	switch s {
	case SectionMaster, SectionTraditional, SectionNonCompetitive, SectionCommand:
		return true
	}
	return false
}

// Display returns the human-readable section name used in printed programs.
func (s SectionType) Display() string {
	switch s {
	case SectionMaster:
		return "Masterclass"
	case SectionTraditional:
		return "Traditional"
	case SectionNonCompetitive:
		return "Non-Competitive"
	case SectionCommand:
		return "Command"
	}
	return string(s)
}

// BlockGroup maps a section to the pool of time blocks it is judged in.
// Masterclass students sit alone; traditional, non-competitive and command
// students share the same blocks.
func (s SectionType) BlockGroup() SectionType {
	if s == SectionMaster {
		return SectionMaster
	}
	return SectionTraditional
}

// Day is a competition day a student can request or be assigned to.
type Day string

const (
	DaySaturday Day = "Saturday"
	DaySunday   Day = "Sunday"
	DayCommand  Day = "Command"
)

func (d Day) Valid() bool {
	switch d {
	case DaySaturday, DaySunday, DayCommand:
		return true
	}
	return false
}

// CompetitionResult is the judged outcome of a performance.
type CompetitionResult string

const (
	ResultSuperiorDistinction CompetitionResult = "SD"
	ResultSuperior            CompetitionResult = "S"
	ResultExcellent           CompetitionResult = "E"
	ResultNotApplicable       CompetitionResult = "NA"
	ResultNonCompetitive      CompetitionResult = "NC"
	ResultWithdrawn           CompetitionResult = "W"
)

func (r CompetitionResult) Valid() bool {
	switch r {
	case ResultSuperiorDistinction, ResultSuperior, ResultExcellent,
		ResultNotApplicable, ResultNonCompetitive, ResultWithdrawn:
		return true
	}
	return false
}

// CommandEligible reports whether the result qualifies the student for the
// command performance session. Only SD and S qualify; the same set earns a
// spot on the trophy list.
func (r CompetitionResult) CommandEligible() bool {
	return r == ResultSuperiorDistinction || r == ResultSuperior
}

const (
	SkillLevelMin = 0
	SkillLevelMax = 11
)

type Song struct {
	Title    string `json:"title"`
	Composer string `json:"composer"`
}

// Student is one competitor. Registration attributes are set once at
// construction; the scheduling fields are written exactly once by the
// scheduler and the result fields by the results engine.
type Student struct {
	Hash          string      `json:"hash"`
	FirstName     string      `json:"first_name"`
	LastName      string      `json:"last_name"`
	Songs         []Song      `json:"songs"`
	Section       SectionType `json:"section"`
	DayPreference Day         `json:"day_preference"`
	SkillLevel    int         `json:"skill_level"`
	PlayTime      int         `json:"play_time"`
	TeacherName   string      `json:"teacher_name"`
	TeacherEmail  string      `json:"teacher_email"`
	ParentEmail   string      `json:"parent_email"`
	Birthdate     string      `json:"birthdate,omitempty"`
	Age           int         `json:"age,omitempty"`
	RegisteredAt  time.Time   `json:"registered_at"`

	// Set by the scheduling engine.
	Scheduled   bool   `json:"scheduled"`
	BlockID     string `json:"block_id,omitempty"`
	AssignedDay Day    `json:"assigned_day,omitempty"`
	StartTime   string `json:"start_time,omitempty"`
	Room        string `json:"room,omitempty"`
	Location    string `json:"location,omitempty"`
	Date        string `json:"date,omitempty"`

	// Set by the results engine.
	Result               CompetitionResult `json:"competition_result,omitempty"`
	CommandSong          *Song             `json:"command_song,omitempty"`
	PreferredCommandTime string            `json:"preferred_command_time,omitempty"`
	CommandBlockID       string            `json:"command_block_id,omitempty"`
}

// StudentHash derives the stable identity key for a student from their name
// and registration timestamp, matching the hash the registration feed sends.
func StudentHash(firstName, lastName string, registeredAt time.Time) string {
	sum := md5.Sum([]byte(firstName + lastName + registeredAt.UTC().Format(time.RFC3339)))
	return hex.EncodeToString(sum[:])
}

// NewStudent validates the registration attributes and builds a Student.
// The identity hash is derived when the feed did not supply one.
func NewStudent(hash, firstName, lastName string, section SectionType, dayPreference Day,
	skillLevel, playTime int, teacherName, teacherEmail, parentEmail, birthdate string,
	songs []Song, registeredAt time.Time) (*Student, error) {

	if strings.TrimSpace(firstName) == "" || strings.TrimSpace(lastName) == "" {
		return nil, fmt.Errorf("validation: student name is required")
	}
	if !section.Valid() {
		return nil, fmt.Errorf("validation: unknown section type %q", section)
	}
	if !dayPreference.Valid() {
		return nil, fmt.Errorf("validation: unknown day preference %q", dayPreference)
	}
	if skillLevel < SkillLevelMin || skillLevel > SkillLevelMax {
		return nil, fmt.Errorf("validation: skill level %d out of range %d-%d", skillLevel, SkillLevelMin, SkillLevelMax)
	}
	if playTime <= 0 {
		return nil, fmt.Errorf("validation: play time must be positive, got %d", playTime)
	}
	if len(songs) < 2 {
		return nil, fmt.Errorf("validation: at least two songs are required, got %d", len(songs))
	}
	for i, song := range songs {
		if strings.TrimSpace(song.Title) == "" || strings.TrimSpace(song.Composer) == "" {
			return nil, fmt.Errorf("validation: song %d is missing a title or composer", i+1)
		}
	}
	if birthdate != "" {
		if _, err := time.Parse("2006-01-02", birthdate); err != nil {
			return nil, fmt.Errorf("validation: bad birthdate %q: %v", birthdate, err)
		}
	}
	if registeredAt.IsZero() {
		registeredAt = time.Now()
	}
	if hash == "" {
		hash = StudentHash(firstName, lastName, registeredAt)
	}

	return &Student{
		Hash:          hash,
		FirstName:     firstName,
		LastName:      lastName,
		Songs:         append([]Song(nil), songs...),
		Section:       section,
		DayPreference: dayPreference,
		SkillLevel:    skillLevel,
		PlayTime:      playTime,
		TeacherName:   teacherName,
		TeacherEmail:  teacherEmail,
		ParentEmail:   parentEmail,
		Birthdate:     birthdate,
		RegisteredAt:  registeredAt,
	}, nil
}

// AddSong appends one song to the student's ordered program.
func (s *Student) AddSong(title, composer string) {
	s.Songs = append(s.Songs, Song{Title: title, Composer: composer})
}

func (s *Student) Name() string {
	return titleCase(s.FirstName) + " " + titleCase(s.LastName)
}

// ComputeAge derives an age from a birthdate in YYYY-MM-DD form. The age
// decrements when today's month precedes the birth month, or the months match
// and today's day precedes the birth day.
func ComputeAge(birthdate string, today time.Time) (int, error) {
	born, err := time.Parse("2006-01-02", birthdate)
	if err != nil {
		return 0, fmt.Errorf("bad birthdate %q: %v", birthdate, err)
	}
	age := today.Year() - born.Year()
	if today.Month() < born.Month() {
		age--
	} else if today.Month() == born.Month() && today.Day() < born.Day() {
		age--
	}
	return age, nil
}

// RefreshAge recomputes the stored age for "today". Ages must never be
// carried over from a previous run when eligibility spans multiple days.
func (s *Student) RefreshAge(today time.Time) error {
	if s.Birthdate == "" {
		return nil
	}
	age, err := ComputeAge(s.Birthdate, today)
	if err != nil {
		return err
	}
	s.Age = age
	return nil
}

// SetCommandSong resolves a song index into the student's program and records
// it as the command performance selection. A nil index clears the selection.
// The selection is only meaningful once the student holds an SD or S result.
func (s *Student) SetCommandSong(index *int) error {
	if index == nil {
		s.CommandSong = nil
		return nil
	}
	if !s.Result.CommandEligible() {
		return fmt.Errorf("student %s has result %q and is not command eligible", s.Hash, s.Result)
	}
	if *index < 0 || *index >= len(s.Songs) {
		return fmt.Errorf("song index %d out of range for %d songs", *index, len(s.Songs))
	}
	song := s.Songs[*index]
	s.CommandSong = &song
	return nil
}

// NotificationSentence builds the sentence sent to families once the student
// has been placed: songs joined with commas and a final "and", then the
// assigned day, date, start time and room.
func (s *Student) NotificationSentence() string {
	var songs string
	switch len(s.Songs) {
	case 0:
	case 1:
		songs = s.Songs[0].Title + " by " + s.Songs[0].Composer
	case 2:
		songs = s.Songs[0].Title + " by " + s.Songs[0].Composer +
			" and " + s.Songs[1].Title + " by " + s.Songs[1].Composer
	default:
		for i, song := range s.Songs {
			if i == len(s.Songs)-1 {
				songs += "and " + song.Title + " by " + song.Composer
			} else {
				songs += song.Title + " by " + song.Composer + ", "
			}
		}
	}
	return fmt.Sprintf("%s will be playing %s on %s (%s) at %s in %s.",
		s.Name(), songs, s.AssignedDay, s.Date, s.StartTime, s.Room)
}

// StudentSummary is the tabular view of a student used by schedule listings.
type StudentSummary struct {
	Hash       string `json:"hash"`
	Name       string `json:"name"`
	Age        int    `json:"age"`
	SkillLevel int    `json:"skill_level"`
	PlayTime   string `json:"play_time"`
	Songs      []Song `json:"songs"`
	Day        Day    `json:"day,omitempty"`
	StartTime  string `json:"start_time,omitempty"`
	Room       string `json:"room,omitempty"`
	Location   string `json:"location,omitempty"`
	Result     string `json:"result,omitempty"`
}

func (s *Student) Summary() StudentSummary {
	return StudentSummary{
		Hash:       s.Hash,
		Name:       s.Name(),
		Age:        s.Age,
		SkillLevel: s.SkillLevel,
		PlayTime:   fmt.Sprintf("%d minutes", s.PlayTime),
		Songs:      append([]Song(nil), s.Songs...),
		Day:        s.AssignedDay,
		StartTime:  s.StartTime,
		Room:       s.Room,
		Location:   s.Location,
		Result:     string(s.Result),
	}
}

// SectionInfo is the per-student record handed to the document generator.
type SectionInfo struct {
	Name    string `json:"name"`
	Teacher string `json:"teacher"`
	Level   int    `json:"level"`
	Format  string `json:"format"`
	SongOne Song   `json:"song_one"`
	SongTwo Song   `json:"song_two"`
}

func (s *Student) SectionInfo() SectionInfo {
	info := SectionInfo{
		Name:    s.Name(),
		Teacher: s.TeacherName,
		Level:   s.SkillLevel,
		Format:  s.Section.Display(),
	}
	if len(s.Songs) > 0 {
		info.SongOne = s.Songs[0]
	}
	if len(s.Songs) > 1 {
		info.SongTwo = s.Songs[1]
	}
	return info
}

func titleCase(name string) string {
	words := strings.Fields(strings.ToLower(name))
	for i, word := range words {
		first, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(first)) + word[size:]
	}
	return strings.Join(words, " ")
}
