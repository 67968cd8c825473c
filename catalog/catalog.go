package catalog

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"competition-scheduler/models"
)

// File is the on-disk shape of a time-block catalog. Operators write one
// YAML file per competition describing every session the venue offers.
type File struct {
	TimeBlocks []BlockSpec `yaml:"time_blocks"`
}

type BlockSpec struct {
	Day             string `yaml:"day"`
	StartTime       string `yaml:"start_time"`
	Room            string `yaml:"room"`
	Location        string `yaml:"location"`
	Date            string `yaml:"date"`
	Section         string `yaml:"section"`
	SkillMin        int    `yaml:"skill_min"`
	SkillMax        int    `yaml:"skill_max"`
	CapacityMinutes int    `yaml:"capacity_minutes"`
	MaxStudents     int    `yaml:"max_students"`
}

// Parse validates a catalog document and mints the time blocks, each with a
// fresh ID.
func Parse(data []byte) ([]*models.TimeBlock, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %v", err)
	}
	if len(file.TimeBlocks) == 0 {
		return nil, fmt.Errorf("parse catalog: no time blocks defined")
	}

	blocks := make([]*models.TimeBlock, 0, len(file.TimeBlocks))
	for i, spec := range file.TimeBlocks {
		day := models.Day(spec.Day)
		if !day.Valid() {
			return nil, fmt.Errorf("catalog block %d: unknown day %q", i+1, spec.Day)
		}
		section := models.SectionType(spec.Section)
		if !section.Valid() {
			return nil, fmt.Errorf("catalog block %d: unknown section %q", i+1, spec.Section)
		}
		if spec.StartTime == "" || spec.Room == "" {
			return nil, fmt.Errorf("catalog block %d: start_time and room are required", i+1)
		}
		if spec.CapacityMinutes <= 0 {
			return nil, fmt.Errorf("catalog block %d: capacity_minutes must be positive", i+1)
		}
		if spec.SkillMin < models.SkillLevelMin || spec.SkillMax > models.SkillLevelMax || spec.SkillMin > spec.SkillMax {
			return nil, fmt.Errorf("catalog block %d: bad skill range %d-%d", i+1, spec.SkillMin, spec.SkillMax)
		}
		blocks = append(blocks, &models.TimeBlock{
			ID:              uuid.NewString(),
			Day:             day,
			StartTime:       spec.StartTime,
			Room:            spec.Room,
			Location:        spec.Location,
			Date:            spec.Date,
			Section:         section,
			SkillMin:        spec.SkillMin,
			SkillMax:        spec.SkillMax,
			CapacityMinutes: spec.CapacityMinutes,
			MaxStudents:     spec.MaxStudents,
		})
	}
	return blocks, nil
}

// Load reads and parses a catalog file from disk.
func Load(path string) ([]*models.TimeBlock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %v", err)
	}
	return Parse(data)
}
