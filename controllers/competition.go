package controllers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"competition-scheduler/catalog"
	"competition-scheduler/models"
	"competition-scheduler/scheduler"
	"competition-scheduler/store"
	"competition-scheduler/utils"
)

type CompetitionController struct{}

type createCompetitionRequest struct {
	Name    string `json:"name"`
	Catalog string `json:"catalog"`
}

// RegistrationRecord is one entry of the registration feed: a fully
// populated student keyed by a caller-supplied identity hash.
type RegistrationRecord struct {
	Hash          string             `json:"hash"`
	FirstName     string             `json:"first_name"`
	LastName      string             `json:"last_name"`
	Section       models.SectionType `json:"section"`
	DayPreference models.Day         `json:"day_preference"`
	SkillLevel    int                `json:"skill_level"`
	PlayTime      int                `json:"play_time"`
	TeacherName   string             `json:"teacher_name"`
	TeacherEmail  string             `json:"teacher_email"`
	ParentEmail   string             `json:"parent_email"`
	Birthdate     string             `json:"birthdate"`
	Songs         []models.Song      `json:"songs"`
	RegisteredAt  time.Time          `json:"registered_at"`
}

func (cc CompetitionController) CreateCompetition(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCompetitionRequest
		var error models.Error

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			error.Message = "Invalid request body."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}
		if req.Name == "" {
			error.Message = "Competition name is required."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}

		blocks, err := catalog.Parse([]byte(req.Catalog))
		if err != nil {
			error.Message = err.Error()
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}

		state := models.NewCompetitionState(req.Name, blocks)
		if err := store.New(db).Create(state); err != nil {
			log.Printf("Error creating competition %s: %v", req.Name, err)
			error.Message = "Failed to create competition."
			utils.RespondWithError(w, http.StatusInternalServerError, error)
			return
		}

		utils.ResponseJSON(w, map[string]interface{}{
			"name":        state.Name,
			"time_blocks": len(state.Blocks),
		})
	}
}

func (cc CompetitionController) GetCompetition(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var error models.Error
		name := mux.Vars(r)["name"]

		state, _, err := store.New(db).Load(name)
		if err != nil {
			respondStoreError(w, name, err, &error)
			return
		}

		scheduled := 0
		for _, s := range state.Students {
			if s.Scheduled {
				scheduled++
			}
		}

		utils.ResponseJSON(w, map[string]interface{}{
			"name":        state.Name,
			"students":    len(state.Students),
			"scheduled":   scheduled,
			"time_blocks": len(state.Blocks),
			"created_at":  state.CreatedAt,
			"updated_at":  state.UpdatedAt,
		})
	}
}

func (cc CompetitionController) RegisterStudents(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var error models.Error
		name := mux.Vars(r)["name"]

		var req struct {
			Students []RegistrationRecord `json:"students"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			error.Message = "Invalid request body."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}
		if len(req.Students) == 0 {
			error.Message = "At least one student record is required."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}

		cs := store.New(db)
		state, version, err := cs.Load(name)
		if err != nil {
			respondStoreError(w, name, err, &error)
			return
		}

		// A malformed record rejects the whole batch before any state change.
		students := make([]*models.Student, 0, len(req.Students))
		for i, rec := range req.Students {
			student, err := models.NewStudent(rec.Hash, rec.FirstName, rec.LastName,
				rec.Section, rec.DayPreference, rec.SkillLevel, rec.PlayTime,
				rec.TeacherName, rec.TeacherEmail, rec.ParentEmail, rec.Birthdate,
				rec.Songs, rec.RegisteredAt)
			if err != nil {
				error.Message = recordError(i, err)
				utils.RespondWithError(w, http.StatusBadRequest, error)
				return
			}
			students = append(students, student)
		}
		for i, student := range students {
			if err := state.AddStudent(student); err != nil {
				error.Message = recordError(i, err)
				utils.RespondWithError(w, http.StatusBadRequest, error)
				return
			}
		}
		state.UpdatedAt = time.Now().UTC()

		if err := cs.Save(state, version); err != nil {
			log.Printf("Error saving competition %s: %v", name, err)
			respondStoreError(w, name, err, &error)
			return
		}

		hashes := make([]string, 0, len(students))
		for _, s := range students {
			hashes = append(hashes, s.Hash)
		}
		utils.ResponseJSON(w, map[string]interface{}{"registered": hashes})
	}
}

func (cc CompetitionController) RunSchedule(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var error models.Error
		name := mux.Vars(r)["name"]

		cs := store.New(db)
		state, version, err := cs.Load(name)
		if err != nil {
			respondStoreError(w, name, err, &error)
			return
		}

		result := scheduler.Run(state, time.Now())
		state.UpdatedAt = time.Now().UTC()

		if err := cs.Save(state, version); err != nil {
			log.Printf("Error saving competition %s: %v", name, err)
			respondStoreError(w, name, err, &error)
			return
		}

		utils.ResponseJSON(w, result)
	}
}

func (cc CompetitionController) GetAssignments(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var error models.Error
		name := mux.Vars(r)["name"]

		state, _, err := store.New(db).Load(name)
		if err != nil {
			respondStoreError(w, name, err, &error)
			return
		}

		utils.ResponseJSON(w, map[string]interface{}{
			"assignments": scheduler.Assignments(state),
		})
	}
}

func (cc CompetitionController) GetUnplaced(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var error models.Error
		name := mux.Vars(r)["name"]

		state, _, err := store.New(db).Load(name)
		if err != nil {
			respondStoreError(w, name, err, &error)
			return
		}

		utils.ResponseJSON(w, map[string]interface{}{
			"unplaced": scheduler.UnplacedStudents(state),
		})
	}
}

func (cc CompetitionController) GetStudentSummary(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var error models.Error
		vars := mux.Vars(r)
		name := vars["name"]
		hash := vars["hash"]

		state, _, err := store.New(db).Load(name)
		if err != nil {
			respondStoreError(w, name, err, &error)
			return
		}

		student := state.StudentByHash(hash)
		if student == nil {
			error.Message = "Student not found."
			utils.RespondWithError(w, http.StatusNotFound, error)
			return
		}

		utils.ResponseJSON(w, map[string]interface{}{
			"summary":      student.Summary(),
			"section_info": student.SectionInfo(),
			"notification": student.NotificationSentence(),
		})
	}
}

func respondStoreError(w http.ResponseWriter, name string, err error, error *models.Error) {
	switch err {
	case store.ErrNotFound:
		error.Message = "Competition " + name + " not found."
		utils.RespondWithError(w, http.StatusNotFound, *error)
	case store.ErrVersionConflict:
		error.Message = "Competition " + name + " was modified concurrently, retry."
		utils.RespondWithError(w, http.StatusConflict, *error)
	default:
		error.Message = err.Error()
		utils.RespondWithError(w, http.StatusInternalServerError, *error)
	}
}

func recordError(index int, err error) string {
	return fmt.Sprintf("Student record %d: %v", index+1, err)
}
