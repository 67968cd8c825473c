package controllers

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"competition-scheduler/models"
	"competition-scheduler/scheduler"
	"competition-scheduler/store"
	"competition-scheduler/utils"
)

type ScoreController struct{}

func (sc ScoreController) UpdateScores(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var error models.Error
		name := mux.Vars(r)["name"]

		var req struct {
			Updates map[string]scheduler.ScoreUpdate `json:"updates"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			error.Message = "Invalid request body."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}
		if len(req.Updates) == 0 {
			error.Message = "At least one score update is required."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}

		cs := store.New(db)
		state, version, err := cs.Load(name)
		if err != nil {
			respondStoreError(w, name, err, &error)
			return
		}

		failures := scheduler.UpdateScores(state, req.Updates)
		state.UpdatedAt = time.Now().UTC()

		if err := cs.Save(state, version); err != nil {
			log.Printf("Error saving competition %s: %v", name, err)
			respondStoreError(w, name, err, &error)
			return
		}

		utils.ResponseJSON(w, map[string]interface{}{
			"applied":  len(req.Updates) - len(failures),
			"failures": failures,
		})
	}
}

func (sc ScoreController) GetTrophyList(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var error models.Error
		name := mux.Vars(r)["name"]

		state, _, err := store.New(db).Load(name)
		if err != nil {
			respondStoreError(w, name, err, &error)
			return
		}

		utils.ResponseJSON(w, map[string]interface{}{
			"trophies": scheduler.TrophyList(state),
		})
	}
}

func (sc ScoreController) ScheduleCommandPerformance(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var error models.Error
		name := mux.Vars(r)["name"]

		cs := store.New(db)
		state, version, err := cs.Load(name)
		if err != nil {
			respondStoreError(w, name, err, &error)
			return
		}

		result := scheduler.ScheduleCommandPerformance(state)
		state.UpdatedAt = time.Now().UTC()

		if err := cs.Save(state, version); err != nil {
			log.Printf("Error saving competition %s: %v", name, err)
			respondStoreError(w, name, err, &error)
			return
		}

		utils.ResponseJSON(w, result)
	}
}

// ExportSchedule renders the full assignment as CSV and uploads it to the
// report bucket for the document generation pipeline.
func (sc ScoreController) ExportSchedule(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var error models.Error
		name := mux.Vars(r)["name"]

		state, _, err := store.New(db).Load(name)
		if err != nil {
			respondStoreError(w, name, err, &error)
			return
		}

		content, err := renderScheduleCSV(state)
		if err != nil {
			log.Printf("Error rendering schedule CSV for %s: %v", name, err)
			error.Message = "Failed to render schedule."
			utils.RespondWithError(w, http.StatusInternalServerError, error)
			return
		}

		fileName := fmt.Sprintf("%s-schedule-%d.csv",
			strings.ReplaceAll(name, " ", "_"), time.Now().Unix())
		url, err := utils.UploadReportToS3(content, fileName)
		if err != nil {
			log.Printf("Error uploading schedule for %s: %v", name, err)
			error.Message = "Failed to upload schedule report."
			utils.RespondWithError(w, http.StatusInternalServerError, error)
			return
		}

		utils.ResponseJSON(w, map[string]string{"url": url})
	}
}

func renderScheduleCSV(state *models.CompetitionState) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"Name", "Teacher", "Level", "Format", "Day", "Date", "Start Time", "Room", "Location", "Result"}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for _, s := range state.SortedStudents() {
		if !s.Scheduled {
			continue
		}
		row := []string{
			s.Name(),
			s.TeacherName,
			fmt.Sprintf("%d", s.SkillLevel),
			s.Section.Display(),
			string(s.AssignedDay),
			s.Date,
			s.StartTime,
			s.Room,
			s.Location,
			string(s.Result),
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
