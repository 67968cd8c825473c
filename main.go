package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"competition-scheduler/controllers"
	"competition-scheduler/driver"
	"competition-scheduler/migrations"
)

var db *sql.DB

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file")
	}
	secret := os.Getenv("SECRET")
	if secret == "" {
		log.Fatal("SECRET variable is not set")
	}
	db = driver.ConnectDB()
	defer db.Close()

	if err := migrations.InitSchema(db); err != nil {
		log.Fatal("Error initializing schema:", err)
	}

	controller := controllers.Controller{}
	competitionController := controllers.CompetitionController{}
	scoreController := controllers.ScoreController{}
	router := mux.NewRouter()

	router.HandleFunc("/signup", controller.Signup(db)).Methods("POST")
	router.HandleFunc("/login", controller.Login(db)).Methods("POST")
	router.HandleFunc("/protected", controller.TokenVerifyMiddleware(controller.ProtectedEndpoint())).Methods("GET")

	router.HandleFunc("/competitions/create", controller.TokenVerifyMiddleware(competitionController.CreateCompetition(db))).Methods("POST")
	router.HandleFunc("/competitions/{name}", competitionController.GetCompetition(db)).Methods("GET")
	router.HandleFunc("/competitions/{name}/students", controller.TokenVerifyMiddleware(competitionController.RegisterStudents(db))).Methods("POST")
	router.HandleFunc("/competitions/{name}/students/{hash}", competitionController.GetStudentSummary(db)).Methods("GET")
	router.HandleFunc("/competitions/{name}/schedule", controller.TokenVerifyMiddleware(competitionController.RunSchedule(db))).Methods("POST")
	router.HandleFunc("/competitions/{name}/assignments", competitionController.GetAssignments(db)).Methods("GET")
	router.HandleFunc("/competitions/{name}/unplaced", competitionController.GetUnplaced(db)).Methods("GET")

	router.HandleFunc("/competitions/{name}/scores", controller.TokenVerifyMiddleware(scoreController.UpdateScores(db))).Methods("POST")
	router.HandleFunc("/competitions/{name}/trophies", scoreController.GetTrophyList(db)).Methods("GET")
	router.HandleFunc("/competitions/{name}/command-performance", controller.TokenVerifyMiddleware(scoreController.ScheduleCommandPerformance(db))).Methods("POST")
	router.HandleFunc("/competitions/{name}/export", controller.TokenVerifyMiddleware(scoreController.ExportSchedule(db))).Methods("POST")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	log.Println("Server started on port " + port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}
