package controllers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"

	"competition-scheduler/models"
	"competition-scheduler/utils"
)

func (c Controller) Signup(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var user models.User
		var error models.Error

		err := json.NewDecoder(r.Body).Decode(&user)
		if err != nil {
			error.Message = "Invalid request body."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}

		user.Role = "operator"

		if user.Email == "" || !strings.Contains(user.Email, "@") {
			error.Message = "A valid email is required."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}
		if user.Password == "" {
			error.Message = "Password is required."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}

		var existingID int
		err = db.QueryRow("SELECT id FROM users WHERE email = ?", user.Email).Scan(&existingID)
		if err == nil {
			error.Message = "Email already exists."
			utils.RespondWithError(w, http.StatusConflict, error)
			return
		} else if err != sql.ErrNoRows {
			log.Printf("Error checking existing user: %v", err)
			error.Message = "Server error."
			utils.RespondWithError(w, http.StatusInternalServerError, error)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("Error hashing password: %v", err)
			error.Message = "Server error."
			utils.RespondWithError(w, http.StatusInternalServerError, error)
			return
		}
		user.Password = string(hash)

		query := "INSERT INTO users (email, password, first_name, last_name, role) VALUES (?, ?, ?, ?, ?)"
		_, err = db.Exec(query, user.Email, user.Password, user.FirstName, user.LastName, user.Role)
		if err != nil {
			log.Printf("Error inserting user: %v", err)
			error.Message = "Server error."
			utils.RespondWithError(w, http.StatusInternalServerError, error)
			return
		}

		utils.ResponseJSON(w, map[string]string{"message": "Operator registered successfully."})
	}
}

func (c Controller) Login(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var user models.User
		var error models.Error

		err := json.NewDecoder(r.Body).Decode(&user)
		if err != nil {
			error.Message = "Invalid request body."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}

		if user.Email == "" {
			error.Message = "Email is required."
			utils.RespondWithError(w, http.StatusBadRequest, error)
			return
		}

		var hashedPassword string
		query := "SELECT id, email, password, first_name, last_name, role FROM users WHERE email = ?"
		row := db.QueryRow(query, user.Email)
		err = row.Scan(&user.ID, &user.Email, &hashedPassword, &user.FirstName, &user.LastName, &user.Role)
		if err != nil {
			if err == sql.ErrNoRows {
				error.Message = "User not found."
				utils.RespondWithError(w, http.StatusNotFound, error)
				return
			}
			log.Printf("Error querying user: %v", err)
			error.Message = "Server error."
			utils.RespondWithError(w, http.StatusInternalServerError, error)
			return
		}

		err = bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(user.Password))
		if err != nil {
			error.Message = "Invalid password."
			utils.RespondWithError(w, http.StatusUnauthorized, error)
			return
		}

		accessToken, err := utils.GenerateToken(user, 24*time.Hour)
		if err != nil {
			log.Printf("Error generating token: %v", err)
			error.Message = "Server error."
			utils.RespondWithError(w, http.StatusInternalServerError, error)
			return
		}

		utils.ResponseJSON(w, map[string]string{"token": accessToken})
	}
}

func (c Controller) TokenVerifyMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var errorObject models.Error
		authHeader := r.Header.Get("Authorization")
		bearerToken := strings.Split(authHeader, " ")

		if len(bearerToken) == 2 {
			authToken := bearerToken[1]

			token, err := jwt.Parse(authToken, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("There was an error")
				}
				return []byte(os.Getenv("SECRET")), nil
			})

			if err != nil {
				errorObject.Message = err.Error()
				utils.RespondWithError(w, http.StatusUnauthorized, errorObject)
				return
			}

			if token.Valid {
				next.ServeHTTP(w, r)
			} else {
				errorObject.Message = "Invalid token."
				utils.RespondWithError(w, http.StatusUnauthorized, errorObject)
				return
			}
		} else {
			errorObject.Message = "Invalid Token."
			utils.RespondWithError(w, http.StatusUnauthorized, errorObject)
			return
		}
	})
}
