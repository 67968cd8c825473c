package migrations

import (
	"database/sql"
	"fmt"
)

// InitSchema creates the tables the service needs if they are missing.
func InitSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS Competitions (
			name VARCHAR(255) NOT NULL PRIMARY KEY,
			version INT NOT NULL DEFAULT 1,
			snapshot LONGTEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id INT AUTO_INCREMENT PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			password VARCHAR(255) NOT NULL,
			first_name VARCHAR(255),
			last_name VARCHAR(255),
			role VARCHAR(50) NOT NULL DEFAULT 'operator'
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %v", err)
		}
	}
	return nil
}
