// repository/db.go
package repository

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"

	"github.com/fadhlanhapp/paytracker-backend/config"
)

var db *sql.DB

const createPaymentsTable = `
	CREATE TABLE IF NOT EXISTS payments (
		id     BIGSERIAL PRIMARY KEY,
		name   TEXT,
		amount NUMERIC,
		reason TEXT,
		date   TEXT
	)
`

// InitDB opens the PostgreSQL connection and makes sure the payments table exists
func InitDB(cfg config.DatabaseConfig) error {
	conn, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := conn.Exec(createPaymentsTable); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create payments table: %w", err)
	}

	db = conn
	log.Println("Successfully connected to the database")
	return nil
}

// CloseDB closes the database connection
func CloseDB() {
	if db != nil {
		db.Close()
	}
}

// GetDB returns the database instance, or nil when InitDB failed
func GetDB() *sql.DB {
	return db
}
