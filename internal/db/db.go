package db

import (
	"embed"
	"errors"
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // The database driver
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB is the global database connection.
var DB *sqlx.DB

// ErrNotFound is returned when a row does not exist or is not reachable
// through the requesting user's ownership chain. Callers cannot tell the
// two cases apart.
var ErrNotFound = errors.New("not found")

// InitDB initializes the database connection and runs pending migrations.
func InitDB() {
	var err error
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	DB, err = sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err = DB.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	if err = RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database connection established")
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations() error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(DB.DB, "migrations")
}
