package main

import (
	"bufio"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/kinderhub/backend/internal/config"
	"github.com/kinderhub/backend/internal/database"
	"github.com/kinderhub/backend/internal/logging"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Setup(cfg.App.Env, os.Stderr)

	reader := bufio.NewReader(os.Stdin)

	for {
		printMenu(cfg)
		fmt.Print("Choose: ")
		input, _ := reader.ReadString('\n')
		input = strings.TrimSpace(input)

		switch input {
		case "1":
			createDatabase(cfg, reader)
		case "2":
			migrateSchema(cfg)
		case "3":
			migrateFresh(cfg, reader)
		case "4":
			truncateTables(cfg, reader)
		case "5":
			seedAdmin(cfg, reader)
		case "6":
			seedSample(cfg)
		case "7":
			deleteDatabase(cfg, reader)
		case "0":
			fmt.Println("Bye.")
			os.Exit(0)
		default:
			fmt.Println("Invalid choice")
		}

		fmt.Println()
		fmt.Print("Press Enter to continue...")
		reader.ReadString('\n')
	}
}

func printMenu(cfg *config.Config) {
	fmt.Println()
	fmt.Println("========================================")
	fmt.Println("      KINDERHUB DATABASE CLI")
	fmt.Printf("      driver: %s\n", cfg.Database.Driver)
	fmt.Println("========================================")
	fmt.Println()
	fmt.Println("1. Create database (if missing) + migrate schema")
	fmt.Println("2. Migrate schema")
	fmt.Println("3. Migrate fresh (drop everything + migrate)")
	fmt.Println("4. Truncate tables (keeps user accounts)")
	fmt.Println("5. Seed admin account")
	fmt.Println("6. Seed sample data")
	fmt.Println("7. Delete database")
	fmt.Println("0. Exit")
	fmt.Println()
	fmt.Println("----------------------------------------")
}

func confirm(reader *bufio.Reader, question string) bool {
	fmt.Printf("%s (y/n): ", question)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(strings.ToLower(input)) == "y"
}

// getPostgresConn connects to the maintenance database so the application
// database can be created or dropped.
func getPostgresConn(cfg *config.Config) (*sql.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=postgres sslmode=%s",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.SSLMode,
	)
	return sql.Open("postgres", connStr)
}

func databaseExists(cfg *config.Config) (bool, error) {
	if cfg.Database.Driver == "sqlite" {
		_, err := os.Stat(cfg.Database.Path)
		if os.IsNotExist(err) {
			return false, nil
		}
		return err == nil, err
	}

	db, err := getPostgresConn(cfg)
	if err != nil {
		return false, err
	}
	defer db.Close()

	var exists bool
	err = db.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", cfg.Database.Name).Scan(&exists)
	return exists, err
}

func createDatabase(cfg *config.Config, reader *bufio.Reader) {
	fmt.Println()
	fmt.Println("--- Create database + migrate schema ---")

	exists, err := databaseExists(cfg)
	if err != nil {
		fmt.Printf("Error checking database: %v\n", err)
		return
	}

	if exists {
		fmt.Printf("Database '%s' already exists.\n", cfg.Database.Name)
		if !confirm(reader, "Continue with schema migration?") {
			fmt.Println("Cancelled.")
			return
		}
	} else if cfg.Database.Driver == "postgres" {
		db, err := getPostgresConn(cfg)
		if err != nil {
			fmt.Printf("Connection error: %v\n", err)
			return
		}
		defer db.Close()

		if _, err := db.Exec(fmt.Sprintf("CREATE DATABASE %q", cfg.Database.Name)); err != nil {
			fmt.Printf("Error creating database: %v\n", err)
			return
		}
		fmt.Printf("Database '%s' created.\n", cfg.Database.Name)
	}

	migrateSchema(cfg)
}

func migrateSchema(cfg *config.Config) {
	fmt.Println()
	fmt.Println("--- Migrate schema ---")

	db, err := database.Connect(cfg)
	if err != nil {
		fmt.Printf("Connection error: %v\n", err)
		return
	}
	if err := database.Migrate(db); err != nil {
		fmt.Printf("Migration error: %v\n", err)
		return
	}
	fmt.Println("Schema migration finished!")
}

func migrateFresh(cfg *config.Config, reader *bufio.Reader) {
	fmt.Println()
	fmt.Println("--- Migrate fresh ---")
	fmt.Println("WARNING: every table and all data will be dropped!")
	if !confirm(reader, "Are you sure?") {
		fmt.Println("Cancelled.")
		return
	}

	db, err := database.Connect(cfg)
	if err != nil {
		fmt.Printf("Connection error: %v\n", err)
		return
	}
	if err := database.DropAll(db); err != nil {
		fmt.Printf("Error dropping tables: %v\n", err)
		return
	}
	fmt.Println("All tables dropped.")

	migrateSchema(cfg)
}

func truncateTables(cfg *config.Config, reader *bufio.Reader) {
	fmt.Println()
	fmt.Println("--- Truncate tables ---")
	if !confirm(reader, "Delete every semester, class, teacher, student and news post?") {
		fmt.Println("Cancelled.")
		return
	}

	db, err := database.Connect(cfg)
	if err != nil {
		fmt.Printf("Connection error: %v\n", err)
		return
	}
	if err := database.Truncate(db); err != nil {
		fmt.Printf("Truncate error: %v\n", err)
		return
	}
	fmt.Println("Tables truncated.")
}

func seedAdmin(cfg *config.Config, reader *bufio.Reader) {
	fmt.Println()
	fmt.Println("--- Seed admin account ---")

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		fmt.Print("Admin email: ")
		email, _ = reader.ReadString('\n')
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		fmt.Print("Admin password (min 8 chars): ")
		password, _ = reader.ReadString('\n')
		password = strings.TrimRight(password, "\r\n")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		fmt.Printf("Connection error: %v\n", err)
		return
	}
	created, err := database.SeedAdmin(db, "Administrator", email, password)
	if err != nil {
		fmt.Printf("Seed error: %v\n", err)
		return
	}
	if !created {
		fmt.Println("An account with this email already exists.")
		return
	}
	fmt.Println("Admin account created.")
}

func seedSample(cfg *config.Config) {
	fmt.Println()
	fmt.Println("--- Seed sample data ---")

	db, err := database.Connect(cfg)
	if err != nil {
		fmt.Printf("Connection error: %v\n", err)
		return
	}
	if err := database.SeedSample(db); err != nil {
		fmt.Printf("Seed error: %v\n", err)
		return
	}
	fmt.Println("Sample semesters, teachers, classes, students and news created.")
}

func deleteDatabase(cfg *config.Config, reader *bufio.Reader) {
	fmt.Println()
	fmt.Println("--- Delete database ---")
	fmt.Printf("WARNING: database '%s' will be deleted permanently!\n", cfg.Database.Name)
	if !confirm(reader, "Are you sure?") {
		fmt.Println("Cancelled.")
		return
	}

	if cfg.Database.Driver == "sqlite" {
		if err := os.Remove(cfg.Database.Path); err != nil {
			fmt.Printf("Error deleting database file: %v\n", err)
			return
		}
		fmt.Printf("Database file '%s' deleted.\n", cfg.Database.Path)
		return
	}

	db, err := getPostgresConn(cfg)
	if err != nil {
		fmt.Printf("Connection error: %v\n", err)
		return
	}
	defer db.Close()

	// Terminate open connections first
	_, _ = db.Exec(`SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = $1 AND pid <> pg_backend_pid()`, cfg.Database.Name)

	if _, err := db.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %q", cfg.Database.Name)); err != nil {
		fmt.Printf("Error deleting database: %v\n", err)
		return
	}
	fmt.Printf("Database '%s' deleted.\n", cfg.Database.Name)
}
