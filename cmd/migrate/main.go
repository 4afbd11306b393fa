package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/restokit/equipcore/internal/adapters/postgres"
)

func main() {
	// Pick up local overrides for development
	_ = godotenv.Load()

	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string (overrides individual flags)")
		host        = flag.String("host", envOr("EQUIPCORE_DB_HOST", "localhost"), "Database host")
		port        = flag.Int("port", 5432, "Database port")
		user        = flag.String("user", envOr("EQUIPCORE_DB_USER", "equipcore"), "Database user")
		password    = flag.String("password", os.Getenv("EQUIPCORE_DB_PASSWORD"), "Database password")
		dbname      = flag.String("dbname", envOr("EQUIPCORE_DB_NAME", "equipcore"), "Database name")
		sslmode     = flag.String("sslmode", "disable", "SSL mode (disable, require, verify-ca, verify-full)")
		verify      = flag.Bool("verify", false, "Verify schema after migration")
		status      = flag.Bool("status", false, "Show migration status")
	)

	flag.Parse()

	var dsn string
	if *databaseURL != "" {
		dsn = *databaseURL
	} else {
		dsn = fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			*host, *port, *user, *password, *dbname, *sslmode,
		)
	}

	fmt.Println("Connecting to database...")
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to ping database: %v\n", err)
		os.Exit(1)
	}

	migrator := postgres.NewMigrator(db)

	switch {
	case *status:
		if err := showMigrationStatus(ctx, migrator); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to get migration status: %v\n", err)
			os.Exit(1)
		}

	default:
		if err := migrator.Migrate(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Migration completed.")

		if *verify {
			if err := migrator.VerifySchema(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Schema verification failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("Schema verified.")
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func showMigrationStatus(ctx context.Context, migrator *postgres.Migrator) error {
	migrations, err := migrator.GetMigrationStatus(ctx)
	if err != nil {
		return err
	}

	if len(migrations) == 0 {
		fmt.Println("No migrations have been applied yet.")
		return nil
	}

	for _, m := range migrations {
		fmt.Printf("%s  %s  (%s)\n", m.AppliedAt.Format(time.RFC3339), m.MigrationName, m.Description)
	}
	return nil
}
