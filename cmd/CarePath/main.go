package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/BTreeMap/CarePath/internal/api"
	"github.com/BTreeMap/CarePath/internal/catalog"
	"github.com/BTreeMap/CarePath/internal/messaging"
	"github.com/BTreeMap/CarePath/internal/scheduler"
	"github.com/BTreeMap/CarePath/internal/store"
	"github.com/BTreeMap/CarePath/internal/util"
	"github.com/joho/godotenv"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for CarePath state data
	DefaultStateDir = "/var/lib/carepath"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "carepath.db"
)

// Config holds environment configuration.
type Config struct {
	DBDriver     string
	DatabaseURL  string
	StateDir     string
	APIAddr      string
	EvalSchedule string
}

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()

	dbDriver := flag.String("db-driver", config.DBDriver, "database driver: sqlite3 or postgres")
	dbDSN := flag.String("db-dsn", config.DatabaseURL, "database DSN (file path for sqlite3, URL for postgres)")
	stateDir := flag.String("state-dir", config.StateDir, "directory for CarePath state data")
	apiAddr := flag.String("addr", config.APIAddr, "API listen address")
	evalSchedule := flag.String("eval-schedule", config.EvalSchedule, "cron expression for the periodic evaluation pass")
	flag.Parse()

	st, err := buildStore(*dbDriver, *dbDSN, *stateDir)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	msgService := buildMessagingService()

	sched := scheduler.NewScheduler()
	defer sched.Stop()

	server := api.NewServer(st, msgService, sched, catalog.Default(), time.Now)
	slog.Info("Bootstrapping CarePath", "db_driver", *dbDriver, "addr", *apiAddr)
	if err := server.Run(*apiAddr, *evalSchedule); err != nil {
		slog.Error("CarePath failed to run", "error", err)
		os.Exit(1)
	}
}

// initializeLogger sets up structured logging on stdout.
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("CAREPATH_DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and a .env file.
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	return Config{
		DBDriver:     util.EnvWithDefault("CAREPATH_DB_DRIVER", "sqlite3"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		StateDir:     util.EnvWithDefault("CAREPATH_STATE_DIR", DefaultStateDir),
		APIAddr:      util.EnvWithDefault("API_ADDR", api.DefaultAddr),
		EvalSchedule: util.EnvWithDefault("EVAL_SCHEDULE", api.DefaultEvalSchedule),
	}
}

// buildStore selects the persistence backend from configuration.
func buildStore(driver, dsn, stateDir string) (store.Store, error) {
	switch driver {
	case "postgres":
		return store.NewPostgresStore(store.WithDSN(dsn))
	case "memory":
		slog.Warn("Using in-memory store; state will not survive restarts")
		return store.NewInMemoryStore(), nil
	default:
		if dsn == "" {
			dsn = filepath.Join(stateDir, DefaultDBFileName)
		}
		return store.NewSQLiteStore(store.WithDSN(dsn))
	}
}

// buildMessagingService returns the Twilio SMS service when credentials are
// configured, and a log-only stand-in otherwise.
func buildMessagingService() messaging.Service {
	if os.Getenv("TWILIO_ACCOUNT_SID") == "" {
		slog.Info("No Twilio credentials configured; caregiver alerts will be logged only")
		return messaging.NewLogService()
	}
	svc, err := messaging.NewTwilioService()
	if err != nil {
		slog.Error("Failed to initialize Twilio service, falling back to log-only delivery", "error", err)
		return messaging.NewLogService()
	}
	return svc
}
