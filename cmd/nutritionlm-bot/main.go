package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"github.com/Chloelee05/NutritionLM-bot/internal/blob"
	"github.com/Chloelee05/NutritionLM-bot/internal/bot"
	"github.com/Chloelee05/NutritionLM-bot/internal/linking"
	"github.com/Chloelee05/NutritionLM-bot/internal/lockfile"
	"github.com/Chloelee05/NutritionLM-bot/internal/nutrition"
	"github.com/Chloelee05/NutritionLM-bot/internal/pipeline"
	"github.com/Chloelee05/NutritionLM-bot/internal/session"
	"github.com/Chloelee05/NutritionLM-bot/internal/store"
	"github.com/Chloelee05/NutritionLM-bot/internal/util"
	"github.com/Chloelee05/NutritionLM-bot/internal/vision"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for bot state data
	DefaultStateDir = "/var/lib/nutritionlm"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "nutritionlm.db"
	// DefaultListenAddr is the default webhook listen address
	DefaultListenAddr = ":10000"
	// DefaultStorageBucket is the default object-storage bucket for photos
	DefaultStorageBucket = "meal-photos"
)

// Config holds environment configuration
type Config struct {
	BotToken      string
	WebhookURL    string
	ListenAddr    string
	DBDriver      string
	DBDSN         string
	StateDir      string
	StorageURL    string
	StorageBucket string
	StorageAPIKey string
	VisionURL     string
	NutritionURL  string
}

func main() {
	config := loadEnvironmentConfig()
	initializeLogger(util.ParseBoolEnv("NUTRITIONLM_DEBUG", false))
	parseCommandLineFlags(&config)

	if config.BotToken == "" {
		slog.Error("BOT_TOKEN not set")
		os.Exit(1)
	}

	// The SQLite backend keeps its database inside the state directory, so
	// only one bot process may use it at a time.
	if config.DBDriver != "postgres" {
		lock, err := lockfile.Acquire(config.StateDir)
		if err != nil {
			slog.Error("Failed to lock state directory", "error", err, "state_dir", config.StateDir)
			os.Exit(1)
		}
		defer lock.Release()
	}

	st, err := buildStore(config)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	blobClient, err := blob.NewClient(
		blob.WithBaseURL(config.StorageURL),
		blob.WithBucket(config.StorageBucket),
		blob.WithAPIKey(config.StorageAPIKey),
	)
	if err != nil {
		slog.Error("Failed to initialize storage client", "error", err)
		os.Exit(1)
	}

	visionClient, err := vision.NewClient(vision.WithBaseURL(config.VisionURL))
	if err != nil {
		slog.Error("Failed to initialize vision client", "error", err)
		os.Exit(1)
	}

	nutritionClient, err := nutrition.NewClient(nutrition.WithBaseURL(config.NutritionURL))
	if err != nil {
		slog.Error("Failed to initialize nutrition client", "error", err)
		os.Exit(1)
	}

	api, err := tgbotapi.NewBotAPI(config.BotToken)
	if err != nil {
		slog.Error("Failed to create Telegram bot API client", "error", err)
		os.Exit(1)
	}
	slog.Info("Authorized on Telegram", "username", api.Self.UserName)

	b := bot.New(
		api,
		session.NewMemoryStore(),
		linking.NewService(st),
		pipeline.New(st, blobClient, visionClient, nutritionClient),
		st,
		bot.WithWebhookURL(config.WebhookURL),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Bootstrapping NutritionLM bot", "listen_addr", config.ListenAddr, "db_driver", config.DBDriver)
	if err := b.Serve(ctx, config.ListenAddr); err != nil {
		slog.Error("NutritionLM bot failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("NutritionLM bot exited successfully")
}

// initializeLogger sets up structured logging at info level, or debug when
// NUTRITIONLM_DEBUG is set.
func initializeLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		BotToken:      os.Getenv("BOT_TOKEN"),
		WebhookURL:    os.Getenv("WEBHOOK_URL"),
		ListenAddr:    os.Getenv("LISTEN_ADDR"),
		DBDriver:      os.Getenv("DB_DRIVER"),
		DBDSN:         os.Getenv("DB_DSN"),
		StateDir:      os.Getenv("NUTRITIONLM_STATE_DIR"),
		StorageURL:    os.Getenv("STORAGE_URL"),
		StorageBucket: os.Getenv("STORAGE_BUCKET"),
		StorageAPIKey: os.Getenv("STORAGE_API_KEY"),
		VisionURL:     os.Getenv("VISION_URL"),
		NutritionURL:  os.Getenv("NUTRITION_URL"),
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No NUTRITIONLM_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}
	if config.ListenAddr == "" {
		config.ListenAddr = DefaultListenAddr
	}
	if config.StorageBucket == "" {
		config.StorageBucket = DefaultStorageBucket
	}

	return config
}

// parseCommandLineFlags lets flags override environment configuration
func parseCommandLineFlags(config *Config) {
	flag.StringVar(&config.ListenAddr, "addr", config.ListenAddr, "webhook listen address")
	flag.StringVar(&config.DBDriver, "db-driver", config.DBDriver, "database driver (sqlite3 or postgres)")
	flag.StringVar(&config.DBDSN, "db-dsn", config.DBDSN, "database DSN")
	flag.StringVar(&config.WebhookURL, "webhook-url", config.WebhookURL, "public webhook base URL")
	flag.Parse()
}

// buildStore selects and constructs the store backend from configuration.
func buildStore(config Config) (store.Store, error) {
	dsn := config.DBDSN
	if config.DBDriver == "postgres" {
		return store.NewPostgresStore(store.WithDSN(dsn))
	}
	if dsn == "" {
		dsn = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No DB_DSN set, using default SQLite path", "dsn", dsn)
	}
	return store.NewSQLiteStore(store.WithDSN(dsn))
}
