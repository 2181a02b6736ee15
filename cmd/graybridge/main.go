// Gray Bridge - Automation Host Variable Bridge
//
// This is the main entry point for the Gray Bridge application.
// Gray Bridge projects an automation host's variable tree onto a
// flat, filterable directory and exposes a remote command endpoint
// for reading and writing individual variables:
//   - Variable directory listing with paging and filtering
//   - Token-guarded action dispatch (ping, list, get, set, devices)
//   - Device registry mapping variables onto controllable devices
//   - Optional MQTT state announcements and InfluxDB write history
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/nerrad567/gray-bridge/migrations"

	"github.com/nerrad567/gray-bridge/internal/api"
	"github.com/nerrad567/gray-bridge/internal/audit"
	"github.com/nerrad567/gray-bridge/internal/device"
	"github.com/nerrad567/gray-bridge/internal/infrastructure/config"
	"github.com/nerrad567/gray-bridge/internal/infrastructure/database"
	"github.com/nerrad567/gray-bridge/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-bridge/internal/infrastructure/logging"
	"github.com/nerrad567/gray-bridge/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-bridge/internal/objectstore"
	"github.com/nerrad567/gray-bridge/internal/objectstore/symcon"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// startupPingTimeout bounds the initial automation host reachability probe.
const startupPingTimeout = 5 * time.Second

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Gray Bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Repositories backed by SQLite
	deviceRepo := device.NewSQLiteRepository(db.DB)
	auditRepo := audit.NewSQLiteRepository(db.DB)

	// Object store: live automation host, or a seeded in-memory tree
	// when dev mode is enabled.
	store, err := buildStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("connecting to automation host: %w", err)
	}

	// Device registry projects registry entries onto live variable state
	deviceRegistry := device.NewRegistry(deviceRepo, store)

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		// Set up MQTT logging callbacks
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
	} else {
		log.Info("MQTT disabled, state announcements off")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		// Set up InfluxDB error callback
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled, write history off")
	}

	// Start the API server (dispatcher + registry REST)
	server, err := api.New(api.Deps{
		Config:    cfg,
		Logger:    log,
		Store:     store,
		Registry:  deviceRegistry,
		Repo:      deviceRepo,
		AuditRepo: auditRepo,
		MQTT:      mqttClient,
		Influx:    influxClient,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()
	log.Info("API server started",
		"addr", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
		"hook", cfg.HookRoute(),
	)

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT (if enabled)
	// 4. Database

	log.Info("Gray Bridge stopped")
	return nil
}

// buildStore selects the object store implementation.
//
// In dev mode the bridge serves a seeded in-memory tree so the API can
// be exercised without a host. Otherwise it connects to the automation
// host's JSON-RPC API and probes reachability once at startup. An
// unreachable host is logged rather than fatal: the host may restart
// independently of the bridge, and every call carries its own timeout.
//
// Parameters:
//   - ctx: Context for the startup reachability probe
//   - cfg: Application configuration
//   - log: Logger instance
//
// Returns:
//   - objectstore.Store: Selected store implementation
//   - error: If the host configuration is unusable
func buildStore(ctx context.Context, cfg *config.Config, log *logging.Logger) (objectstore.Store, error) {
	if cfg.Bridge.DevMode {
		log.Warn("dev mode enabled, serving seeded in-memory object tree")
		return objectstore.NewDemo(), nil
	}

	client := symcon.New(symcon.Config{
		URL:      cfg.Host.URL,
		Username: cfg.Host.Username,
		Password: cfg.Host.Password,
		Timeout:  cfg.HostTimeout(),
	})

	pingCtx, cancel := context.WithTimeout(ctx, startupPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		log.Warn("automation host unreachable at startup, continuing",
			"url", cfg.Host.URL,
			"error", err,
		)
	} else {
		log.Info("automation host reachable", "url", cfg.Host.URL)
	}

	return client, nil
}

// getConfigPath returns the configuration file path.
// Uses GRAYBRIDGE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRAYBRIDGE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check (may be nil if disabled)
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	// Check database
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	// Check MQTT (if enabled)
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	// Check InfluxDB (if enabled)
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	// The automation host is probed at startup and per-call; an
	// unreachable host degrades reads and writes but not the API.

	return nil
}
