// rwanda-core serves the administrative hierarchy of Rwanda
// (province, district, sector, cell, village) over HTTP and MQTT.
//
// Configuration is read from configs/config.yaml, or the file named by
// RWANDA_CONFIG, with RWANDA_* environment overrides. A .env file in the
// working directory is loaded first when present.
//
// "rwanda-core migrate status|up|down" reports or changes the schema of the
// locations database named by database.path and exits.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nerrad567/rwanda"
	"github.com/nerrad567/rwanda/internal/api"
	"github.com/nerrad567/rwanda/internal/infrastructure/config"
	"github.com/nerrad567/rwanda/internal/infrastructure/database"
	"github.com/nerrad567/rwanda/internal/infrastructure/influxdb"
	"github.com/nerrad567/rwanda/internal/infrastructure/logging"
	"github.com/nerrad567/rwanda/internal/infrastructure/mqtt"
	"github.com/nerrad567/rwanda/internal/location"
	"github.com/nerrad567/rwanda/internal/metrics"
	"github.com/nerrad567/rwanda/internal/responder"
	"github.com/nerrad567/rwanda/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// embeddedSource names the built-in dataset in logs and /stats.
const embeddedSource = "embedded"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var err error
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		err = runMigrate(ctx, os.Args[2:], os.Stdout)
	} else {
		err = run(ctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and blocks until ctx is cancelled.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting rwanda-core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	if err := config.LoadEnvFiles(".env"); err != nil {
		return err
	}

	cfg, configPath, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded", "path", configPath)

	table, source, err := loadTable(cfg.Dataset)
	if err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}
	log.Info("dataset loaded",
		"source", source,
		"provinces", table.Count(rwanda.LevelProvince),
		"districts", table.Count(rwanda.LevelDistrict),
		"sectors", table.Count(rwanda.LevelSector),
		"cells", table.Count(rwanda.LevelCell),
		"villages", table.Count(rwanda.LevelVillage),
	)

	// Location store (optional)
	var db *database.DB
	var locationRepo location.Repository
	if cfg.Database.Enabled {
		db, locationRepo, err = openStore(ctx, cfg.Database, table, log)
		if err != nil {
			return err
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
	} else {
		log.Info("database disabled, serving code lookups from memory")
	}

	// InfluxDB (optional)
	var influxClient *influxdb.Client
	var sinks []metrics.Sink
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		influxClient.WritePoint("dataset",
			map[string]string{"source": source, "service": cfg.Service.ID},
			datasetFields(table))
		sinks = append(sinks, influxClient)
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder, err := metrics.New(reg, sinks...)
	if err != nil {
		return fmt.Errorf("creating metrics recorder: %w", err)
	}

	// MQTT responder (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT,
			mqtt.WithLogger(log),
			mqtt.OnConnect(func() { log.Info("MQTT connected") }),
			mqtt.OnConnectionLost(func(err error) { log.Warn("MQTT disconnected", "error", err) }),
		)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()

		resp := responder.New(table, recorder, log, mqttClient.QoS())
		if err := resp.Start(mqttClient); err != nil {
			return fmt.Errorf("starting MQTT responder: %w", err)
		}
		defer func() {
			if stopErr := resp.Stop(mqttClient); stopErr != nil {
				log.Warn("error stopping MQTT responder", "error", stopErr)
			}
		}()
		log.Info("MQTT responder started",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"topic", mqtt.Topics{}.AllRequests(),
		)
	} else {
		log.Info("MQTT disabled")
	}

	// HTTP API
	server, err := api.New(api.Deps{
		Config:        cfg.API,
		Logger:        log,
		Table:         table,
		LocationRepo:  locationRepo,
		Metrics:       recorder,
		Gatherer:      reg,
		DatasetSource: source,
		Version:       version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	// Deferred calls run in reverse order: API, responder, MQTT, InfluxDB, database.
	return nil
}

// loadConfig reads the file named by RWANDA_CONFIG, or the default path.
// A missing default file falls back to built-in defaults; a missing file
// named explicitly is an error.
func loadConfig() (*config.Config, string, error) {
	if path := os.Getenv("RWANDA_CONFIG"); path != "" {
		cfg, err := config.Load(path)
		return cfg, path, err
	}

	cfg, err := config.Load(defaultConfigPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = config.Default()
		return cfg, "(defaults)", err
	}
	return cfg, defaultConfigPath, err
}

// loadTable returns the dataset named in cfg, or the embedded one.
func loadTable(cfg config.DatasetConfig) (*rwanda.Table, string, error) {
	if cfg.Path == "" {
		return rwanda.Default(), embeddedSource, nil
	}
	t, err := rwanda.LoadFile(cfg.Path)
	if err != nil {
		return nil, "", err
	}
	return t, cfg.Path, nil
}

// openStore opens the database, applies migrations and seeds the locations
// table from t.
func openStore(ctx context.Context, cfg config.DatabaseConfig, t *rwanda.Table, log *logging.Logger) (*database.DB, location.Repository, error) {
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Path,
		WALMode:     cfg.WALMode,
		BusyTimeout: cfg.BusyTimeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	log.Info("database connected", "path", db.Path())

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		db.Close() //nolint:errcheck // already failing
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}

	repo := location.NewSQLiteRepository(db.DB)
	inserted, err := repo.Seed(ctx, t)
	if err != nil {
		db.Close() //nolint:errcheck // already failing
		return nil, nil, fmt.Errorf("seeding locations: %w", err)
	}
	log.Info("locations seeded", "inserted", inserted)

	return db, repo, nil
}

// datasetFields reports the per-level counts of t as InfluxDB fields.
func datasetFields(t *rwanda.Table) map[string]interface{} {
	fields := make(map[string]interface{}, len(rwanda.Levels))
	for _, l := range rwanda.Levels {
		fields[l.Plural()] = t.Count(l)
	}
	return fields
}

// healthCheck verifies the enabled infrastructure connections and the
// responder's request subscription. Nil components are skipped.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if db != nil {
		if err := db.HealthCheck(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
		if !mqttClient.HasSubscription(mqtt.Topics{}.AllRequests()) {
			return fmt.Errorf("mqtt: responder is not subscribed to %s", mqtt.Topics{}.AllRequests())
		}
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	return nil
}
