package factory

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/lib/pq"

	"contact-service/internal/client"
	"contact-service/internal/config"
	"contact-service/internal/model"
	"contact-service/internal/notifier"
	"contact-service/internal/ratelimit"
	"contact-service/internal/repository/jsonfile"
	"contact-service/internal/repository/postgres"
	"contact-service/internal/service"
	"contact-service/internal/tls"
	"contact-service/internal/util"
)

// Factory manages the lifecycle of all application dependencies
type Factory struct {
	config     *config.Config
	tlsManager *tls.Manager

	// Clients
	redisClient    *client.RedisClient
	kafkaPublisher *client.KafkaPublisher
	db             *sql.DB

	// Collaborators
	store        model.MessageStore
	ledger       model.RateLimitLedger
	memoryLedger *ratelimit.MemoryLedger

	contactService *service.ContactService

	closeOnce sync.Once
}

// NewFactory creates and initializes all application dependencies
func NewFactory() (*Factory, error) {
	cfg := config.LoadConfig()

	util.Init(cfg.Environment, cfg.Logging.Level, cfg.Logging.Format)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	f := &Factory{config: cfg}

	if cfg.Server.EnableTLS {
		f.tlsManager = tls.NewManager(cfg.Server, util.Get())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := f.initializeStore(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize message store: %w", err)
	}
	if err := f.initializeLedger(ctx); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to initialize rate-limit ledger: %w", err)
	}

	var mailer model.Notifier
	if cfg.NotifierEnabled() {
		mailer = notifier.NewSMTPNotifier(cfg.SMTP, util.Get())
		util.Info("SMTP notifier initialized",
			util.String("server", cfg.SMTP.Server),
			util.String("recipient", cfg.SMTP.Recipient),
		)
	} else {
		util.Warn("SMTP relay not configured - submissions will not be relayed by email")
	}

	// Kafka is optional: a missing broker degrades to no events, it
	// never blocks startup.
	var events model.EventPublisher
	if cfg.EventsEnabled() {
		if publisher, err := client.NewKafkaPublisher(cfg, util.Get()); err != nil {
			util.Warn("Kafka publisher initialization failed - proceeding without events", util.ErrorField(err))
		} else {
			f.kafkaPublisher = publisher
			events = publisher
		}
	}

	f.contactService = service.NewContactService(f.store, f.ledger, mailer, events, util.Get())

	util.Info("Factory initialized successfully",
		util.String("environment", cfg.Environment),
		util.String("storage_backend", cfg.Storage.Backend),
		util.String("ratelimit_backend", cfg.RateLimit.Backend),
		util.Bool("tls_enabled", cfg.Server.EnableTLS),
	)

	return f, nil
}

func (f *Factory) initializeStore(ctx context.Context) error {
	switch f.config.Storage.Backend {
	case config.StorageJSONFile:
		f.store = jsonfile.NewStore(f.config.Storage.JSONPath)
		util.Info("JSON file store initialized", util.String("path", f.config.Storage.JSONPath))
	case config.StoragePostgres:
		db, err := sql.Open("postgres", f.config.Storage.PostgresURL)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return fmt.Errorf("postgres health check: %w", err)
		}
		store := postgres.NewStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return err
		}
		f.db = db
		f.store = store
		util.Info("Postgres store initialized")
	default:
		return fmt.Errorf("unknown storage backend: %q", f.config.Storage.Backend)
	}
	return nil
}

func (f *Factory) initializeLedger(ctx context.Context) error {
	switch f.config.RateLimit.Backend {
	case config.RateLimitMemory:
		f.memoryLedger = ratelimit.NewMemoryLedger(f.config.RateLimit.Window, util.Get())
		f.ledger = f.memoryLedger
		util.Info("in-memory rate-limit ledger initialized",
			util.Duration("window", f.config.RateLimit.Window),
		)
	case config.RateLimitRedis:
		redisClient, err := client.NewRedisClient(f.config, util.Get())
		if err != nil {
			return err
		}
		if err := redisClient.HealthCheck(ctx); err != nil {
			redisClient.Close()
			return err
		}
		f.redisClient = redisClient
		f.ledger = ratelimit.NewRedisLedger(redisClient, f.config.RateLimit.Window)
		util.Info("Redis rate-limit ledger initialized",
			util.Duration("window", f.config.RateLimit.Window),
		)
	default:
		return fmt.Errorf("unknown rate-limit backend: %q", f.config.RateLimit.Backend)
	}
	return nil
}

// Config returns the loaded configuration.
func (f *Factory) Config() *config.Config { return f.config }

// ContactService returns the wired submission pipeline.
func (f *Factory) ContactService() *service.ContactService { return f.contactService }

// TLSManager returns the certificate manager, nil when TLS is disabled.
func (f *Factory) TLSManager() *tls.Manager { return f.tlsManager }

// MemoryLedger returns the in-memory ledger for the sweep loop, nil
// when the redis backend is active.
func (f *Factory) MemoryLedger() *ratelimit.MemoryLedger { return f.memoryLedger }

// Close releases every client the factory opened.
func (f *Factory) Close() {
	f.closeOnce.Do(func() {
		if f.kafkaPublisher != nil {
			_ = f.kafkaPublisher.Close()
		}
		if f.redisClient != nil {
			_ = f.redisClient.Close()
		}
		if f.db != nil {
			_ = f.db.Close()
		}
		util.Sync()
	})
}
