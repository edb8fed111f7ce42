package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	alertapp "github.com/bizdesk/backend/internal/application/alert"
	auditapp "github.com/bizdesk/backend/internal/application/audit"
	backupapp "github.com/bizdesk/backend/internal/application/backup"
	billingapp "github.com/bizdesk/backend/internal/application/billing"
	cashapp "github.com/bizdesk/backend/internal/application/cash"
	catalogapp "github.com/bizdesk/backend/internal/application/catalog"
	exportapp "github.com/bizdesk/backend/internal/application/export"
	forecastapp "github.com/bizdesk/backend/internal/application/forecast"
	identityapp "github.com/bizdesk/backend/internal/application/identity"
	inventoryapp "github.com/bizdesk/backend/internal/application/inventory"
	marketapp "github.com/bizdesk/backend/internal/application/market"
	notificationapp "github.com/bizdesk/backend/internal/application/notification"
	partnerapp "github.com/bizdesk/backend/internal/application/partner"
	presenceapp "github.com/bizdesk/backend/internal/application/presence"
	purchaseapp "github.com/bizdesk/backend/internal/application/purchase"
	reportapp "github.com/bizdesk/backend/internal/application/report"
	settingsapp "github.com/bizdesk/backend/internal/application/settings"
	subscriptionapp "github.com/bizdesk/backend/internal/application/subscription"
	taxapp "github.com/bizdesk/backend/internal/application/tax"
	"github.com/bizdesk/backend/internal/domain/alert"
	"github.com/bizdesk/backend/internal/infrastructure/auth"
	"github.com/bizdesk/backend/internal/infrastructure/cache"
	"github.com/bizdesk/backend/internal/infrastructure/config"
	"github.com/bizdesk/backend/internal/infrastructure/event"
	"github.com/bizdesk/backend/internal/infrastructure/llm"
	"github.com/bizdesk/backend/internal/infrastructure/logger"
	"github.com/bizdesk/backend/internal/infrastructure/mail"
	"github.com/bizdesk/backend/internal/infrastructure/messaging"
	"github.com/bizdesk/backend/internal/infrastructure/metrics"
	"github.com/bizdesk/backend/internal/infrastructure/migration"
	"github.com/bizdesk/backend/internal/infrastructure/persistence"
	"github.com/bizdesk/backend/internal/infrastructure/printing"
	"github.com/bizdesk/backend/internal/infrastructure/realtime"
	"github.com/bizdesk/backend/internal/infrastructure/scheduler"
	"github.com/bizdesk/backend/internal/infrastructure/storage"
	"github.com/bizdesk/backend/internal/infrastructure/telemetry"
	"github.com/bizdesk/backend/internal/interfaces/http/handler"
	"github.com/bizdesk/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// app owns every long-lived component of the server
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	engine *gin.Engine

	db        *persistence.Database
	stores    *cache.Stores
	tracer    *telemetry.TracerProvider
	profiler  *telemetry.Profiler
	bus       *event.Bus
	hub       *realtime.Hub
	scheduler *scheduler.Scheduler
	kafka     *messaging.KafkaPublisher
	renderer  *printing.ChromedpRenderer

	jwt       *auth.JWTService
	blacklist auth.TokenBlacklist
	tenants   scheduler.TenantProvider
}

// services are the application layer, built once and shared by the HTTP
// handlers and the scheduled jobs
type services struct {
	auth         *identityapp.AuthService
	users        *identityapp.UserService
	settings     *settingsapp.Service
	clients      *partnerapp.ClientService
	vendors      *partnerapp.VendorService
	products     *catalogapp.ProductService
	stock        *inventoryapp.StockService
	invoices     *billingapp.InvoiceService
	quotes       *billingapp.QuoteService
	reminders    *billingapp.ReminderService
	subscription *subscriptionapp.Service
	markets      *marketapp.Service
	expenses     *purchaseapp.ExpenseService
	tax          *taxapp.Service
	registers    *cashapp.RegisterService
	audit        *auditapp.Service
	presence     *presenceapp.Service
	alerts       *alertapp.Service
	backup       *backupapp.Service
	reports      *reportapp.ReportService
	forecast     *forecastapp.Service
	notification *notificationapp.Service
	export       *exportapp.Service
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}
	if err := a.init(ctx); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) init(ctx context.Context) error {
	cfg, log := a.cfg, a.log

	var err error
	a.tracer, err = telemetry.NewTracerProvider(ctx, cfg.Telemetry, version, log)
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	a.profiler, err = telemetry.NewProfiler(cfg.Telemetry, log)
	if err != nil {
		return fmt.Errorf("profiler: %w", err)
	}
	if a.profiler.IsEnabled() && a.tracer.IsEnabled() {
		if err := a.tracer.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to link spans to profiles", zap.Error(err))
		}
	}

	if cfg.Database.AutoMigrate {
		if err := migrate(cfg, log); err != nil {
			return err
		}
	}

	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	a.db, err = persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		return err
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.NewDBTracingPlugin(cfg.Telemetry, log).Register(a.db.DB); err != nil {
			return fmt.Errorf("db tracing: %w", err)
		}
	}
	log.Info("Database connected successfully")

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	a.stores = cache.NewStores(redisClient, log)

	m := metrics.New()
	a.bus = event.NewBus(log)
	a.hub = realtime.NewHub(cfg.Realtime, log, realtime.WithConnectionObserver(m.ConnectionOpened, m.ConnectionClosed))

	svc, err := a.buildServices(ctx, m)
	if err != nil {
		return err
	}
	if err := a.subscribe(svc, m); err != nil {
		return err
	}

	schedOpts := []scheduler.Option{scheduler.WithObserver(m.ObserveJob)}
	if cfg.Scheduler.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
		if err != nil {
			return fmt.Errorf("scheduler timezone: %w", err)
		}
		schedOpts = append(schedOpts, scheduler.WithLocation(loc))
	}
	a.scheduler = scheduler.NewScheduler(cfg.Scheduler, log, schedOpts...)
	if cfg.Scheduler.Enabled {
		if err := a.registerJobs(svc, m); err != nil {
			return err
		}
	}

	a.engine = a.newEngine(svc, m)
	return nil
}

func migrate(cfg *config.Config, log *zap.Logger) error {
	m, err := migration.NewFromURL(cfg.Database.DSN(), "", log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Closing migrator", zap.Error(err))
		}
	}()
	if err := m.Up(); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func (a *app) buildServices(ctx context.Context, m *metrics.Metrics) (*services, error) {
	cfg, log, db := a.cfg, a.log, a.db.DB

	userRepo := persistence.NewGormUserRepository(db)
	tenantRepo := persistence.NewGormTenantRepository(db)
	settingsRepo := persistence.NewGormSettingsRepository(db)
	clientRepo := persistence.NewGormClientRepository(db)
	vendorRepo := persistence.NewGormVendorRepository(db)
	productRepo := persistence.NewGormProductRepository(db)
	stockRepo := persistence.NewGormStockRepository(db)
	invoiceRepo := persistence.NewGormInvoiceRepository(db)
	quoteRepo := persistence.NewGormQuoteRepository(db)
	reminderRepo := persistence.NewGormReminderRepository(db)
	sequence := persistence.NewGormNumberSequence(db)
	subscriptionRepo := persistence.NewGormSubscriptionRepository(db)
	marketRepo := persistence.NewGormMarketRepository(db)
	expenseRepo := persistence.NewGormExpenseRepository(db)
	taxRepo := persistence.NewGormTaxDeclarationRepository(db)
	registerRepo := persistence.NewGormCashRegisterRepository(db)
	auditRepo := persistence.NewGormAuditLogRepository(db)
	backupRepo := persistence.NewGormBackupRepository(db)
	reportReader := persistence.NewGormReportReader(db)

	var blacklist auth.TokenBlacklist = auth.NewMemoryTokenBlacklist()
	if a.stores.Client != nil {
		blacklist = auth.NewRedisTokenBlacklist(a.stores.Client)
	}

	var store storage.ObjectStore = storage.NewMemoryObjectStore()
	if cfg.Storage.Bucket != "" {
		s3, err := storage.NewS3ObjectStore(ctx, cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("object storage: %w", err)
		}
		if cfg.Storage.CreateBucket {
			if err := s3.EnsureBucket(ctx); err != nil {
				return nil, fmt.Errorf("object storage: %w", err)
			}
		}
		store = s3
	} else {
		log.Warn("Object storage not configured, backups and PDFs are kept in memory")
	}

	mailer := mail.Observe(mail.NewMailer(cfg.Mail, log), m.EmailSent)

	var llmClient llm.Client
	switch client, err := llm.NewClient(ctx, cfg.LLM, log); {
	case errors.Is(err, llm.ErrDisabled):
		log.Info("LLM forecasting disabled, using the baseline trend")
	case err != nil:
		log.Warn("LLM client unavailable, using the baseline trend", zap.Error(err))
	default:
		llmClient = client
	}

	s := &services{}
	var err error
	s.audit = auditapp.NewService(auditRepo, log)
	s.notification, err = notificationapp.NewService(mailer, clientRepo, userRepo, settingsRepo, log)
	if err != nil {
		return nil, fmt.Errorf("notification templates: %w", err)
	}

	jwtService := auth.NewJWTService(cfg.JWT)
	s.auth = identityapp.NewAuthService(userRepo, tenantRepo, settingsRepo, jwtService, blacklist, s.audit, a.bus,
		identityapp.AuthServiceConfig{MaxLoginAttempts: cfg.JWT.MaxLoginAttempts, LockDuration: cfg.JWT.LockDuration}, log)
	s.users = identityapp.NewUserService(userRepo, blacklist, cfg.JWT.RefreshTokenExpiration, a.bus, log)
	s.settings = settingsapp.NewService(settingsRepo, a.bus)

	s.clients = partnerapp.NewClientService(clientRepo, invoiceRepo, a.bus)
	s.vendors = partnerapp.NewVendorService(vendorRepo, a.bus)
	s.products = catalogapp.NewProductService(productRepo, vendorRepo, settingsRepo, a.bus)
	s.stock = inventoryapp.NewStockService(stockRepo, productRepo, a.bus, log)
	s.markets = marketapp.NewService(marketRepo, clientRepo, a.bus)
	s.expenses = purchaseapp.NewExpenseService(expenseRepo, vendorRepo, settingsRepo, a.bus)
	s.registers = cashapp.NewRegisterService(registerRepo, a.bus, log)

	invoiceOpts := []billingapp.InvoiceOption{
		billingapp.WithCashRecorder(s.registers),
		billingapp.WithTransactionScope(persistence.NewGormTransactionScope(db)),
		billingapp.WithNotifier(s.notification),
		billingapp.WithMetrics(m),
	}
	if !cfg.Printing.Disabled {
		templates, err := printing.NewTemplateEngine()
		if err != nil {
			return nil, fmt.Errorf("document templates: %w", err)
		}
		a.renderer = printing.NewChromedpRenderer(cfg.Printing, log)
		s.export = exportapp.NewService(invoiceRepo, quoteRepo, clientRepo, settingsRepo,
			templates, a.renderer, store, cfg.Storage.PresignExpiry, log)
		invoiceOpts = append(invoiceOpts, billingapp.WithDocumentLinker(s.export))
	}
	s.invoices = billingapp.NewInvoiceService(invoiceRepo, clientRepo, productRepo, marketRepo, settingsRepo,
		sequence, a.bus, log, invoiceOpts...)
	s.quotes = billingapp.NewQuoteService(quoteRepo, s.invoices, productRepo, settingsRepo, sequence, a.bus, log)
	s.reminders = billingapp.NewReminderService(reminderRepo, invoiceRepo, s.notification, a.bus, log)
	s.subscription = subscriptionapp.NewService(subscriptionRepo, s.invoices, a.stores.Idempotency, a.bus, log)
	s.tax = taxapp.NewService(taxRepo, invoiceRepo, expenseRepo, a.bus, log)

	s.presence = presenceapp.NewService(a.stores.Presence, userRepo, a.hub, cfg.Presence.TTL, log)
	s.alerts = alertapp.NewService(alert.NewDetector(alert.Config{
		Window:    cfg.Alert.Window,
		Threshold: cfg.Alert.Threshold,
		Cooldown:  cfg.Alert.Cooldown,
	}), s.audit, a.hub, s.notification, log)

	s.backup = backupapp.NewService(backupRepo, persistence.NewGormSnapshotExporter(db), store,
		a.stores.Idempotency, a.bus, log)
	s.reports = reportapp.NewReportService(reportReader, subscriptionRepo, stockRepo, registerRepo)
	s.forecast = forecastapp.NewService(reportReader, llmClient, log, forecastapp.WithSourceObserver(m.ForecastServed))

	a.tenants = scheduler.TenantProviderFunc(func(ctx context.Context) ([]uuid.UUID, error) {
		tenants, err := tenantRepo.FindAllActive(ctx)
		if err != nil {
			return nil, err
		}
		ids := make([]uuid.UUID, len(tenants))
		for i := range tenants {
			ids[i] = tenants[i].ID
		}
		return ids, nil
	})
	a.jwt = jwtService
	a.blacklist = blacklist
	return s, nil
}

// subscribe wires the cross-context event handlers. Audit and stock run
// inside the publishing request; the rest go to the worker pool.
func (a *app) subscribe(s *services, m *metrics.Metrics) error {
	a.bus.Subscribe(s.audit)
	a.bus.Subscribe(inventoryapp.NewInvoiceStockHandler(s.stock, a.log))
	a.bus.SubscribeAsync(realtime.NewChangeForwarder(a.hub))
	a.bus.SubscribeAsync(m.Events())

	if a.cfg.Kafka.Enabled {
		kafka, err := messaging.NewKafkaPublisher(a.cfg.Kafka, a.log)
		if err != nil {
			return fmt.Errorf("kafka: %w", err)
		}
		a.kafka = kafka
		a.bus.SubscribeAsync(kafka)
		a.log.Info("Publishing domain events to Kafka", zap.Strings("brokers", a.cfg.Kafka.Brokers))
	}
	return nil
}

func (a *app) start(ctx context.Context) error {
	if err := a.bus.Start(ctx); err != nil {
		return fmt.Errorf("event bus: %w", err)
	}
	if a.cfg.Scheduler.Enabled {
		if err := a.scheduler.Start(ctx); err != nil {
			return fmt.Errorf("scheduler: %w", err)
		}
	}
	return nil
}

// stop drains background work after the HTTP server stopped accepting
// requests
func (a *app) stop(ctx context.Context) {
	if err := a.scheduler.Stop(ctx); err != nil {
		a.log.Error("Error stopping scheduler", zap.Error(err))
	}
	if err := a.bus.Stop(ctx); err != nil {
		a.log.Error("Error stopping event bus", zap.Error(err))
	}
}

// close releases connections. It tolerates a partially built app.
func (a *app) close() {
	closeLogged := func(name string, fn func() error) {
		if err := fn(); err != nil {
			a.log.Error("Error closing "+name, zap.Error(err))
		}
	}
	if a.kafka != nil {
		closeLogged("kafka producer", a.kafka.Close)
	}
	if a.renderer != nil {
		closeLogged("pdf renderer", a.renderer.Close)
	}
	if a.stores != nil {
		closeLogged("stores", a.stores.Close)
	}
	if a.db != nil {
		closeLogged("database", a.db.Close)
	}
	if a.profiler != nil {
		closeLogged("profiler", a.profiler.Stop)
	}
	if a.tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracer.Shutdown(ctx); err != nil {
			a.log.Error("Error shutting down tracer", zap.Error(err))
		}
	}
}

func (a *app) handlers(s *services, authLimit gin.HandlerFunc) router.Handlers {
	// A typed nil would defeat the exporter check in the handlers
	var exporter handler.PDFExporter
	if s.export != nil {
		exporter = s.export
	}
	return router.Handlers{
		Auth:         handler.NewAuthHandler(s.auth),
		User:         handler.NewUserHandler(s.users),
		Settings:     handler.NewSettingsHandler(s.settings),
		Client:       handler.NewClientHandler(s.clients),
		Vendor:       handler.NewVendorHandler(s.vendors),
		Product:      handler.NewProductHandler(s.products),
		Stock:        handler.NewStockHandler(s.stock),
		Invoice:      handler.NewInvoiceHandler(s.invoices, exporter),
		Quote:        handler.NewQuoteHandler(s.quotes, exporter),
		Reminder:     handler.NewReminderHandler(s.reminders),
		Subscription: handler.NewSubscriptionHandler(s.subscription),
		Market:       handler.NewMarketHandler(s.markets),
		Expense:      handler.NewExpenseHandler(s.expenses),
		Tax:          handler.NewTaxHandler(s.tax),
		CashRegister: handler.NewCashRegisterHandler(s.registers),
		Audit:        handler.NewAuditHandler(s.audit),
		Presence:     handler.NewPresenceHandler(s.presence, s.alerts),
		Backup:       handler.NewBackupHandler(s.backup),
		Report:       handler.NewReportHandler(s.reports, s.forecast),
		Notification: handler.NewNotificationHandler(s.notification),
		AuthLimit:    authLimit,
	}
}
