package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	audithandler "deedgate/internal/audit"
	"deedgate/internal/catalog"
	cataloghandler "deedgate/internal/catalog/handler"
	"deedgate/internal/documents"
	"deedgate/internal/documents/archive"
	documentshandler "deedgate/internal/documents/handler"
	jwttoken "deedgate/internal/jwt_token"
	"deedgate/internal/ledger"
	"deedgate/internal/platform/config"
	"deedgate/internal/platform/database"
	"deedgate/internal/platform/health"
	"deedgate/internal/platform/kafka/auditsink"
	"deedgate/internal/platform/kafka/producer"
	"deedgate/internal/platform/logger"
	"deedgate/internal/platform/redis"
	"deedgate/internal/purchases"
	purchaseshandler "deedgate/internal/purchases/handler"
	ratelimit "deedgate/internal/ratelimit/middleware"
	ratelimitmodels "deedgate/internal/ratelimit/models"
	"deedgate/internal/ratelimit/store/bucket"
	listingstore "deedgate/internal/records/store/listing"
	purchasestore "deedgate/internal/records/store/purchase"
	registrystore "deedgate/internal/records/store/registry"
	"deedgate/internal/registration"
	registrationhandler "deedgate/internal/registration/handler"
	"deedgate/internal/seeder"
	httptransport "deedgate/internal/transport/http"
	"deedgate/internal/verification"
	verificationhandler "deedgate/internal/verification/handler"
	verificationmetrics "deedgate/internal/verification/metrics"
	"deedgate/internal/verification/ports"
	"deedgate/pkg/domain"
	audit "deedgate/pkg/platform/audit"
	auditmetrics "deedgate/pkg/platform/audit/metrics"
	"deedgate/pkg/platform/audit/publisher"
	auditmemory "deedgate/pkg/platform/audit/store/memory"
	auditpostgres "deedgate/pkg/platform/audit/store/postgres"
	"deedgate/pkg/platform/circuit"
	"deedgate/pkg/platform/middleware/admin"
	"deedgate/pkg/platform/middleware/request"
	"deedgate/pkg/platform/tracer"
)

// devRegistrar signs the in-memory ledger's listings.
const devRegistrar = "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"

const auditBuffer = 256

func newServeCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cc.config()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger.New(cfg.LogLevel))
		},
	}
}

// app owns every long-lived dependency so shutdown can release them in reverse order.
type app struct {
	handler http.Handler
	closers []func()
}

func (a *app) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	log.Info("initializing deedgate",
		"addr", cfg.Server.Addr,
		"environment", cfg.Server.Environment,
		"ledger_driver", cfg.Ledger.Driver,
		"storage_driver", cfg.Storage.Driver,
		"postgres", cfg.Database.URL != "",
		"redis", cfg.Redis.URL != "",
		"kafka", len(cfg.Kafka.Brokers) > 0,
	)

	a, err := build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting http server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// build wires stores, ledger, audit sink and services from cfg. Backends without
// configuration fall back to their in-memory versions.
func build(ctx context.Context, cfg *config.Config, log *slog.Logger) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	trace := tracer.NewOTel()
	probes := health.New(cfg.Server.Environment)

	pool, err := database.New(ctx, database.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	var (
		registry registration.Registry
		listings listingStore
		bought   purchases.Store
	)
	if pool != nil {
		a.onClose(func() { _ = pool.Close() })
		if err := pool.RegisterMetrics(reg); err != nil {
			return nil, err
		}
		probes.RegisterCheck("postgres", pool.Health)
		registry = registrystore.NewPostgres(pool.DB())
		listings = listingstore.NewPostgres(pool.DB())
		bought = purchasestore.NewPostgres(pool.DB())
	} else {
		registry = registrystore.NewInMemory()
		listings = listingstore.NewInMemory()
		bought = purchasestore.NewInMemory()
	}

	auditor, trail, err := buildAudit(cfg, log, reg, pool, probes, a)
	if err != nil {
		return nil, err
	}

	cache, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		a.onClose(func() { _ = cache.Close() })
		if err := cache.RegisterMetrics(reg); err != nil {
			return nil, err
		}
		probes.RegisterCheck("redis", cache.Health)
	}

	chain, memoryChain, err := buildLedger(ctx, cfg, log, reg, trace, probes, cache, a)
	if err != nil {
		return nil, err
	}

	deeds, err := buildArchive(ctx, cfg, log, probes)
	if err != nil {
		return nil, err
	}

	price, err := cfg.PriceWei()
	if err != nil {
		return nil, err
	}

	verifier := verification.New(chain, registry, listings,
		verification.WithLogger(log),
		verification.WithMetrics(verificationmetrics.New(reg)),
		verification.WithTracer(trace),
		verification.WithAuditLogger(auditor),
	)
	registrar := registration.New(chain, registry, deeds,
		registration.WithLogger(log),
		registration.WithMetrics(registration.NewMetrics(reg)),
		registration.WithTracer(trace),
		registration.WithAuditLogger(auditor),
		registration.WithPriceWei(price),
	)
	comparer := documents.New(chain, deeds,
		documents.WithLogger(log),
		documents.WithTracer(trace),
	)
	listingCatalog := catalog.New(chain, listings,
		catalog.WithLogger(log),
		catalog.WithMetrics(catalog.NewMetrics(reg)),
	)
	buyers := purchases.New(chain, listings, bought,
		purchases.WithLogger(log),
		purchases.WithAuditLogger(auditor),
	)

	if cfg.Seed {
		var sales seeder.SaleMarker
		if memoryChain != nil {
			sales = memoryChain
		}
		seed, err := seeder.New(registrar, verifier, sales, log)
		if err != nil {
			return nil, err
		}
		if _, err := seed.SeedAll(ctx); err != nil {
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
	}

	trusted, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		return nil, err
	}
	tokens := jwttoken.NewJWTService(cfg.Auth.SigningKey, cfg.Auth.Issuer, cfg.Auth.Audience, cfg.Auth.TokenTTL)
	admins := admin.NewAllowlist(cfg.Auth.AdminEmails)
	if admins.Len() == 0 {
		log.Warn("no admin emails configured; registration is disabled")
	}

	maxUpload := cfg.Server.MaxUploadBytes
	a.handler = httptransport.NewRouter(httptransport.Handlers{
		Verification: verificationhandler.New(verifier, log, maxUpload),
		Registration: registrationhandler.New(registrar, log, maxUpload),
		Documents:    documentshandler.New(comparer, log, maxUpload),
		Catalog:      cataloghandler.New(listingCatalog, log),
		Purchases:    purchaseshandler.New(buyers, log),
		Health:       probes,
		Audit:        audithandler.New(trail, log),
		Metrics:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	}, httptransport.Config{
		Tokens:         jwttoken.NewJWTServiceAdapter(tokens),
		Admins:         admins,
		TrustedProxies: trusted,
		RequestTimeout: cfg.Server.RequestTimeout,
		Latency:        request.NewMetrics(reg),
		RateLimit:      buildRateLimit(cfg, log, reg, cache, a),
	}, log)
	return a, nil
}

// listingStore is the union of the listing ports used by verification, the catalogue
// and purchases.
type listingStore interface {
	ports.ListingStore
	catalog.Store
	purchases.Listings
}

// buildAudit keeps the queryable trail in Postgres (or memory without a database)
// and mirrors every event to Kafka when brokers are configured.
func buildAudit(
	cfg *config.Config,
	log *slog.Logger,
	reg prometheus.Registerer,
	pool *database.Pool,
	probes *health.Handler,
	a *app,
) (*audit.Logger, audithandler.Reader, error) {
	var trail interface {
		audit.Store
		audithandler.Reader
	}
	if pool != nil {
		trail = auditpostgres.New(pool.DB())
	} else {
		trail = auditmemory.NewInMemoryStore()
	}
	var store audit.Store = trail

	if len(cfg.Kafka.Brokers) > 0 {
		p, err := producer.New(producer.Config{
			Brokers:         cfg.Kafka.Brokers,
			ClientID:        "deedgate",
			Acks:            cfg.Kafka.Acks,
			Retries:         3,
			DeliveryTimeout: 10 * time.Second,
		}, log)
		if err != nil {
			return nil, nil, err
		}
		a.onClose(func() { _ = p.Close() })
		probes.RegisterCheck("kafka", func(ctx context.Context) error {
			if !p.Healthy(ctx) {
				return errors.New("brokers unreachable")
			}
			return nil
		})
		store = audit.Fanout{trail, auditsink.New(p, cfg.Kafka.Topic)}
	}

	pub := publisher.NewPublisher(store,
		publisher.WithAsyncBuffer(auditBuffer),
		publisher.WithPublisherLogger(log),
		publisher.WithMetrics(auditmetrics.New(reg)),
	)
	a.onClose(pub.Close)
	return audit.NewLogger(log, pub), trail, nil
}

// buildRateLimit shares counters through Redis when available.
func buildRateLimit(cfg *config.Config, log *slog.Logger, reg prometheus.Registerer, cache *redis.Client, a *app) *ratelimit.Middleware {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	var limiter ratelimit.Limiter
	if cache != nil {
		limiter = bucket.NewRedisBucketStore(cache.Client, "")
	} else {
		mem := bucket.NewInMemoryBucketStore()
		sweepCtx, cancel := context.WithCancel(context.Background())
		go mem.RunSweeper(sweepCtx, cfg.RateLimit.Window)
		a.onClose(cancel)
		limiter = mem
	}
	window := cfg.RateLimit.Window
	return ratelimit.New(limiter, map[ratelimitmodels.EndpointClass]ratelimitmodels.Limit{
		ratelimitmodels.ClassVerify:   {Requests: cfg.RateLimit.Verify, Window: window},
		ratelimitmodels.ClassRegister: {Requests: cfg.RateLimit.Register, Window: window},
		ratelimitmodels.ClassCompare:  {Requests: cfg.RateLimit.Compare, Window: window},
	}, log, ratelimit.WithMetrics(reg))
}

// buildLedger returns the decorated ledger and, for the memory driver, the raw
// memory ledger so the seeder can mark listings sold.
func buildLedger(
	ctx context.Context,
	cfg *config.Config,
	log *slog.Logger,
	reg prometheus.Registerer,
	trace tracer.Tracer,
	probes *health.Handler,
	cache *redis.Client,
	a *app,
) (ledger.Ledger, *ledger.Memory, error) {
	metrics := ledger.NewMetrics(reg)

	var (
		base   ledger.Ledger
		memory *ledger.Memory
	)
	switch cfg.Ledger.Driver {
	case config.LedgerDriverEthereum:
		eth, err := ledger.DialEthereum(ctx, ledger.EthereumConfig{
			RPCURL:          cfg.Ledger.RPCURL,
			ContractAddress: cfg.Ledger.ContractAddress,
			PrivateKey:      cfg.Ledger.PrivateKey,
			ChainID:         cfg.Ledger.ChainID,
			CallTimeout:     cfg.Ledger.CallTimeout,
			TxTimeout:       cfg.Ledger.TxTimeout,
		},
			ledger.WithEthereumMetrics(metrics),
			ledger.WithEthereumTracer(trace),
			ledger.WithEthereumLogger(log),
		)
		if err != nil {
			return nil, nil, err
		}
		a.onClose(eth.Close)
		probes.RegisterCheck("ledger", eth.Health)
		if eth.Signer().IsZero() {
			log.Warn("ledger private key not set; registration will fail", "contract", cfg.Ledger.ContractAddress)
		}
		base = eth
	default:
		owner, err := domain.ParseWalletAddress(devRegistrar)
		if err != nil {
			return nil, nil, err
		}
		memory = ledger.NewMemory(owner)
		base = memory
	}

	breaker := circuit.New("ledger",
		circuit.WithFailureThreshold(cfg.Ledger.BreakerFailures),
		circuit.WithSuccessThreshold(cfg.Ledger.BreakerSuccesses),
		circuit.WithCooldown(cfg.Ledger.BreakerCooldown),
	)
	var l ledger.Ledger = ledger.NewGuarded(base, breaker,
		ledger.WithGuardMetrics(metrics),
		ledger.WithGuardLogger(log),
	)

	if cache != nil {
		l = ledger.NewCached(l, ledger.NewRedisCache(cache.Client, "", cfg.Redis.LedgerTTL),
			ledger.WithCacheMetrics(metrics),
			ledger.WithCacheLogger(log),
		)
	}
	return l, memory, nil
}

func buildArchive(ctx context.Context, cfg *config.Config, log *slog.Logger, probes *health.Handler) (archive.Archive, error) {
	if cfg.Storage.Driver != config.StorageDriverMinIO {
		return archive.NewInMemory(), nil
	}
	m, err := archive.NewMinIO(ctx, archive.MinIOConfig{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		UseSSL:    cfg.Storage.UseSSL,
	}, log)
	if err != nil {
		return nil, err
	}
	probes.RegisterCheck("storage", m.Health)
	return m, nil
}
