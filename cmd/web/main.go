package main

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"prizewheel/internal/config"
	"prizewheel/internal/handlers"
	"prizewheel/internal/ledger"
	"prizewheel/internal/location"
	"prizewheel/internal/logger/sl"
	"prizewheel/internal/persistence"
	"prizewheel/internal/visitor"
	"prizewheel/internal/wheel"
)

const (
	janitorEvery    = time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	_ = mime.AddExtensionType(".js", "application/javascript")
	_ = mime.AddExtensionType(".css", "text/css")

	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("failed to load config", sl.Err(err))
		os.Exit(1)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	prizeFile, err := config.LoadPrizes(cfg.PrizesFile)
	if err != nil {
		log.Error("failed to load prizes", slog.String("file", cfg.PrizesFile), sl.Err(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	wins, closeLedger, err := setupLedger(ctx, cfg, log)
	if err != nil {
		log.Error("failed to init ledger", sl.Err(err))
		os.Exit(1)
	}
	defer closeLedger()

	store, err := wheel.NewStore(prizeFile.WheelPrizes(), wheel.Options{
		Spin:           prizeFile.SpinOptions(cfg.SpinDuration),
		DefaultBlocked: prizeFile.DefaultBlocked,
		ResizeQuiet:    cfg.ResizeDebounce,
		Surfaces:       prizeFile.SurfacesOrDefault(),
	}, wins, log)
	if err != nil {
		log.Error("failed to build wheel store", sl.Err(err))
		os.Exit(1)
	}
	store.RunJanitor(ctx, janitorEvery, cfg.WidgetTTL)
	defer store.Shutdown()

	secret := cfg.VisitorSecret
	if secret == "" {
		secret = uuid.NewString() + uuid.NewString()
		log.Warn("VISITOR_SECRET not set, visitor cookies will not survive a restart")
	}
	signer := visitor.NewSigner(secret, visitor.DefaultTTL, cfg.SecureCookies)
	jar := persistence.NewJar(cfg.SecureCookies)

	httpClient := &http.Client{Timeout: cfg.LookupTimeout}
	locations := location.NewService(
		location.NewGeoClient(httpClient, cfg.GeoURL),
		location.NewIBGEClient(httpClient, cfg.IBGEURL),
		log,
	)

	allOrigins := slices.Contains(cfg.CORSOrigins, "*")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: !allOrigins,
		MaxAge:           60 * 15,
	}))

	staticFS, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		log.Error("failed to open static assets", sl.Err(err))
		os.Exit(1)
	}
	r.Mount("/static", http.StripPrefix("/static", http.FileServer(http.FS(staticFS))))

	homeHandler := handlers.NewHomeHandler(store, jar, log)
	wheelHandler := handlers.NewWheelHandler(store, jar, log)
	locationHandler := handlers.NewLocationHandler(locations, jar, cfg.LookupTimeout, log)

	r.Group(func(r chi.Router) {
		r.Use(signer.Middleware)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(15 * time.Second))
			homeHandler.RegisterRoutes(r)
			wheelHandler.RegisterRoutes(r)
			locationHandler.RegisterRoutes(r)
		})
		wheelHandler.RegisterStream(r)
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", sl.Err(err))
		}
	}()

	publicURL := cfg.BaseURL
	if publicURL == "" {
		publicURL = "http://localhost" + cfg.HTTPAddr
	}
	log.Info("listening", slog.String("addr", cfg.HTTPAddr), slog.String("url", publicURL))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server stopped", sl.Err(err))
		os.Exit(1)
	}
	log.Info("server stopped")
}

// setupLedger connects to Postgres when PG_DSN is set and falls back to the
// in-memory ledger otherwise.
func setupLedger(ctx context.Context, cfg config.Config, log *slog.Logger) (ledger.Ledger, func(), error) {
	if cfg.PGDSN == "" {
		log.Info("using in-memory win ledger")
		return ledger.NewMemory(), func() {}, nil
	}

	pool, err := ledger.Connect(ctx, cfg.PGDSN)
	if err != nil {
		return nil, nil, err
	}
	pg, err := ledger.NewPostgres(pool)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	if err := pg.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	log.Info("using postgres win ledger")
	return pg, pool.Close, nil
}

//go:embed static/*
var embeddedStatic embed.FS
