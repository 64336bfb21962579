package main

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alexedwards/scs/postgresstore"
	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/0xrinful/LibraryCatalog/internal/data"
	"github.com/0xrinful/LibraryCatalog/internal/jsonlog"
)

const version = "1.0.0"

type config struct {
	port int
	env  string
	db   struct {
		dsn          string
		maxOpenConns int
		maxIdleConns int
		maxIdleTime  time.Duration
	}
}

type application struct {
	config        config
	logger        *jsonlog.Logger
	models        data.Models
	session       *scs.SessionManager
	templateCache map[string]*template.Template
}

func main() {
	logger := jsonlog.New(os.Stdout, jsonlog.LevelInfo)

	if err := newRootCommand(logger).Execute(); err != nil {
		logger.PrintFatal(err, nil)
	}
}

func newRootCommand(logger *jsonlog.Logger) *cobra.Command {
	// A missing .env is fine; the environment and flags still apply.
	_ = godotenv.Load()

	var cfg config

	root := &cobra.Command{
		Use:           "library",
		Short:         "Library catalog: books, users and loans over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), cfg, logger)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.db.dsn, "db-dsn", os.Getenv("LIBRARY_DB_DSN"), "PostgreSQL DSN")
	flags.IntVar(&cfg.db.maxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flags.IntVar(&cfg.db.maxIdleConns, "db-max-idle-conns", 25, "PostgreSQL max idle connections")
	flags.DurationVar(&cfg.db.maxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max connection idle time")

	root.Flags().IntVar(&cfg.port, "port", envInt("PORT", 4000), "API server port")
	root.Flags().StringVar(&cfg.env, "env", envString("ENV", "development"), "Environment (development|staging|production)")

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), cfg, logger)
		},
	})

	return root
}

func runServer(ctx context.Context, cfg config, logger *jsonlog.Logger) error {
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.PrintInfo("database connection pool established", nil)

	templateCache, err := newTemplateCache()
	if err != nil {
		return err
	}

	session := scs.New()
	session.Store = postgresstore.New(db.DB)
	session.Lifetime = 12 * time.Hour

	app := &application{
		config:        cfg,
		logger:        logger,
		models:        data.NewModels(db),
		session:       session,
		templateCache: templateCache,
	}

	return app.serve(ctx)
}

func runMigrations(ctx context.Context, cfg config, logger *jsonlog.Logger) error {
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := data.Migrate(ctx, db)
	if err != nil {
		return err
	}

	logger.PrintInfo("migrations applied", map[string]string{
		"count": strconv.Itoa(len(applied)),
	})
	return nil
}

func (app *application) serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", app.config.port),
		Handler:      app.routes(),
		ErrorLog:     app.logger.StdLog(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownError := make(chan error, 1)

	go func() {
		<-ctx.Done()

		app.logger.PrintInfo("shutting down server", map[string]string{"addr": srv.Addr})

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		shutdownError <- srv.Shutdown(shutdownCtx)
	}()

	app.logger.PrintInfo("starting server", map[string]string{
		"addr": srv.Addr,
		"env":  app.config.env,
	})

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	if err = <-shutdownError; err != nil {
		return err
	}

	app.logger.PrintInfo("stopped server", map[string]string{"addr": srv.Addr})
	return nil
}

func openDB(cfg config) (*sqlx.DB, error) {
	if cfg.db.dsn == "" {
		return nil, errors.New("no database DSN: set --db-dsn or LIBRARY_DB_DSN")
	}

	db, err := sqlx.Open("postgres", cfg.db.dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.db.maxOpenConns)
	db.SetMaxIdleConns(cfg.db.maxIdleConns)
	db.SetConnMaxIdleTime(cfg.db.maxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
