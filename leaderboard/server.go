package leaderboard

import (
	"arcadia/util"
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// Config is the backend configuration, read from the environment.
type Config struct {
	Port      string
	Dialect   Dialect
	DSN       string
	Identity  Identity
	Statsview string
}

// ConfigFromEnv reads PORT, ARCADIA_DB_DRIVER, ARCADIA_DB_DSN (or DB_HOST, DB_USER, DB_PASSWORD, DB_NAME),
// ARCADIA_PLAYER_IDENTITY and ARCADIA_STATSVIEW.
func ConfigFromEnv() (Config, error) {
	var c Config
	var err error

	c.Port = util.GetOrDefault("PORT", "3000")

	if c.Dialect, err = DialectByName(util.GetOrDefault("ARCADIA_DB_DRIVER", "mysql")); err != nil {
		return c, err
	}

	c.DSN = util.GetOrDefault("ARCADIA_DB_DSN", "")
	if c.DSN == "" {
		switch c.Dialect.Name {
		case SQLite.Name:
			c.DSN = SQLiteDSN(util.GetOrDefault("DB_NAME", "arcadia.db"))
		default:
			c.DSN = MySQLDSN(
				util.GetOrDefault("DB_HOST", "localhost"),
				util.GetOrDefault("DB_USER", "root"),
				util.GetOrDefault("DB_PASSWORD", ""),
				util.GetOrDefault("DB_NAME", "arcadia"),
			)
		}
	}

	if c.Identity, err = ParseIdentity(util.GetOrDefault("ARCADIA_PLAYER_IDENTITY", "dedup")); err != nil {
		return c, err
	}

	// "1"/"true" selects the default address
	c.Statsview = util.GetOrDefault("ARCADIA_STATSVIEW", "")
	if util.IsTruthy(c.Statsview) {
		c.Statsview = "localhost:18066"
	} else if c.Statsview != "" {
		if _, _, err := net.SplitHostPort(c.Statsview); err != nil {
			c.Statsview = ""
		}
	}

	return c, nil
}

type Server struct {
	cfg   Config
	store *Store
	http  *http.Server
}

// NewServer opens the database, migrates it and prepares the HTTP server.
func NewServer(ctx context.Context, cfg Config) (*Server, error) {
	db, err := OpenDB(cfg.Dialect, cfg.DSN)
	if err != nil {
		return nil, err
	}

	store := NewStore(db, cfg.Dialect, cfg.Identity)
	if err = store.Migrate(ctx, DefaultGames...); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Server{
		cfg:   cfg,
		store: store,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           NewAPI(store).Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	return s, nil
}

func (s *Server) Store() *Store { return s.store }

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if s.cfg.Statsview != "" {
		launchStatsview(s.cfg.Statsview)
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("api: listening on %s (%s, player identity %s)\n", s.http.Addr, s.cfg.Dialect.Name, s.cfg.Identity)
		errc <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errc:
		_ = s.store.Close()
		return fmt.Errorf("api: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.http.Shutdown(shutdownCtx)
	if cerr := s.store.Close(); err == nil {
		err = cerr
	}
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	log.Printf("api: stopped\n")
	return err
}

func launchStatsview(addr string) {
	go func() {
		viewer.SetConfiguration(viewer.WithAddr(addr))
		mgr := statsview.New()
		mgr.Start()
	}()
	log.Printf("api: stats server available at http://%s/debug/statsview\n", addr)
}
