package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benderchat/bender/internal/admin"
	"github.com/benderchat/bender/internal/auth"
	"github.com/benderchat/bender/internal/config"
	"github.com/benderchat/bender/internal/content"
	httpapp "github.com/benderchat/bender/internal/http"
	"github.com/benderchat/bender/internal/logging"
	"github.com/benderchat/bender/internal/store/sqlstore"

	"github.com/go-chi/docgen"
	"github.com/jonboulle/clockwork"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const version = "0.1.0"

var defaultSkins = []struct {
	name string
	path string
}{
	{"classic", "skins/classic.html"},
	{"minimal", "skins/minimal.html"},
	{"dark", "skins/dark.html"},
}

func main() {
	app := &cli.App{
		Name:    "bender",
		Usage:   "Blogging backend with markdown articles and an admin API",
		Version: version,
		Action:  runServer,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server"},
				Usage:   "Start the HTTP server (default if no command)",
				Action:  runServer,
			},
			{
				Name:   "routes",
				Usage:  "Print the route table as markdown",
				Action: printRoutes,
			},
			{
				Name:  "seed",
				Usage: "Create the schema, default skins and optionally an admin account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "admin-username", Usage: "Admin account to create or promote"},
					&cli.StringFlag{Name: "admin-password", Usage: "Password for a newly created admin", EnvVars: []string{"BENDER_ADMIN_PASSWORD"}},
				},
				Action: runSeed,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type deps struct {
	cfg    config.Config
	logger *zap.Logger
	store  *sqlstore.Store
}

func setup() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Options{Debug: cfg.Debug, Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	st, err := sqlstore.Open(cfg.Database)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return &deps{cfg: cfg, logger: logger, store: st}, nil
}

func (a *deps) close() {
	_ = a.store.Close()
	_ = a.logger.Sync()
}

func (a *deps) server() *httpapp.Server {
	return httpapp.NewServer(
		a.store,
		auth.NewService(a.cfg.BcryptCost),
		content.NewService(clockwork.NewRealClock()),
		admin.NewService(),
		a.cfg,
		a.logger,
	)
}

func runServer(c *cli.Context) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	httpServer := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           a.server(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("bender listening",
			zap.String("addr", a.cfg.Addr),
			zap.String("env", a.cfg.Env),
			zap.String("dialect", a.store.Dialect()),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func printRoutes(c *cli.Context) error {
	cfg := config.Config{CORSOrigins: []string{"*"}}
	server := httpapp.NewServer(nil, nil, nil, nil, cfg, zap.NewNop())
	fmt.Println(docgen.MarkdownRoutesDoc(server.Router(), docgen.MarkdownOpts{
		ProjectPath: "github.com/benderchat/bender",
		Intro:       "Routes served by bender. Generated with `bender routes`.",
	}))
	return nil
}

func runSeed(c *cli.Context) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := c.Context
	conn := a.store.Acquire()
	defer conn.Close()

	skins, err := conn.ListSkins(ctx)
	if err != nil {
		return fmt.Errorf("list skins: %w", err)
	}
	if len(skins) == 0 {
		for _, s := range defaultSkins {
			if _, err := conn.CreateSkin(ctx, s.name, s.path); err != nil {
				return fmt.Errorf("create skin %s: %w", s.name, err)
			}
			a.logger.Info("created skin", zap.String("name", s.name))
		}
	}

	username := c.String("admin-username")
	if username == "" {
		return nil
	}
	password := c.String("admin-password")
	if password == "" {
		return errors.New("--admin-password is required with --admin-username")
	}
	id, err := auth.NewService(a.cfg.BcryptCost).EnsureAdmin(ctx, conn, auth.Credentials{Username: username, Password: password})
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	a.logger.Info("admin ready", zap.String("username", username), zap.Int64("user_id", id))
	return nil
}
