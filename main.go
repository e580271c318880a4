package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/SayaAndy/saya-today-gallery/config"
	"github.com/SayaAndy/saya-today-gallery/internal/router"
	_ "github.com/SayaAndy/saya-today-gallery/internal/router/handlers"
	"github.com/SayaAndy/saya-today-gallery/internal/store"
	"github.com/SayaAndy/saya-today-gallery/internal/store/b2"
	"github.com/SayaAndy/saya-today-gallery/internal/store/s3"
	"github.com/SayaAndy/saya-today-gallery/internal/store/sqlite"
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

type Globals struct {
	Config  string `short:"c" help:"Path to the configuration file (in YAML format)" default:"config.yaml"`
	EnvFile string `name:"env-file" help:"Optional .env file loaded before the configuration is expanded"`
}

type CLI struct {
	Globals

	Serve   ServeCmd   `cmd:"" default:"1" help:"Serve the gallery JSON pages"`
	Extract ExtractCmd `cmd:"" help:"Print the images referenced by markdown files as JSON"`
}

func (c *CLI) AfterApply() error {
	if c.EnvFile == "" {
		return nil
	}
	if err := godotenv.Load(c.EnvFile); err != nil {
		return fmt.Errorf("fail to load env file '%s': %w", c.EnvFile, err)
	}
	return nil
}

type ServeCmd struct{}

func (s *ServeCmd) Run(globals *Globals) error {
	cfg, err := config.InitConfig(globals.Config)
	if err != nil {
		return fmt.Errorf("fail to load configuration: %w", err)
	}

	slog.SetLogLoggerLevel(cfg.LogLevel)
	slog.Info("starting gallery server...", slog.String("storage", cfg.Storage.Type), slog.String("listen", cfg.Listen))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := openStore(ctx, &cfg.Storage)
	if err != nil {
		return fmt.Errorf("fail to initialize %s storage: %w", cfg.Storage.Type, err)
	}

	r, err := router.NewRouter(cfg, st)
	if err != nil {
		st.Close()
		return fmt.Errorf("fail to initialize router: %w", err)
	}
	defer func() {
		if err := r.Close(); err != nil {
			slog.Warn("fail to close router", slog.String("error", err.Error()))
		}
	}()

	if err = r.InitRoutes(); err != nil {
		return fmt.Errorf("fail to initialize routes: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- r.Listen(cfg.Listen)
	}()

	select {
	case err = <-errChan:
		return err
	case <-ctx.Done():
		slog.Info("shutdown signal received, stopping gallery server...")
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.StorageConfig) (store.Store, error) {
	switch cfg.Type {
	case "sqlite3":
		return sqlite.Open(cfg.Sqlite3.DSN)
	case "b2":
		return b2.NewB2Client(ctx, cfg.B2)
	case "s3":
		return s3.NewS3Client(ctx, cfg.S3)
	}
	return nil, fmt.Errorf("unknown storage type '%s'", cfg.Type)
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("gallery"),
		kong.Description("Image gallery built from the pictures referenced in markdown posts."),
		kong.UsageOnError(),
	)
	if err := ctx.Run(&cli.Globals); err != nil {
		slog.Error("command failed", slog.String("command", ctx.Command()), slog.String("error", err.Error()))
		os.Exit(1)
	}
}
