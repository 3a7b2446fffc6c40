package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rustcycles/rustcycles-sub000/internal/client"
	"github.com/rustcycles/rustcycles-sub000/internal/config"
	"github.com/rustcycles/rustcycles-sub000/internal/server"
	"github.com/rustcycles/rustcycles-sub000/internal/sim"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// No args runs server and client in one go, the way you want it during
	// development. Deployments pass an explicit role.
	role := "both"
	if len(os.Args) > 1 {
		role = os.Args[1]
	}

	cfgPath := "config/cycles.toml"
	if p := os.Getenv("RUSTCYCLES_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = config.Defaults()
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck // stderr sync failure is uninteresting

	switch role {
	case "server":
		return runServer(cfg, log)
	case "client":
		return runClient(cfg, log)
	case "both":
		return runBoth(cfg, log)
	default:
		return fmt.Errorf("unknown role %q, want server, client or both", role)
	}
}

func runServer(cfg *config.Config, log *zap.Logger) error {
	srv, err := server.New(cfg, loadArena(cfg, log), log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-shutdownCh
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	return srv.Run(ctx)
}

func runClient(cfg *config.Config, log *zap.Logger) error {
	cl, err := client.Connect(cfg, loadArena(cfg, log), client.NullSource{}, log)
	if err != nil {
		return err
	}
	defer cl.Close()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Network.TickRate.Duration)
	defer ticker.Stop()

	prev := time.Now()
	for {
		select {
		case sig := <-shutdownCh:
			log.Info("received shutdown signal", zap.String("signal", sig.String()))
			return nil
		case now := <-ticker.C:
			dt := float32(now.Sub(prev).Seconds())
			prev = now
			if err := cl.Tick(dt); err != nil {
				if errors.Is(err, client.ErrDisconnected) {
					log.Info("server closed the connection")
					return nil
				}
				return err
			}
		}
	}
}

// runBoth starts a server child process and runs the client in this one,
// mirroring how you'd test a multiplayer change locally: one command, both
// sides up.
func runBoth(cfg *config.Config, log *zap.Logger) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	srvCmd := exec.Command(exe, "server")
	srvCmd.Stdout = os.Stdout
	srvCmd.Stderr = os.Stderr
	if err := srvCmd.Start(); err != nil {
		return fmt.Errorf("start server process: %w", err)
	}
	defer func() {
		srvCmd.Process.Signal(syscall.SIGTERM) //nolint:errcheck // child may be gone
		srvCmd.Wait()                          //nolint:errcheck
	}()

	// The client's connect retries cover the child's startup time.
	return runClient(cfg, log)
}

// loadArena reads the configured arena file, falling back to the built-in
// one when the file is missing so the game stays runnable from any cwd.
func loadArena(cfg *config.Config, log *zap.Logger) *sim.Arena {
	arena, err := sim.LoadArena(cfg.Server.ArenaPath)
	if err != nil {
		log.Warn("using built-in arena", zap.Error(err))
		return sim.DefaultArena()
	}
	return arena
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
