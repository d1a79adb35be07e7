// Command gatesftp runs the SFTP-to-object-store translation server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nimbusdepot/gatesftp/internal/auth"
	"github.com/nimbusdepot/gatesftp/internal/config"
	"github.com/nimbusdepot/gatesftp/internal/events"
	"github.com/nimbusdepot/gatesftp/internal/log"
	"github.com/nimbusdepot/gatesftp/internal/log/oarklog"
	"github.com/nimbusdepot/gatesftp/internal/models"
	"github.com/nimbusdepot/gatesftp/internal/namespace"
	"github.com/nimbusdepot/gatesftp/internal/session"
	"github.com/nimbusdepot/gatesftp/internal/sshd"
	"github.com/nimbusdepot/gatesftp/internal/store/s3store"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML/TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gatesftp: %v\n", err)
		os.Exit(1)
	}

	logger := oarklog.AtLevel(cfg.Logging.Level)

	cli, err := s3store.New(s3store.Option{
		Endpoint:  cfg.S3.Endpoint,
		Region:    cfg.S3.Region,
		Bucket:    cfg.S3.Bucket,
		AccessKey: cfg.S3.AccessKey,
		Secret:    cfg.S3.SecretKey,
	})
	if err != nil {
		logger.Error("failed to build store client", "err", err)
		os.Exit(1)
	}

	bus := events.New(32, events.LogSink{Logger: logger})
	sessions := session.New(bus)
	tracker := namespace.NewTracker()

	adapter := &auth.Adapter{
		Store:                 cli,
		Logger:                logger,
		UserBasePath:          cfg.UserBasePath,
		DefaultSubdirectories: cfg.DefaultSubdirectories,
		CreateDefaultSubdirs:  cfg.CreateDefaultSubdirs,
	}

	validator := func(ctx context.Context, username, pass string) (models.User, bool) {
		if !adapter.Authenticate(ctx, username, pass) {
			return models.User{}, false
		}
		if err := adapter.ProvisionHome(ctx, username); err != nil {
			logger.Error("failed to provision home directory", "user", username, "err", err)
		}
		return models.User{Username: username}, true
	}

	srv := sshd.New(
		sshd.WithStore(cli),
		sshd.WithLogger(logger),
		sshd.WithEventBus(bus),
		sshd.WithSessionManager(sessions),
		sshd.WithStalenessTracker(tracker),
		sshd.WithValidator(validator),
		sshd.WithUserBasePath(cfg.UserBasePath),
		sshd.WithMaxFileSize(cfg.MaxFileSize),
		sshd.WithAddress(cfg.Server.Host),
		sshd.WithPort(cfg.Server.Port),
		sshd.WithSSHPath(cfg.Server.SSHPath),
		sshd.WithPrivateKeyName(cfg.Server.PrivateKeyName),
	)

	go handleShutdown(sessions, logger)

	logger.Info("starting gatesftp", "host", cfg.Server.Host, "port", cfg.Server.Port, "bucket", cfg.S3.Bucket)
	if err := srv.Initialize(); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func handleShutdown(sessions *session.Manager, logger log.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down", "signal", sig.String())
	sessions.DisconnectAll()
	os.Exit(0)
}
