// Command librelink-follower is a headless LibreLinkUp follower daemon. It
// logs in, polls the followed patient's glucose readings on a timer and
// raises desktop notifications when a reading leaves the target range.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"github.com/mrcode/librelink-follower/internal/apilog"
	"github.com/mrcode/librelink-follower/internal/credentials"
	"github.com/mrcode/librelink-follower/internal/follower"
	"github.com/mrcode/librelink-follower/internal/librelink"
	"github.com/mrcode/librelink-follower/internal/logger"
	"github.com/mrcode/librelink-follower/internal/models"
)

type bootstrapConfig struct {
	Email      string `envconfig:"LIBRELINK_EMAIL"`
	Password   string `envconfig:"LIBRELINK_PASSWORD"`
	RememberMe bool   `envconfig:"LIBRELINK_REMEMBER_ME" default:"true"`
	ConfigDir  string `envconfig:"LIBRELINK_CONFIG_DIR"`
	// Overrides the settings-file interval when set.
	IntervalMinutes int  `envconfig:"LIBRELINK_INTERVAL_MINUTES"`
	APILog          bool `envconfig:"LIBRELINK_API_LOG"`
	Debug           bool `envconfig:"LIBRELINK_DEBUG"`
}

func main() {
	var cfg bootstrapConfig
	if err := envconfig.Process("", &cfg); err != nil {
		fmt.Fprintln(os.Stderr, "invalid environment:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger setup failed:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("startup failed", zap.Error(err))
	}
}

func run(cfg bootstrapConfig, log *zap.Logger) error {
	configDir := cfg.ConfigDir
	if configDir == "" {
		var err error
		configDir, err = models.GetConfigDir()
		if err != nil {
			return err
		}
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	settingsPath := filepath.Join(configDir, "settings.json")
	settings, err := models.LoadSettings(settingsPath)
	if err != nil {
		return err
	}
	if cfg.IntervalMinutes > 0 {
		settings.UpdateIntervalMinutes = cfg.IntervalMinutes
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	var diag *apilog.Logger
	if cfg.APILog {
		diag = apilog.New(filepath.Join(configDir, "api.log"))
		log.Info("API diagnostic log enabled", zap.String("path", diag.Path()))
	}

	store := credentials.NewFileStore(filepath.Join(configDir, "credentials.json"))
	client := librelink.NewClient(librelink.BaseURL(settings.UseRegionServer), diag, log)

	svc := follower.New(client, store, settings, log)
	svc.Start()
	defer svc.Close()

	email, password, rememberMe := cfg.Email, cfg.Password, cfg.RememberMe
	if email == "" {
		stored, err := store.Load()
		if err != nil {
			if errors.Is(err, credentials.ErrNotFound) {
				return errors.New("no credentials: set LIBRELINK_EMAIL and LIBRELINK_PASSWORD")
			}
			return err
		}
		email, password, rememberMe = stored.Email, stored.Password, stored.RememberMe
		log.Info("using stored credentials", zap.String("email", email))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = svc.Login(ctx, email, password, rememberMe)
	cancel()
	if err != nil {
		return err
	}
	log.Info("following patient", zap.String("base_url", client.BaseURL()))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	sig := <-stop
	log.Info("shutting down", zap.String("signal", sig.String()))
	return nil
}
