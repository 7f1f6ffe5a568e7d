package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/fidelidade-next/internal/app"
	"github.com/fidelidade-next/internal/config"
	"github.com/fidelidade-next/internal/logger"
	"github.com/fidelidade-next/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	releaseMode = "release"

	envAdminEmail    = "FID_DEFAULT_ADMIN_EMAIL"
	envAdminPassword = "FID_DEFAULT_ADMIN_PASSWORD"

	minSecretLength = 32
)

var weakSecretMarkers = []string{"change-me", "changeme", "secret-key", "fidelidade"}

var errWeakSecret = errors.New("jwt secret is weak or left at its default")

func main() {
	mode := flag.String("mode", app.ModeAll, "run mode: all, api or worker")
	flag.Parse()

	fmt.Fprintln(os.Stdout, banner(*mode))

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer func() { _ = logger.Z().Sync() }()

	if err := run(cfg, *mode); err != nil {
		logger.Errorw("server_exit", "error", err)
		_ = logger.Z().Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, mode string) error {
	release := strings.EqualFold(cfg.Server.Mode, releaseMode)
	if err := checkSecret(cfg.JWT.SecretKey); err != nil {
		if release {
			return err
		}
		logger.Warnw("jwt_secret_weak", "hint", "set jwt.secret before going to production")
	}
	if release {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := prepareDatabase(cfg.Database); err != nil {
		return err
	}
	seedAdmin(release)

	return app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	})
}

func prepareDatabase(cfg config.DatabaseConfig) error {
	if err := models.Setup(cfg); err != nil {
		return err
	}
	logger.Infow("database_ready", "driver", cfg.Driver)
	return nil
}

// seedAdmin 首次启动时创建管理员；生产环境必须显式提供密码
func seedAdmin(release bool) {
	email := os.Getenv(envAdminEmail)
	password := os.Getenv(envAdminPassword)
	if release && password == "" {
		logger.Warnw("default_admin_skipped", "reason", envAdminPassword+" not set")
		return
	}
	if err := models.InitDefaultAdmin(email, password); err != nil {
		logger.Warnw("default_admin_failed", "error", err)
	}
}

func checkSecret(secret string) error {
	if len(secret) < minSecretLength {
		return errWeakSecret
	}
	lowered := strings.ToLower(secret)
	for _, marker := range weakSecretMarkers {
		if strings.Contains(lowered, marker) {
			return errWeakSecret
		}
	}
	return nil
}

func banner(mode string) string {
	var b strings.Builder
	b.WriteString("\033[36m")
	b.WriteString("  _____ _     _      _           _       _\n")
	b.WriteString(" |  ___(_) __| | ___| (_) __| | __ _  __| | ___\n")
	b.WriteString(" | |_  | |/ _` |/ _ \\ | |/ _` |/ _` |/ _` |/ _ \\\n")
	b.WriteString(" |  _| | | (_| |  __/ | | (_| | (_| | (_| |  __/\n")
	b.WriteString(" |_|   |_|\\__,_|\\___|_|_|\\__,_|\\__,_|\\__,_|\\___|\n")
	b.WriteString("\033[0m")
	fmt.Fprintf(&b, " mode=%s  api=/api/v1  health=/health", mode)
	return b.String()
}
