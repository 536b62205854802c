package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/muesli/termenv"

	"github.com/0naama/gifportal/internal"
	"github.com/0naama/gifportal/internal/config"
	"github.com/0naama/gifportal/internal/portal"
	"github.com/0naama/gifportal/internal/wallet"
)

// Values swapped in by go-releaser at build time
var (
	version = "dev"
)

var logLevels = map[string]log.Level{
	"debug": log.DebugLevel,
	"info":  log.InfoLevel,
	"warn":  log.WarnLevel,
}

func main() {
	configPath := flag.String("config", defaultConfigPath(), "Path to config file")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn)")

	flag.Parse()

	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: config file not found: %s\n\n", *configPath)
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	db := &internal.DebugBuffer{}

	logHandler := log.New(db)

	// Force color output for logger.
	// By default, the charm logger package disables color for non-TTY.
	logHandler.SetColorProfile(termenv.TrueColor)
	logHandler.SetLevel(logLevels[*logLevel])

	logger := slog.New(logHandler)
	logger.Info("Started gif portal", "Version", version, "cluster", cfg.Cluster, "account", cfg.Account.PublicKey())

	availability := wallet.Probe(cfg.WalletPath, cfg.TrustStorePath, cfg.Origin, logger)

	gateway := portal.New(portal.Config{
		ProgramID:  cfg.ProgramID,
		Account:    cfg.Account,
		IDL:        cfg.IDL,
		Commitment: cfg.Commitment,
		Timeout:    cfg.RequestTimeout,
	}, rpc.New(cfg.Endpoint), logger)

	model := internal.NewModel(cfg, availability, gateway, logger, db)
	if err := model.Start(); err != nil {
		logger.Error("Application error", "err", err)
		os.Exit(1)
	}
}

func defaultConfigPath() (cfgPath string) {
	switch runtime.GOOS {
	case "windows":
		cfgPath = "gifportal-config.yaml"
	case "darwin":
		if _, err := os.Stat("/usr/local/etc/gifportal-config.yaml"); err == nil {
			cfgPath = "/usr/local/etc/gifportal-config.yaml"
		} else if _, err := os.Stat("/opt/homebrew/etc/gifportal-config.yaml"); err == nil {
			cfgPath = "/opt/homebrew/etc/gifportal-config.yaml"
		} else {
			cfgPath = "gifportal-config.yaml"
		}
	case "linux":
		if _, err := os.Stat("/usr/local/etc/gifportal-config.yaml"); err == nil {
			cfgPath = "/usr/local/etc/gifportal-config.yaml"
		} else {
			cfgPath = "gifportal-config.yaml"
		}
	default:
		cfgPath = "gifportal-config.yaml"
	}

	return cfgPath
}
