// Command create-keypair writes the account keypair the portal client
// addresses. Run it once per deployment: every run picks a new account, and
// links stored under the previous one are no longer shown.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"

	"github.com/0naama/gifportal/internal/keypair"
)

var logLevels = map[string]log.Level{
	"debug": log.DebugLevel,
	"info":  log.InfoLevel,
	"warn":  log.WarnLevel,
}

func main() {
	out := flag.String("out", "keypair.json", "Path to write the account keypair to")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn)")

	flag.Parse()

	logHandler := log.New(os.Stderr)
	logHandler.SetLevel(logLevels[*logLevel])
	logger := slog.New(logHandler)

	if err := run(*out, logger); err != nil {
		logger.Error("Unable to create keypair", "err", err)
		os.Exit(1)
	}
}

func run(path string, logger *slog.Logger) error {
	previous, err := keypair.Load(path)
	switch {
	case err == nil:
		logger.Warn("Replacing existing keypair; items stored under the old account will no longer be shown",
			"path", path, "old", previous.PublicKey())
	case !errors.Is(err, fs.ErrNotExist):
		logger.Warn("Overwriting unreadable keypair file", "path", path, "err", err)
	}

	key, err := keypair.Generate()
	if err != nil {
		return err
	}
	if err := keypair.Save(path, key); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	logger.Info("Wrote account keypair", "path", path, "account", key.PublicKey())
	fmt.Println(key.PublicKey())
	return nil
}
