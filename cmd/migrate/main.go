// Command migrate manages the orderdesk schema.
//
//	migrate [up|down|status]
//
// With no argument it applies every pending migration.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ghuser/orderdesk/migrations/orderdesk"
	"github.com/ghuser/orderdesk/pkg/config"
	"github.com/ghuser/orderdesk/pkg/logger"
	"github.com/ghuser/orderdesk/pkg/migrator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg)

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	if err := run(context.Background(), cmd, cfg.DefinitionDatabaseURL, log); err != nil {
		log.Error("migrate failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd, url string, log logger.Logger) error {
	m, err := migrator.Open(url, orderdesk.FS)
	if err != nil {
		return err
	}
	defer m.Close() //nolint:errcheck

	switch cmd {
	case "up":
		versions, err := m.Up(ctx)
		if err != nil {
			return err
		}
		log.Info("migrations applied", "versions", versions)
	case "down":
		version, err := m.Down(ctx)
		if err != nil {
			return err
		}
		log.Info("migration rolled back", "version", version)
	case "status":
		statuses, err := m.Status(ctx)
		if err != nil {
			return err
		}
		for _, s := range statuses {
			log.Info("migration", "version", s.Version, "applied", s.Applied)
		}
	default:
		return fmt.Errorf("unknown command %q (want up, down or status)", cmd)
	}
	return nil
}
