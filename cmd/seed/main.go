// Command seed provisions an account, optionally in a new company.
//
//	go run ./cmd/seed --username=alice --password=secret-pass
//	go run ./cmd/seed --username=demo_bob --password=secret-pass --company-name=acme --company-domain=acme.test --role=operator
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ardanlabs/conf/v3"
	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/pkg/auth"
	"github.com/ghuser/orderdesk/pkg/config"
	"github.com/ghuser/orderdesk/pkg/database"
	"github.com/ghuser/orderdesk/pkg/logger"
	accountsvcs "github.com/ghuser/orderdesk/services/account/application/services"
	accountpg "github.com/ghuser/orderdesk/services/account/infrastructure/persistence/postgres"
)

type seedArgs struct {
	Username      string `conf:"required"`
	Password      string `conf:"required,mask"`
	Email         string
	Role          string `conf:"default:admin"`
	CompanyName   string
	CompanyDomain string
	Superuser     bool
}

func main() {
	var args seedArgs
	help, err := conf.Parse("SEED", &args)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return
		}
		slog.Error("invalid arguments", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg)

	if err := run(context.Background(), cfg, log, args); err != nil {
		log.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger, args seedArgs) error {
	pool, err := database.NewPool(ctx, cfg.DefinitionDatabaseURL, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	provisioning := accountsvcs.NewProvisioningService(
		pool,
		accountpg.NewCompanyRepository(pool),
		accountpg.NewAccountRepository(pool),
		log,
	)

	var companyID uuid.NullUUID
	if args.CompanyName != "" {
		c, err := provisioning.CreateCompany(ctx, args.CompanyName, args.CompanyDomain)
		if err != nil {
			return err
		}
		companyID = uuid.NullUUID{UUID: c.ID, Valid: true}
		log.Info("company created", "company_id", c.ID, "name", c.Name)
	}

	a, err := provisioning.Provision(ctx, accountsvcs.ProvisionRequest{
		Username:  args.Username,
		Email:     args.Email,
		Password:  args.Password,
		Role:      auth.Role(args.Role),
		CompanyID: companyID,
		Superuser: args.Superuser,
	})
	if err != nil {
		return err
	}
	log.Info("account provisioned", "account_id", a.ID, "company_id", a.CompanyID, "role", a.Role)
	return nil
}
