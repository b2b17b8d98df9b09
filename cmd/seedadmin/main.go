// Command seedadmin creates the initial admin account if it does not exist.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dmitrijs2005/taskmanager/internal/flagx"
	"github.com/dmitrijs2005/taskmanager/internal/logging"
	"github.com/dmitrijs2005/taskmanager/internal/server/config"
	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskmanager/internal/server/services"
)

const (
	adminName       = "Admin"
	adminEmail      = "admin@taskapp.local"
	defaultPassword = "Admin@123"
)

func password(args []string) string {
	p := defaultPassword
	if v, ok := os.LookupEnv("SEED_ADMIN_PASSWORD"); ok && v != "" {
		p = v
	}

	fs := flag.NewFlagSet("seedadmin", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&p, "p", p, "admin password")
	_ = fs.Parse(flagx.FilterArgs(args, []string{"-p"}))
	return p
}

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := logging.New(cfg.Production)

	storage, err := repomanager.Open(ctx, cfg.DatabaseURI, "", logger)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer storage.Close(ctx)

	users := services.NewUserService(storage.Users(), logger)
	created, err := users.SeedAdmin(ctx, adminName, adminEmail, password(args), min(max(cfg.BcryptCost, config.MinBcryptCost), config.MaxBcryptCost))
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	if !created {
		log.Printf("Admin user already exists: %s", adminEmail)
		return nil
	}
	log.Printf("Admin created: %s (change the password after first login)", adminEmail)
	return nil
}
