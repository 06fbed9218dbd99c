// Copyright 2025 Asheer Adnan
// Licensed under the EUPL-1.2

// Command admin creates or promotes a bootstrap admin account. The
// account is created approved, active and email-verified so it can log
// in immediately.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/database"
	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/repository"
	"github.com/asheeradnan/FYP-IIoT-FDI-Detection/internal/services/account"
)

func main() {
	cmd := &cli.Command{
		Name:  "admin",
		Usage: "Create or promote an admin account",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database-dsn",
				Value:   "./data/app.db",
				Usage:   "Database DSN",
				Sources: cli.EnvVars("DATABASE_DSN"),
			},
			&cli.StringFlag{
				Name:     "name",
				Usage:    "Admin display name",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "employee-id",
				Usage:    "Admin employee ID",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "email",
				Usage:    "Admin email address",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "password",
				Usage:    "Admin password",
				Required: true,
				Sources:  cli.EnvVars("ADMIN_PASSWORD"),
			},
		},
		Action: createAdmin,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func createAdmin(ctx context.Context, cmd *cli.Command) error {
	db, err := database.Open(cmd.String("database-dsn"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	repo := repository.New(db)
	accounts := account.NewService(repo, noopNotifier{})

	user, err := accounts.EnsureAdmin(ctx,
		cmd.String("name"),
		cmd.String("employee-id"),
		cmd.String("email"),
		cmd.String("password"),
	)
	if err != nil {
		return err
	}

	fmt.Printf("admin account ready: id=%d email=%s\n", user.ID, user.Email)
	return nil
}

// noopNotifier suppresses mails during bootstrap; the admin account
// needs no verification or approval emails.
type noopNotifier struct{}

func (noopNotifier) SendVerification(context.Context, string, string, string) error { return nil }
func (noopNotifier) SendApproval(context.Context, string, string) error             { return nil }
func (noopNotifier) SendDecline(context.Context, string, string, string) error      { return nil }
