// Command cr8s is the admin CLI: user management and the crate digest email.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/apoclyps/cr8s/internal/core/domain"
	"github.com/apoclyps/cr8s/internal/core/service"
	"github.com/apoclyps/cr8s/internal/infrastructure/config"
	"github.com/apoclyps/cr8s/internal/infrastructure/db/postgres"
	"github.com/apoclyps/cr8s/internal/infrastructure/mail"
	"github.com/apoclyps/cr8s/internal/infrastructure/queue"
	"github.com/apoclyps/cr8s/internal/pkg/password"
	"github.com/apoclyps/cr8s/pkg/logger"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Log    zerolog.Logger
	Config *config.Config
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmdName)
		printUsage()
		os.Exit(2)
	}

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true})

	cmdCtx := &commandContext{Ctx: ctx, Log: log, Config: cfg}
	if err := cmd.run(cmdCtx, os.Args[2:]); err != nil {
		log.Error().Err(err).Str("command", cmdName).Msg("command failed")
		os.Exit(1)
	}
}

func commands() map[string]command {
	return map[string]command{
		"users-create": {
			name:        "users-create",
			description: "Create a user with the given roles",
			run:         runUsersCreate,
		},
		"users-list": {
			name:        "users-list",
			description: "List users and their roles",
			run:         runUsersList,
		},
		"users-delete": {
			name:        "users-delete",
			description: "Delete a user by id",
			run:         runUsersDelete,
		},
		"digest-send": {
			name:        "digest-send",
			description: "Email a digest of recently published crates",
			run:         runDigestSend,
		},
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: cr8s <command> [flags]")
	fmt.Fprintln(os.Stderr)
	for _, cmd := range commands() {
		fmt.Fprintf(os.Stderr, "  %-14s %s\n", cmd.name, cmd.description)
	}
}

func runUsersCreate(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("users-create", flag.ExitOnError)
	username := fs.String("username", "", "username (required)")
	pass := fs.String("password", "", "password (required)")
	roles := fs.String("roles", "viewer", "comma-separated role codes (admin, editor, viewer)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *pass == "" {
		return fmt.Errorf("both -username and -password are required")
	}

	codes, err := parseRoleCodes(*roles)
	if err != nil {
		return err
	}

	pool, err := postgres.Connect(ctx.Ctx, postgres.Config{URL: ctx.Config.Postgres.URL})
	if err != nil {
		return err
	}
	defer pool.Close()

	hasher := password.NewHasher(ctx.Config.HashParams())
	hash, err := hasher.Hash(*pass)
	if err != nil {
		return err
	}

	users := postgres.NewUserRepository(pool)
	user, err := users.Create(ctx.Ctx, *username, hash, codes)
	if err != nil {
		return err
	}

	ctx.Log.Info().Int64("id", user.ID).Str("username", user.Username).Str("roles", *roles).Msg("user created")
	return nil
}

func runUsersList(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("users-list", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	pool, err := postgres.Connect(ctx.Ctx, postgres.Config{URL: ctx.Config.Postgres.URL})
	if err != nil {
		return err
	}
	defer pool.Close()

	users, err := postgres.NewUserRepository(pool).ListWithRoles(ctx.Ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tROLES\tCREATED")
	for _, u := range users {
		codes := make([]string, 0, len(u.Roles))
		for _, role := range u.Roles {
			codes = append(codes, string(role.Code))
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			u.User.ID, u.User.Username, strings.Join(codes, ","), u.User.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func runUsersDelete(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("users-delete", flag.ExitOnError)
	id := fs.Int64("id", 0, "user id (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return fmt.Errorf("-id is required")
	}

	pool, err := postgres.Connect(ctx.Ctx, postgres.Config{URL: ctx.Config.Postgres.URL})
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.NewUserRepository(pool).Delete(ctx.Ctx, *id); err != nil {
		return err
	}
	ctx.Log.Info().Int64("id", *id).Msg("user deleted")
	return nil
}

func runDigestSend(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("digest-send", flag.ExitOnError)
	hours := fs.Int("hours", 24, "look-back window in hours")
	to := fs.String("to", "", "comma-separated recipient addresses (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *to == "" {
		return fmt.Errorf("-to is required")
	}
	recipients := strings.Split(*to, ",")

	pool, err := postgres.Connect(ctx.Ctx, postgres.Config{URL: ctx.Config.Postgres.URL})
	if err != nil {
		return err
	}
	defer pool.Close()

	mailer, err := mail.NewSMTPMailer(mail.Config{
		Host:     ctx.Config.SMTP.Host,
		Port:     ctx.Config.SMTP.Port,
		Username: ctx.Config.SMTP.Username,
		Password: ctx.Config.SMTP.Password,
		From:     ctx.Config.SMTP.From,
	})
	if err != nil {
		return err
	}

	dispatcher := queue.NewDispatcher(0, mailer, ctx.Log)
	dispatcher.Start(ctx.Ctx)

	digest := service.NewDigestService(postgres.NewCrateRepository(pool), ctx.Log)
	count, err := digest.SendDigest(ctx.Ctx, time.Duration(*hours)*time.Hour, recipients, dispatcher)

	// Flush queued deliveries before reporting the outcome.
	dispatcher.Close()
	if err != nil {
		return err
	}

	ctx.Log.Info().Int("crates", count).Int("recipients", len(recipients)).Msg("digest run complete")
	return nil
}

func parseRoleCodes(csv string) ([]domain.RoleCode, error) {
	parts := strings.Split(csv, ",")
	codes := make([]domain.RoleCode, 0, len(parts))
	for _, p := range parts {
		code, err := domain.ParseRoleCode(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, nil
}
