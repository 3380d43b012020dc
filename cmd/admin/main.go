// Command admin performs out-of-band maintenance: schema bootstrap, user
// creation and user deletion.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"todotracker/internal/config"
	"todotracker/internal/database"
	"todotracker/internal/logging"
	"todotracker/internal/store"
	"todotracker/internal/utils"
)

const usage = `usage: admin [-config path] <command> [args]

commands:
  init-db                          create tables
  create-user <username> <password> register a user
  delete-user <username>           delete a user with all todos and comments
`

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (defaults to $CONFIG_FILE)")
	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.New("info", "text").Fatal("invalid configuration", "err", err)
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("database connection failed", "err", err)
	}
	defer db.Close()

	if err := run(ctx, os.Stdout, cfg, db, flag.Args()); err != nil {
		logger.Error("command failed", "command", flag.Arg(0), "err", err)
		db.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer, cfg *config.Config, db *database.DB, args []string) error {
	users := store.NewUsers(db, utils.BcryptHasher{Cost: cfg.Auth.BcryptCost}, cfg.Auth.MinPasswordLength)

	switch args[0] {
	case "init-db":
		if err := database.CreateTables(ctx, db); err != nil {
			return err
		}
		fmt.Fprintln(out, "Database initialized")
		return nil

	case "create-user":
		if len(args) != 3 {
			return errors.New("create-user takes <username> <password>")
		}
		user, err := users.Register(ctx, args[1], args[2])
		if errors.Is(err, store.ErrDuplicateHandle) {
			return fmt.Errorf("user with username %s already exists", args[1])
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "User %s created successfully (id %d)\n", user.Username, user.ID)
		return nil

	case "delete-user":
		if len(args) != 2 {
			return errors.New("delete-user takes <username>")
		}
		user, err := users.UserByHandle(ctx, args[1])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("user %s not found", args[1])
		}
		if err != nil {
			return err
		}
		summary, err := users.DeleteUser(ctx, user.ID)
		if err != nil {
			return err
		}
		encoded, err := json.Marshal(summary)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "User %s deleted: %s\n", user.Username, encoded)
		return nil

	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}
