package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/amirasaad/mobank/infra"
	infrarepo "github.com/amirasaad/mobank/infra/repository"
	"github.com/amirasaad/mobank/internal/migrations"
	"github.com/amirasaad/mobank/pkg/config"
	"github.com/amirasaad/mobank/pkg/currency"
	"github.com/amirasaad/mobank/pkg/domain/account"
	accountsvc "github.com/amirasaad/mobank/pkg/service/account"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const usage = `Usage: cli <command> [arguments]
Commands:
  migrate up                              apply pending migrations
  migrate down [steps]                    roll back migrations (default 1)
  migrate version                         print the schema version
  open <user_id> [account_type] [currency] open an account
  accounts <user_id>                      list a user's accounts`

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	errColor  = color.New(color.FgRed, color.Bold)
	infoColor = color.New(color.FgCyan)
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		errColor.Fprintln(os.Stderr, "error:", err) //nolint: errcheck
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) < 1 {
		fmt.Fprintln(out, usage) //nolint: errcheck
		return nil
	}
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer infra.Close(db) //nolint: errcheck

	return dispatch(context.Background(), db, args, out)
}

func dispatch(ctx context.Context, db *gorm.DB, args []string, out io.Writer) error {
	switch args[0] {
	case "migrate":
		return migrate(db, args[1:], out)
	case "open":
		if len(args) < 2 {
			return fmt.Errorf("usage: open <user_id> [account_type] [currency]")
		}
		userID, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid user_id: %w", err)
		}
		var category account.Category
		var code currency.Code
		if len(args) > 2 {
			category = account.Category(args[2])
		}
		if len(args) > 3 {
			code = currency.Code(args[3])
		}
		acc, err := service(db).OpenAccount(ctx, userID, category, code)
		if err != nil {
			return err
		}
		okColor.Fprintf(out, "Account opened: ID=%s Number=%s Type=%s Currency=%s\n", //nolint: errcheck
			acc.ID, acc.Number, acc.Category, acc.Balance.Currency())
		return nil
	case "accounts":
		if len(args) < 2 {
			return fmt.Errorf("usage: accounts <user_id>")
		}
		userID, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid user_id: %w", err)
		}
		accs, err := service(db).ListAccounts(ctx, userID)
		if err != nil {
			return err
		}
		if len(accs) == 0 {
			infoColor.Fprintln(out, "No accounts") //nolint: errcheck
			return nil
		}
		for _, acc := range accs {
			state := okColor.Sprint("active")
			if !acc.Active {
				state = errColor.Sprint("inactive")
			}
			fmt.Fprintf(out, "%s  %s  %-8s  %12s %s  %s\n", //nolint: errcheck
				acc.ID, acc.Number, acc.Category, acc.Balance, acc.Balance.Currency(), state)
		}
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func service(db *gorm.DB) *accountsvc.Service {
	return accountsvc.New(infrarepo.NewUoW(db), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func migrate(db *gorm.DB, args []string, out io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: migrate up|down [steps]|version")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	var st migrations.Status
	switch args[0] {
	case "up":
		st, err = migrations.Up(sqlDB)
	case "down":
		steps := 1
		if len(args) > 1 {
			if steps, err = strconv.Atoi(args[1]); err != nil {
				return fmt.Errorf("invalid steps: %w", err)
			}
		}
		st, err = migrations.Down(sqlDB, steps)
	case "version":
		st, err = migrations.Version(sqlDB)
	default:
		return fmt.Errorf("unknown migrate command %q", args[0])
	}
	if err != nil {
		return err
	}
	if st.Dirty {
		errColor.Fprintf(out, "Schema version %d is dirty\n", st.After) //nolint: errcheck
		return nil
	}
	if st.Before == st.After {
		infoColor.Fprintf(out, "Schema at version %d, no change\n", st.After) //nolint: errcheck
		return nil
	}
	okColor.Fprintf(out, "Schema migrated from version %d to %d\n", st.Before, st.After) //nolint: errcheck
	return nil
}
