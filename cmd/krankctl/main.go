// Command krankctl administers the krankmeldung database: migrations, user
// accounts and the connectivity check.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"krankmeldung/internal/auth"
	"krankmeldung/internal/health"
	"krankmeldung/internal/model"
	"krankmeldung/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var dbURL string
	root := &cobra.Command{
		Use:          "krankctl",
		Short:        "Administer the krankmeldung database",
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			_ = godotenv.Load()
			if dbURL == "" {
				dbURL = os.Getenv("DATABASE_URL")
			}
		},
	}
	root.PersistentFlags().StringVar(&dbURL, "database-url", "", "postgres connection string (default $DATABASE_URL)")

	open := func(ctx context.Context) (*pgxpool.Pool, *store.Store, error) {
		if dbURL == "" {
			return nil, nil, errors.New("DATABASE_URL is required")
		}
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			return nil, nil, fmt.Errorf("db: %w", err)
		}
		return pool, store.New(pool), nil
	}

	root.AddCommand(migrateCmd(open), userCmd(open), checkDBCmd(open))
	return root
}

type opener func(ctx context.Context) (*pgxpool.Pool, *store.Store, error)

func migrateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, st, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := st.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

type userFlags struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	Password    string `json:"password"`
	Mitarbeiter string `json:"mitarbeiter"`
	Admin       bool   `json:"admin"`
}

// newBenutzer validates the flags and hashes the password.
func newBenutzer(f userFlags) (*model.Benutzer, error) {
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	f.Name = strings.TrimSpace(f.Name)
	err := validation.ValidateStruct(&f,
		validation.Field(&f.Email, validation.Required, is.Email),
		validation.Field(&f.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&f.Password, validation.Required, validation.Length(8, 72)),
		validation.Field(&f.Mitarbeiter, is.UUID),
	)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(f.Password)
	if err != nil {
		return nil, err
	}
	u := &model.Benutzer{
		ID:           uuid.NewString(),
		Email:        f.Email,
		PasswordHash: hash,
		Name:         f.Name,
		IsAdmin:      f.Admin,
	}
	if f.Mitarbeiter != "" {
		u.MitarbeiterID = &f.Mitarbeiter
	}
	return u, nil
}

func userCmd(open opener) *cobra.Command {
	user := &cobra.Command{Use: "user", Short: "Manage user accounts"}

	var f userFlags
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := newBenutzer(f)
			if err != nil {
				return err
			}
			pool, st, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()
			if u.MitarbeiterID != nil {
				if _, err := st.GetMitarbeiter(cmd.Context(), *u.MitarbeiterID); err != nil {
					return fmt.Errorf("mitarbeiter %s: %w", *u.MitarbeiterID, err)
				}
			}
			if err := st.CreateBenutzer(cmd.Context(), u); err != nil {
				if errors.Is(err, store.ErrDuplicate) {
					return fmt.Errorf("email %s is already registered", u.Email)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s) admin=%t\n", u.Email, u.ID, u.IsAdmin)
			return nil
		},
	}
	create.Flags().StringVar(&f.Email, "email", "", "login email")
	create.Flags().StringVar(&f.Name, "name", "", "display name")
	create.Flags().StringVar(&f.Password, "password", "", "password, at least 8 characters")
	create.Flags().StringVar(&f.Mitarbeiter, "mitarbeiter", "", "linked mitarbeiter id")
	create.Flags().BoolVar(&f.Admin, "admin", false, "grant admin rights")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("name")
	_ = create.MarkFlagRequired("password")

	list := &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, st, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()
			users, err := st.ListBenutzer(cmd.Context())
			if err != nil {
				return err
			}
			for _, u := range users {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\tadmin=%t\n", u.ID, u.Email, u.Name, u.IsAdmin)
			}
			return nil
		},
	}

	user.AddCommand(create, list)
	return user
}

func checkDBCmd(open opener) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "check-db",
		Short: "Count rows and time a round trip, like GET /api/test-db",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			pool, st, err := open(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			return writeCheck(ctx, cmd, st)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "overall deadline")
	return cmd
}

func writeCheck(ctx context.Context, cmd *cobra.Command, db health.DB) error {
	stats, err := health.Check(ctx, db)
	if err != nil {
		return fmt.Errorf("database check failed: %w", err)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}
