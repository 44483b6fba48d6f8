package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/pulsekit/pulse/adapters/clock"
	"github.com/pulsekit/pulse/adapters/hasher"
	"github.com/pulsekit/pulse/adapters/idgen"
	"github.com/pulsekit/pulse/adapters/sqlite"
	"github.com/pulsekit/pulse/app"
	"github.com/pulsekit/pulse/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage dashboard accounts",
	Long: `Manage Pulse dashboard accounts.

Examples:
  pulse users list
  pulse users create --email=me@example.com --password=secret123`,
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all accounts",
	RunE:  runUsersList,
}

var (
	createEmail    string
	createName     string
	createPassword string
)

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account",
	RunE:  runUsersCreate,
}

func init() {
	usersCreateCmd.Flags().StringVar(&createEmail, "email", "", "account email (required)")
	usersCreateCmd.Flags().StringVar(&createName, "name", "", "display name")
	usersCreateCmd.Flags().StringVar(&createPassword, "password", "", "password (required, min 8 chars)")
	usersCreateCmd.MarkFlagRequired("email")
	usersCreateCmd.MarkFlagRequired("password")

	usersCmd.AddCommand(usersListCmd, usersCreateCmd)
	rootCmd.AddCommand(usersCmd)
}

// openDB opens the configured database for management commands.
func openDB() (*sqlite.DB, *config.Config, error) {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	db, err := sqlite.Open(cfg.Database.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, cfg, nil
}

func runUsersList(cmd *cobra.Command, args []string) error {
	db, _, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	users, err := sqlite.NewUserStore(db).List(context.Background(), 1000, 0)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tNAME\tCREATED")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Name, u.CreatedAt.Format("2006-01-02"))
	}
	return w.Flush()
}

func runUsersCreate(cmd *cobra.Command, args []string) error {
	db, _, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	accounts := app.NewAccountService(
		sqlite.NewUserStore(db), hasher.NewBcrypt(0), idgen.UUID{}, clock.Real{}, zerolog.Nop())

	u, err := accounts.Register(context.Background(), createEmail, createName, createPassword)
	if err != nil {
		return err
	}

	fmt.Printf("Created account %s (%s)\n", u.ID, u.Email)
	return nil
}
