package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"minilibrary/internal/config"
	"minilibrary/internal/platform/postgres"
)

var (
	pool   *pgxpool.Pool
	logger *slog.Logger

	flagNoColor bool
	flagTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "libadmin",
	Short: "Operator tasks for the library service",
	Long: `libadmin talks to the library database directly and acts with full
administrator rights.

It reads DB_DSN from the environment, .env or .env.local.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if flagNoColor || !isTTY() {
			color.NoColor = true
		}
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))

		config.LoadEnvFiles()
		var err error
		pool, err = postgres.Open(cmd.Context(), config.LoadDatabaseDSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if pool != nil {
			pool.Close()
		}
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "db-timeout", 10*time.Second, "Per-query database timeout")

	rootCmd.AddCommand(
		newSetRoleCmd(),
		newUsersCmd(),
		newExpireCmd(),
		newExportCmd(),
		newStatsCmd(),
	)
}

func isTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// ok prints a green success line.
func ok(w io.Writer, format string, a ...any) {
	fmt.Fprintln(w, color.GreenString("✓"), fmt.Sprintf(format, a...))
}

// warn prints a yellow warning line.
func warn(w io.Writer, format string, a ...any) {
	fmt.Fprintln(w, color.YellowString("!"), fmt.Sprintf(format, a...))
}

func header(w io.Writer, format string, a ...any) {
	fmt.Fprintln(w, color.CyanString(fmt.Sprintf(format, a...)))
}
