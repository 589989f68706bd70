package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"minilibrary/internal/access"
	"minilibrary/internal/book"
	"minilibrary/internal/circulation"
	"minilibrary/internal/stats"
	"minilibrary/internal/user"
)

type roleChanger interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	UpdateRole(ctx context.Context, actor access.Actor, in user.RoleUpdate) (user.User, error)
}

func newSetRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <email> <ADMIN|LIBRARIAN|MEMBER>",
		Short: "Change an account's role",
		Long: `Change an account's role. The change applies to the user's next request.

Examples:
  libadmin set-role lena@library.test LIBRARIAN
  libadmin set-role milo@library.test MEMBER`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			users := user.NewService(user.NewPostgresRepo(pool, flagTimeout), logger)
			return setRole(cmd.Context(), cmd.OutOrStdout(), users, args[0], args[1])
		},
	}
}

func setRole(ctx context.Context, w io.Writer, users roleChanger, email, role string) error {
	u, err := users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("looking up %s: %w", email, err)
	}
	target := strings.ToUpper(strings.TrimSpace(role))
	if u.Role == access.Role(target) {
		warn(w, "%s is already %s", u.Email, u.Role)
		return nil
	}
	updated, err := users.UpdateRole(ctx, access.System, user.RoleUpdate{UserID: u.ID, Role: target})
	if err != nil {
		return err
	}
	ok(w, "%s: %s -> %s", updated.Email, u.Role, updated.Role)
	return nil
}

func newUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List accounts with their activity counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			users := user.NewService(user.NewPostgresRepo(pool, flagTimeout), logger)
			accounts, err := users.List(cmd.Context(), access.System)
			if err != nil {
				return err
			}
			printAccounts(cmd.OutOrStdout(), accounts)
			return nil
		},
	}
}

func printAccounts(w io.Writer, accounts []user.Account) {
	if len(accounts) == 0 {
		warn(w, "No accounts")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "EMAIL\tNAME\tROLE\tLOANS\tREVIEWS")
	for _, a := range accounts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", a.Email, a.Name, roleColor(a.Role), a.TransactionCount, a.ReviewCount)
	}
	_ = tw.Flush()
}

func roleColor(r access.Role) string {
	switch r {
	case access.Admin:
		return color.MagentaString(string(r))
	case access.Librarian:
		return color.BlueString(string(r))
	}
	return string(r)
}

type expirer interface {
	ExpireReservations(ctx context.Context, actor access.Actor) (int, error)
}

func newExpireCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expire-reservations",
		Short: "Mark lapsed pending reservations as expired",
		Long: `Mark every pending reservation whose expiry has passed as EXPIRED.

Safe to run from cron; running it twice changes nothing the second time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := circulation.NewService(circulation.NewPostgresStore(pool, flagTimeout), circulation.WithLogger(logger))
			if err != nil {
				return err
			}
			return expire(cmd.Context(), cmd.OutOrStdout(), svc)
		},
	}
}

func expire(ctx context.Context, w io.Writer, svc expirer) error {
	n, err := svc.ExpireReservations(ctx, access.System)
	if err != nil {
		return err
	}
	if n == 0 {
		ok(w, "No lapsed reservations")
		return nil
	}
	ok(w, "Expired %d reservation(s)", n)
	return nil
}

func newExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the inventory as CSV",
		Long: `Write the inventory as CSV, to stdout or to a file.

Examples:
  libadmin export > inventory.csv
  libadmin export --out inventory.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			books := book.NewService(book.NewPostgresRepo(pool, flagTimeout), nil)

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := books.ExportCSV(cmd.Context(), access.System, w); err != nil {
				return err
			}
			if out != "" {
				ok(cmd.ErrOrStderr(), "Wrote %s", out)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: stdout)")
	return cmd
}

func newStatsCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the circulation dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := stats.NewService(stats.NewSQLXRepoFromPool(pool, flagTimeout))
			d, err := svc.Dashboard(cmd.Context(), access.System)
			if err != nil {
				return err
			}
			if jsonOut {
				enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(d)
			}
			printDashboard(cmd.OutOrStdout(), d)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Machine-readable JSON output")
	return cmd
}

func printDashboard(w io.Writer, d stats.Dashboard) {
	header(w, "Library")
	fmt.Fprintf(w, "  Books:            %d\n", d.TotalBooks)
	fmt.Fprintf(w, "  Users:            %d\n", d.TotalUsers)
	fmt.Fprintf(w, "  Active checkouts: %d\n", d.ActiveCheckouts)
	overdue := fmt.Sprintf("%d", d.OverdueCount)
	if d.OverdueCount > 0 {
		overdue = color.RedString(overdue)
	}
	fmt.Fprintf(w, "  Overdue:          %s\n", overdue)

	if len(d.GenreCounts) > 0 {
		fmt.Fprintln(w)
		header(w, "Genres")
		for _, g := range d.GenreCounts {
			fmt.Fprintf(w, "  %-20s %d\n", g.Genre, g.Count)
		}
	}

	fmt.Fprintln(w)
	header(w, "Checkouts per month")
	for _, m := range d.MonthlyCheckouts {
		fmt.Fprintf(w, "  %s  %s %d\n", m.Month, strings.Repeat("#", m.Count), m.Count)
	}

	if len(d.RecentTransactions) > 0 {
		fmt.Fprintln(w)
		header(w, "Recent activity")
		for _, t := range d.RecentTransactions {
			fmt.Fprintf(w, "  %s  %-8s  %s (%s)\n", t.CheckoutDate.Format("2006-01-02"), t.Status, t.BookTitle, t.UserName)
		}
	}
}
