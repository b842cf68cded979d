package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hongminglow/fincontrol-be/internal/models"
)

func (o *options) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show accumulated balance figures",
		RunE: o.signedIn(func(_ context.Context, cmd *cobra.Command, _ []string, e *env) error {
			d := e.app.Dashboard()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "Earnings\t%s\n", d.TotalEarnings.StringFixed(2))
			fmt.Fprintf(tw, "Expenses\t%s\n", d.TotalExpenses.StringFixed(2))
			fmt.Fprintf(tw, "Balance\t%s\n", d.Balance.StringFixed(2))
			fmt.Fprintf(tw, "Fuel\t%s\n", d.FuelExpenses.StringFixed(2))
			fmt.Fprintf(tw, "Work expenses\t%s\n", d.WorkExpenses.StringFixed(2))
			fmt.Fprintf(tw, "Km driven\t%d\n", d.TotalKm)
			fmt.Fprintf(tw, "Earnings per km\t%s\n", d.EarningsPerKm.StringFixed(2))
			fmt.Fprintf(tw, "Outstanding debt\t%s\n", d.OutstandingDebt.StringFixed(2))
			for _, c := range d.ByCategory {
				fmt.Fprintf(tw, "  %s\t%s\n", c.Category, c.Total.StringFixed(2))
			}
			return tw.Flush()
		}),
	}
}

func (o *options) dailyCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Show one day's earnings, expenses and mileage",
		RunE: o.signedIn(func(_ context.Context, cmd *cobra.Command, _ []string, e *env) error {
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			f := e.app.DailyFlow(day)
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "Day\t%s\n", f.Date)
			for _, earning := range f.Earnings {
				fmt.Fprintf(tw, "  + %s\t%s\n", earning.Description, earning.Amount.StringFixed(2))
			}
			for _, expense := range f.Expenses {
				fmt.Fprintf(tw, "  - %s\t%s\n", expense.Description, expense.Amount.StringFixed(2))
			}
			fmt.Fprintf(tw, "Earnings\t%s\n", f.TotalEarnings.StringFixed(2))
			fmt.Fprintf(tw, "Expenses\t%s\n", f.TotalExpenses.StringFixed(2))
			fmt.Fprintf(tw, "Net\t%s\n", f.Net.StringFixed(2))
			fmt.Fprintf(tw, "Km\t%d\n", f.Km)
			fmt.Fprintf(tw, "Earnings per km\t%s\n", f.EarningsPerKm.StringFixed(2))
			return tw.Flush()
		}),
	}
	cmd.Flags().StringVar(&date, "date", "", "day as YYYY-MM-DD (default today)")
	return cmd
}

func (o *options) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List expenses and earnings, newest first",
		RunE: o.signedIn(func(_ context.Context, cmd *cobra.Command, _ []string, e *env) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tKIND\tID\tDESCRIPTION\tCATEGORY\tAMOUNT")
			for _, entry := range e.app.Entries() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", entry.Date, entry.Kind, entry.ID,
					entry.Description, entry.Category, entry.SignedAmount().StringFixed(2))
			}
			return tw.Flush()
		}),
	}
}

func (o *options) adviseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "advise",
		Short: "Ask the advisor about the loaded expenses",
		RunE: o.signedIn(func(ctx context.Context, cmd *cobra.Command, _ []string, e *env) error {
			printf(cmd, "%s\n", e.app.Advice(ctx))
			return nil
		}),
	}
}

func (o *options) exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the ledger as an XLSX workbook",
		RunE: o.signedIn(func(ctx context.Context, cmd *cobra.Command, _ []string, e *env) error {
			data, err := e.api.Export(ctx)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o600); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			printf(cmd, "wrote %s (%d bytes)\n", out, len(data))
			return nil
		}),
	}
	cmd.Flags().StringVarP(&out, "out", "o", "fincontrol.xlsx", "output file")
	return cmd
}

func (o *options) categoriesCmd() *cobra.Command {
	var earning bool
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List and edit expense or earning categories",
		RunE: o.run(func(_ context.Context, cmd *cobra.Command, _ []string, e *env) error {
			st := e.app.Snapshot()
			set := st.ExpenseCategories
			if earning {
				set = st.EarningCategories
			}
			for _, name := range set.All() {
				marker := ""
				if !set.IsBuiltin(name) {
					marker = " (custom)"
				}
				printf(cmd, "%s%s\n", name, marker)
			}
			return nil
		}),
	}
	cmd.PersistentFlags().BoolVar(&earning, "earning", false, "operate on earning categories")

	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME",
		Short: "Add a custom category",
		Args:  cobra.ExactArgs(1),
		RunE: o.run(func(ctx context.Context, cmd *cobra.Command, args []string, e *env) error {
			add := e.app.AddExpenseCategory
			if earning {
				add = e.app.AddEarningCategory
			}
			if err := add(ctx, args[0]); err != nil {
				return err
			}
			printf(cmd, "added %s\n", args[0])
			return nil
		}),
	}, &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a custom category",
		Args:  cobra.ExactArgs(1),
		RunE: o.run(func(ctx context.Context, cmd *cobra.Command, args []string, e *env) error {
			remove := e.app.RemoveExpenseCategory
			if earning {
				remove = e.app.RemoveEarningCategory
			}
			if err := remove(ctx, args[0]); err != nil {
				return err
			}
			printf(cmd, "removed %s\n", args[0])
			return nil
		}),
	})
	return cmd
}

func (o *options) adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage accounts (admin only)",
		RunE: o.signedIn(func(ctx context.Context, cmd *cobra.Command, _ []string, e *env) error {
			users, err := e.app.AdminUsers(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tSTATUS")
			for _, p := range users {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Email, p.Role, p.Status)
			}
			return tw.Flush()
		}),
	}

	var name, email, password string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		RunE: o.signedIn(func(ctx context.Context, cmd *cobra.Command, _ []string, e *env) error {
			p, err := e.app.AdminCreateUser(ctx, name, email, password)
			if err != nil {
				return err
			}
			printf(cmd, "created %s (%s)\n", p.Email, p.ID)
			return nil
		}),
	}
	createCmd.Flags().StringVar(&name, "name", "", "display name")
	createCmd.Flags().StringVar(&email, "email", "", "login email")
	createCmd.Flags().StringVar(&password, "password", "", "initial password")
	_ = createCmd.MarkFlagRequired("email")
	_ = createCmd.MarkFlagRequired("password")

	status := func(use, short, value string) *cobra.Command {
		return &cobra.Command{
			Use:   use + " ID",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: o.signedIn(func(ctx context.Context, cmd *cobra.Command, args []string, e *env) error {
				if err := e.app.AdminSetStatus(ctx, args[0], value); err != nil {
					return err
				}
				printf(cmd, "%s is now %s\n", args[0], value)
				return nil
			}),
		}
	}

	cmd.AddCommand(createCmd,
		status("block", "Block an account", models.StatusBlocked),
		status("unblock", "Unblock an account", models.StatusActive),
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete an account and its data",
			Args:  cobra.ExactArgs(1),
			RunE: o.signedIn(func(ctx context.Context, cmd *cobra.Command, args []string, e *env) error {
				if err := e.app.AdminDeleteUser(ctx, args[0]); err != nil {
					return err
				}
				printf(cmd, "deleted %s\n", args[0])
				return nil
			}),
		})
	return cmd
}
