package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/hongminglow/fincontrol-be/internal/models"
)

func parseAmount(flag, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: --%s %q is not a number", models.ErrInvalid, flag, raw)
	}
	return d, nil
}

// parseDay reads a YYYY-MM-DD flag, defaulting to today.
func parseDay(raw string) (models.Date, error) {
	if raw == "" {
		return models.Today(), nil
	}
	return models.ParseDate(raw)
}

func deleteCmd(o *options, what string, fn func(context.Context, *env, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a " + what,
		Args:  cobra.ExactArgs(1),
		RunE: o.signedIn(func(ctx context.Context, cmd *cobra.Command, args []string, e *env) error {
			if err := fn(ctx, e, args[0]); err != nil {
				return err
			}
			printf(cmd, "deleted %s %s\n", what, args[0])
			return nil
		}),
	}
}

type expenseFlags struct {
	description, amount, date, category, kind, observations, repeat string
	km                                                              int
}

func (f *expenseFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.description, "desc", "", "description")
	cmd.Flags().StringVar(&f.amount, "amount", "", "amount")
	cmd.Flags().StringVar(&f.date, "date", "", "day as YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&f.category, "category", models.CategoryFuel, "category")
	cmd.Flags().StringVar(&f.kind, "type", "", "WORK or PERSONAL (default derived from category)")
	cmd.Flags().IntVar(&f.km, "km", 0, "odometer reading for the expense")
	cmd.Flags().StringVar(&f.observations, "obs", "", "free-text observations")
}

// apply copies the flags that were set onto e.
func (f *expenseFlags) apply(cmd *cobra.Command, e *models.Expense) error {
	set := cmd.Flags().Changed
	if set("desc") {
		e.Description = f.description
	}
	if set("amount") {
		amount, err := parseAmount("amount", f.amount)
		if err != nil {
			return err
		}
		e.Amount = amount
	}
	if set("date") || e.Date.IsZero() {
		day, err := parseDay(f.date)
		if err != nil {
			return err
		}
		e.Date = day
	}
	if set("category") || e.Category == "" {
		e.Category = f.category
	}
	if set("type") {
		e.Type = f.kind
	}
	if set("km") {
		km := f.km
		e.Km = &km
	}
	if set("obs") {
		e.Observations = f.observations
	}
	return nil
}

func (o *options) expenseCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "expense", Short: "Manage expenses"}

	var add expenseFlags
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense",
		RunE: o.signedIn(func(ctx context.Context, cmd *cobra.Command, _ []string, e *env) error {
			var exp models.Expense
			if err := add.apply(cmd, &exp); err != nil {
				return err
			}
			saved, err := e.app.SaveExpense(ctx, exp, add.repeat)
			if err != nil {
				return err
			}
			printf(cmd, "saved expense %s\n", saved.ID)
			return nil
		}),
	}
	add.bind(addCmd)
	addCmd.Flags().StringVar(&add.repeat, "repeat", "", "also create a WEEKLY, MONTHLY or YEARLY template")
	_ = addCmd.MarkFlagRequired("desc")
	_ = addCmd.MarkFlagRequired("amount")

	var edit expenseFlags
	editCmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change an existing expense",
		Args:  cobra.ExactArgs(1),
		RunE: o.signedIn(func(ctx context.Context, cmd *cobra.Command, args []string, e *env) error {
			if err := e.app.EditExpense(args[0]); err != nil {
				return err
			}
			exp := *e.app.Snapshot().Editing
			if err := edit.apply(cmd, &exp); err != nil {
				return err
			}
			saved, err := e.app.SaveExpense(ctx, exp, "")
			if err != nil {
				return err
			}
			printf(cmd, "updated expense %s\n", saved.ID)
			return nil
		}),
	}
	edit.bind(editCmd)

	cmd.AddCommand(addCmd, editCmd, deleteCmd(o, "expense", func(ctx context.Context, e *env, id string) error {
		return e.app.DeleteExpense(ctx, id)
	}))
	return cmd
}

func (o *options) earningCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "earning", Short: "Manage earnings"}

	var description, amount, date, category string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Record an earning",
		RunE: o.signedIn(func(ctx context.Context, cmd *cobra.Command, _ []string, e *env) error {
			value, err := parseAmount("amount", amount)
			if err != nil {
				return err
			}
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			saved, err := e.app.SaveEarning(ctx, models.Earning{
				Description: description, Amount: value, Date: day, Category: category,
			})
			if err != nil {
				return err
			}
			printf(cmd, "saved earning %s\n", saved.ID)
			return nil
		}),
	}
	addCmd.Flags().StringVar(&description, "desc", "", "description")
	addCmd.Flags().StringVar(&amount, "amount", "", "amount")
	addCmd.Flags().StringVar(&date, "date", "", "day as YYYY-MM-DD (default today)")
	addCmd.Flags().StringVar(&category, "category", models.CategoryRides, "category")
	_ = addCmd.MarkFlagRequired("desc")
	_ = addCmd.MarkFlagRequired("amount")

	cmd.AddCommand(addCmd, deleteCmd(o, "earning", func(ctx context.Context, e *env, id string) error {
		return e.app.DeleteEarning(ctx, id)
	}))
	return cmd
}

func (o *options) odometerCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "odometer", Short: "Manage daily odometer readings"}

	var date string
	var start, end int
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Record the start and end readings of a day",
		RunE: o.signedIn(func(ctx context.Context, cmd *cobra.Command, _ []string, e *env) error {
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			saved, err := e.app.UpdateOdometer(ctx, models.OdometerEntry{Date: day, StartKm: start, EndKm: end})
			if err != nil {
				return err
			}
			printf(cmd, "odometer %s: %d km\n", saved.Date, saved.Distance())
			return nil
		}),
	}
	setCmd.Flags().StringVar(&date, "date", "", "day as YYYY-MM-DD (default today)")
	setCmd.Flags().IntVar(&start, "start", 0, "reading at the start of the day")
	setCmd.Flags().IntVar(&end, "end", 0, "reading at the end of the day")

	cmd.AddCommand(setCmd, deleteCmd(o, "odometer entry", func(ctx context.Context, e *env, id string) error {
		return e.app.DeleteOdometer(ctx, id)
	}))
	return cmd
}

func (o *options) creditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credit",
		Short: "Show and manage debts",
		RunE: o.signedIn(func(_ context.Context, cmd *cobra.Command, _ []string, e *env) error {
			st := e.app.Snapshot()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDESCRIPTION\tCATEGORY\tDUE\tTOTAL\tPAID\tREMAINING")
			for _, c := range st.Credits {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.Description, c.Category, c.DueDate,
					c.TotalAmount.StringFixed(2), c.PaidAmount.StringFixed(2), c.RemainingBalance.StringFixed(2))
			}
			fmt.Fprintf(tw, "\t\t\t\t\tOUTSTANDING\t%s\n", e.app.Dashboard().OutstandingDebt.StringFixed(2))
			return tw.Flush()
		}),
	}

	var description, total, paid, due, category string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Record a debt",
		RunE: o.signedIn(func(ctx context.Context, cmd *cobra.Command, _ []string, e *env) error {
			totalAmount, err := parseAmount("total", total)
			if err != nil {
				return err
			}
			paidAmount, err := parseAmount("paid", paid)
			if err != nil {
				return err
			}
			day, err := parseDay(due)
			if err != nil {
				return err
			}
			saved, err := e.app.SaveCredit(ctx, models.CreditEntry{
				Description: description, TotalAmount: totalAmount, PaidAmount: paidAmount,
				DueDate: day, Category: category,
			})
			if err != nil {
				return err
			}
			printf(cmd, "saved credit %s, remaining %s\n", saved.ID, saved.RemainingBalance.StringFixed(2))
			return nil
		}),
	}
	addCmd.Flags().StringVar(&description, "desc", "", "description")
	addCmd.Flags().StringVar(&total, "total", "", "total amount")
	addCmd.Flags().StringVar(&paid, "paid", "0", "amount already paid")
	addCmd.Flags().StringVar(&due, "due", "", "due day as YYYY-MM-DD (default today)")
	addCmd.Flags().StringVar(&category, "category", models.CreditLoan, "LOAN, FINANCING, CARD or OTHER")
	_ = addCmd.MarkFlagRequired("desc")
	_ = addCmd.MarkFlagRequired("total")

	payCmd := &cobra.Command{
		Use:   "pay ID AMOUNT",
		Short: "Register a partial payment",
		Args:  cobra.ExactArgs(2),
		RunE: o.signedIn(func(ctx context.Context, cmd *cobra.Command, args []string, e *env) error {
			amount, err := parseAmount("amount", args[1])
			if err != nil {
				return err
			}
			saved, err := e.app.RegisterPayment(ctx, args[0], amount)
			if err != nil {
				return err
			}
			printf(cmd, "credit %s remaining %s\n", saved.ID, saved.RemainingBalance.StringFixed(2))
			return nil
		}),
	}

	payFullCmd := &cobra.Command{
		Use:   "payfull ID",
		Short: "Mark a debt as paid",
		Args:  cobra.ExactArgs(1),
		RunE: o.signedIn(func(ctx context.Context, cmd *cobra.Command, args []string, e *env) error {
			saved, err := e.app.PayInFull(ctx, args[0])
			if err != nil {
				return err
			}
			printf(cmd, "credit %s paid in full\n", saved.ID)
			return nil
		}),
	}

	cmd.AddCommand(addCmd, payCmd, payFullCmd, deleteCmd(o, "credit", func(ctx context.Context, e *env, id string) error {
		return e.app.DeleteCredit(ctx, id)
	}))
	return cmd
}

func (o *options) recurringCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recurring",
		Short: "Show and manage recurring expense templates",
		RunE: o.signedIn(func(_ context.Context, cmd *cobra.Command, _ []string, e *env) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDESCRIPTION\tCATEGORY\tFREQUENCY\tNEXT\tAMOUNT")
			for _, r := range e.app.Snapshot().Recurring {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Description, r.Category, r.Frequency,
					r.NextDueDate, r.Amount.StringFixed(2))
			}
			return tw.Flush()
		}),
	}

	var description, amount, category, frequency, next string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a template",
		RunE: o.signedIn(func(ctx context.Context, cmd *cobra.Command, _ []string, e *env) error {
			value, err := parseAmount("amount", amount)
			if err != nil {
				return err
			}
			day, err := parseDay(next)
			if err != nil {
				return err
			}
			saved, err := e.app.SaveRecurring(ctx, models.RecurringExpense{
				Description: description, Amount: value, Category: category,
				Frequency: frequency, NextDueDate: day,
			})
			if err != nil {
				return err
			}
			printf(cmd, "saved template %s, next due %s\n", saved.ID, saved.NextDueDate)
			return nil
		}),
	}
	addCmd.Flags().StringVar(&description, "desc", "", "description")
	addCmd.Flags().StringVar(&amount, "amount", "", "amount")
	addCmd.Flags().StringVar(&category, "category", models.CategoryFuel, "category")
	addCmd.Flags().StringVar(&frequency, "frequency", models.FrequencyMonthly, "WEEKLY, MONTHLY or YEARLY")
	addCmd.Flags().StringVar(&next, "next", "", "next due day as YYYY-MM-DD (default today)")
	_ = addCmd.MarkFlagRequired("desc")
	_ = addCmd.MarkFlagRequired("amount")

	cmd.AddCommand(addCmd, deleteCmd(o, "template", func(ctx context.Context, e *env, id string) error {
		return e.app.DeleteRecurring(ctx, id)
	}))
	return cmd
}
