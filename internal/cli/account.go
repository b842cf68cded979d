package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/hongminglow/fincontrol-be/internal/client"
)

func (o *options) registerCmd() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: o.run(func(ctx context.Context, cmd *cobra.Command, _ []string, e *env) error {
			p, err := e.api.Register(ctx, name, email, password)
			if err != nil {
				return err
			}
			printf(cmd, "registered %s (%s)\n", p.Email, p.Name)
			return nil
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (o *options) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and load the ledger",
		RunE: o.run(func(ctx context.Context, cmd *cobra.Command, _ []string, e *env) error {
			if _, err := e.api.SignIn(ctx, email, password); err != nil {
				return err
			}
			st := e.app.Snapshot()
			if st.Profile == nil {
				if st.Notice != "" {
					return errors.New(st.Notice)
				}
				return client.ErrNoSession
			}
			printf(cmd, "signed in as %s (%s)\n", st.Profile.Email, st.Profile.Role)
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (o *options) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		RunE: o.run(func(ctx context.Context, cmd *cobra.Command, _ []string, e *env) error {
			if err := e.app.SignOut(ctx); err != nil {
				return err
			}
			printf(cmd, "signed out\n")
			return nil
		}),
	}
}

func (o *options) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the signed-in profile",
		RunE: o.signedIn(func(_ context.Context, cmd *cobra.Command, _ []string, e *env) error {
			p, ok := e.app.Profile()
			if !ok {
				return client.ErrNoSession
			}
			printf(cmd, "%s <%s> role=%s status=%s\n", p.Name, p.Email, p.Role, p.Status)
			return nil
		}),
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "rename NAME",
		Short: "Change the display name",
		Args:  cobra.ExactArgs(1),
		RunE: o.signedIn(func(ctx context.Context, cmd *cobra.Command, args []string, e *env) error {
			p, err := e.app.UpdateProfile(ctx, args[0])
			if err != nil {
				return err
			}
			printf(cmd, "name set to %s\n", p.Name)
			return nil
		}),
	})
	return cmd
}
