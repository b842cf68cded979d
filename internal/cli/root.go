// Package cli implements the fincontrol command-line client on top of the
// client engine.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hongminglow/fincontrol-be/internal/apiclient"
	"github.com/hongminglow/fincontrol-be/internal/client"
	"github.com/hongminglow/fincontrol-be/internal/config"
	"github.com/hongminglow/fincontrol-be/internal/prefs"
)

// errSignedOut is returned by commands that need a stored session.
var errSignedOut = errors.New("not signed in; run `fincontrol login` first")

type options struct {
	cfg config.ClientConfig
	log *zap.SugaredLogger
}

// env is one command invocation's view of the backend.
type env struct {
	api   *apiclient.Client
	app   *client.App
	prefs *prefs.Store
	stop  []func()
}

// NewRootCommand builds the command tree. Each invocation restores the
// session saved in the preferences file and synchronizes it before running.
func NewRootCommand(log *zap.SugaredLogger) *cobra.Command {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	o := &options{cfg: config.LoadClient(), log: log}

	root := &cobra.Command{
		Use:           "fincontrol",
		Short:         "Track a driver's expenses, earnings, mileage and debts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&o.cfg.APIURL, "api", o.cfg.APIURL, "backend base URL")
	root.PersistentFlags().StringVar(&o.cfg.PrefsPath, "prefs", o.cfg.PrefsPath, "local preferences file")
	root.PersistentFlags().DurationVar(&o.cfg.Timeout, "timeout", o.cfg.Timeout, "backend request timeout")

	root.AddCommand(
		o.registerCmd(), o.loginCmd(), o.logoutCmd(), o.profileCmd(),
		o.dashboardCmd(), o.dailyCmd(), o.listCmd(), o.adviseCmd(), o.exportCmd(),
		o.expenseCmd(), o.earningCmd(), o.odometerCmd(), o.creditCmd(), o.recurringCmd(),
		o.categoriesCmd(), o.adminCmd(),
	)
	return root
}

type runner func(ctx context.Context, cmd *cobra.Command, args []string, e *env) error

// run opens the environment around fn.
func (o *options) run(fn runner) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		e, err := o.open(ctx)
		if err != nil {
			return err
		}
		defer e.close()
		return fn(ctx, cmd, args, e)
	}
}

// signedIn is run for commands that operate on the current user's ledger.
func (o *options) signedIn(fn runner) func(*cobra.Command, []string) error {
	return o.run(func(ctx context.Context, cmd *cobra.Command, args []string, e *env) error {
		st := e.app.Snapshot()
		if st.Session == nil {
			if st.Notice != "" {
				return errors.New(st.Notice)
			}
			return errSignedOut
		}
		return fn(ctx, cmd, args, e)
	})
}

func (o *options) open(ctx context.Context) (*env, error) {
	store, err := prefs.Open(ctx, o.cfg.PrefsPath)
	if err != nil {
		return nil, err
	}
	api := apiclient.New(o.cfg.APIURL, o.cfg.Timeout, o.log)
	app := client.New(client.Options{
		Ledger:     api,
		Auth:       api,
		Advisor:    api,
		Prefs:      store,
		Admin:      api,
		AdminEmail: o.cfg.AdminEmail,
		Logger:     o.log,
	})
	e := &env{api: api, app: app, prefs: store}

	e.stop = append(e.stop, api.Subscribe(func(s *client.Session) {
		e.persistSession(ctx, s)
	}))
	e.stop = append(e.stop, app.Start(ctx))

	var saved client.Session
	ok, err := store.GetJSON(ctx, prefs.KeySession, &saved)
	if err != nil {
		o.log.Warnw("read saved session failed", "error", err)
	}
	if ok && saved.Token != "" {
		api.Restore(&saved)
	}
	return e, nil
}

func (e *env) persistSession(ctx context.Context, s *client.Session) {
	var err error
	if s == nil {
		err = e.prefs.Delete(ctx, prefs.KeySession)
	} else {
		err = e.prefs.PutJSON(ctx, prefs.KeySession, s)
	}
	if err != nil {
		zap.S().Warnw("persist session failed", "error", err)
	}
}

func (e *env) close() {
	for i := len(e.stop) - 1; i >= 0; i-- {
		e.stop[i]()
	}
	if err := e.prefs.Close(); err != nil {
		zap.S().Warnw("close preferences failed", "error", err)
	}
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
