package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/fincontrol-be/internal/apiclient"
	"github.com/hongminglow/fincontrol-be/internal/client"
	"github.com/hongminglow/fincontrol-be/internal/config"
	"github.com/hongminglow/fincontrol-be/internal/export"
	"github.com/hongminglow/fincontrol-be/internal/models"
	"github.com/hongminglow/fincontrol-be/internal/prefs"
	"github.com/hongminglow/fincontrol-be/internal/server"
	"github.com/hongminglow/fincontrol-be/internal/storage/memory"
)

const bossEmail = "boss@fleet.test"

type cannedAdvisor struct{}

func (cannedAdvisor) Advise(context.Context, []models.Expense) string { return "drive less" }

func newBackend(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	cfg := config.Config{
		JWTSecret:   "cli-secret",
		JWTIssuer:   "fincontrol",
		JWTTTL:      time.Hour,
		CORSOrigins: []string{"*"},
		AdminEmail:  bossEmail,
	}
	srv := httptest.NewServer(server.Handler(cfg, server.Deps{
		Store:    store,
		Advisor:  cannedAdvisor{},
		Exporter: export.NewService(store, nil),
	}))
	t.Cleanup(srv.Close)

	t.Setenv("FINCONTROL_API_URL", srv.URL)
	t.Setenv("FINCONTROL_PREFS", filepath.Join(t.TempDir(), "prefs.db"))
	t.Setenv("FINCONTROL_TIMEOUT", "5s")
	t.Setenv("FINCONTROL_ADMIN_EMAIL", "")
	return store
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(nil)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	require.NoError(t, err, "fincontrol %v: %s", args, out)
	return out
}

var savedID = regexp.MustCompile(`saved \w+ ([0-9a-f-]{36})`)

func idFrom(t *testing.T, out string) string {
	t.Helper()
	m := savedID.FindStringSubmatch(out)
	require.Len(t, m, 2, "no id in %q", out)
	return m[1]
}

func signUp(t *testing.T, email string) {
	t.Helper()
	mustExecute(t, "register", "--name", "Driver", "--email", email, "--password", "long-enough")
	mustExecute(t, "login", "--email", email, "--password", "long-enough")
}

func TestSessionSurvivesInvocations(t *testing.T) {
	newBackend(t)
	signUp(t, "dee@fleet.test")

	mustExecute(t, "expense", "add", "--desc", "Full tank", "--amount", "50", "--date", "2026-03-02")
	mustExecute(t, "earning", "add", "--desc", "Evening rides", "--amount", "120", "--date", "2026-03-02")
	mustExecute(t, "odometer", "set", "--date", "2026-03-02", "--start", "1000", "--end", "1100")

	out := mustExecute(t, "dashboard")
	assert.Regexp(t, `Balance\s+70\.00`, out)
	assert.Regexp(t, `Fuel\s+50\.00`, out)
	assert.Regexp(t, `Earnings per km\s+1\.20`, out)

	out = mustExecute(t, "daily", "--date", "2026-03-02")
	assert.Regexp(t, `Net\s+70\.00`, out)
	assert.Regexp(t, `Km\s+100`, out)

	out = mustExecute(t, "list")
	assert.Contains(t, out, "Full tank")
	assert.Contains(t, out, "-50.00")

	assert.Equal(t, "drive less\n", mustExecute(t, "advise"))

	mustExecute(t, "logout")
	_, err := execute(t, "dashboard")
	assert.ErrorIs(t, err, errSignedOut)
}

func TestExpenseRepeatAndEdit(t *testing.T) {
	newBackend(t)
	signUp(t, "dee@fleet.test")

	id := idFrom(t, mustExecute(t, "expense", "add", "--desc", "Insurance", "--amount", "90",
		"--category", models.CategoryFuel, "--date", "2026-03-02", "--repeat", models.FrequencyMonthly))

	out := mustExecute(t, "recurring")
	assert.Contains(t, out, models.FrequencyMonthly)
	assert.Contains(t, out, "2026-04-02")

	mustExecute(t, "expense", "edit", id, "--amount", "75")
	out = mustExecute(t, "list")
	assert.Contains(t, out, "-75.00")
	assert.NotContains(t, out, "-90.00")

	mustExecute(t, "expense", "delete", id)
	assert.NotContains(t, mustExecute(t, "list"), "Insurance")

	_, err := execute(t, "expense", "add", "--desc", "Oil", "--amount", "ten")
	assert.ErrorIs(t, err, models.ErrInvalid)
}

func TestCreditPayments(t *testing.T) {
	newBackend(t)
	signUp(t, "dee@fleet.test")

	id := idFrom(t, mustExecute(t, "credit", "add", "--desc", "Car loan", "--total", "1000", "--paid", "250", "--due", "2026-12-01"))

	assert.Contains(t, mustExecute(t, "credit", "pay", id, "250"), "remaining 500.00")
	_, err := execute(t, "credit", "pay", id, "0")
	assert.ErrorIs(t, err, client.ErrInvalidPayment)

	mustExecute(t, "credit", "payfull", id)
	out := mustExecute(t, "credit")
	assert.Regexp(t, `OUTSTANDING\s+0\.00`, out)
	assert.Contains(t, out, "1000.00")
}

func TestCategories(t *testing.T) {
	newBackend(t)

	mustExecute(t, "categories", "add", "Tolls")
	assert.Contains(t, mustExecute(t, "categories"), "Tolls (custom)")

	_, err := execute(t, "categories", "remove", models.CategoryFuel)
	assert.ErrorIs(t, err, client.ErrBuiltinCategory)

	mustExecute(t, "categories", "remove", "Tolls")
	assert.NotContains(t, mustExecute(t, "categories"), "Tolls")

	mustExecute(t, "categories", "add", "Tips", "--earning")
	assert.Contains(t, mustExecute(t, "categories", "--earning"), "Tips (custom)")
	assert.NotContains(t, mustExecute(t, "categories"), "Tips")
}

func TestAdminCommands(t *testing.T) {
	newBackend(t)
	mustExecute(t, "register", "--name", "Dee", "--email", "dee@fleet.test", "--password", "long-enough")
	mustExecute(t, "login", "--email", "dee@fleet.test", "--password", "long-enough")

	_, err := execute(t, "admin")
	assert.ErrorIs(t, err, client.ErrForbidden)

	assert.Contains(t, mustExecute(t, "profile", "rename", "Dee Driver"), "Dee Driver")
	assert.Contains(t, mustExecute(t, "profile"), "Dee Driver <dee@fleet.test>")

	signUp(t, bossEmail)
	out := mustExecute(t, "admin")
	assert.Contains(t, out, "dee@fleet.test")
	m := regexp.MustCompile(`(?m)^(\S+)\s+Dee Driver\s+dee@fleet\.test`).FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	deeID := m[1]

	mustExecute(t, "admin", "block", deeID)
	_, err = execute(t, "login", "--email", "dee@fleet.test", "--password", "long-enough")
	assert.ErrorIs(t, err, apiclient.ErrForbidden)

	mustExecute(t, "admin", "create", "--name", "Eve", "--email", "eve@fleet.test", "--password", "long-enough")
	assert.Contains(t, mustExecute(t, "admin"), "eve@fleet.test")
}

func TestBlockedUserIsSignedOutOnNextRun(t *testing.T) {
	store := newBackend(t)
	signUp(t, "dee@fleet.test")
	mustExecute(t, "expense", "add", "--desc", "Full tank", "--amount", "50")

	user, err := store.FindByEmail(context.Background(), "dee@fleet.test")
	require.NoError(t, err)
	require.NoError(t, store.SetProfileStatus(context.Background(), user.ID, models.StatusBlocked))

	_, err = execute(t, "dashboard")
	require.Error(t, err)
	assert.Equal(t, client.BlockedNotice, err.Error())

	saved, err := prefs.Open(context.Background(), os.Getenv("FINCONTROL_PREFS"))
	require.NoError(t, err)
	_, ok, err := saved.Get(context.Background(), prefs.KeySession)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, saved.Close())

	_, err = execute(t, "dashboard")
	assert.ErrorIs(t, err, errSignedOut)
}
