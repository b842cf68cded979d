// Package recurring materializes due recurring templates into expenses.
package recurring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/hongminglow/fincontrol-be/internal/models"
	"github.com/hongminglow/fincontrol-be/internal/storage"
)

// maxCatchUp bounds how many periods one template may generate in a sweep.
const maxCatchUp = 520

// instanceNamespace seeds the deterministic ids of generated expenses.
var instanceNamespace = uuid.MustParse("6f1c5a43-3f55-4c1e-9a43-6b7d0d3f2e10")

// InstanceID is the id of the expense a template generates for day. The
// same template and day always map to the same id, so repeated sweeps
// upsert instead of duplicating.
func InstanceID(templateID string, day models.Date) string {
	return uuid.NewSHA1(instanceNamespace, []byte(templateID+"|"+day.String())).String()
}

// Sweeper generates expenses for due templates and advances their next due
// date.
type Sweeper struct {
	source storage.RecurringSource
	ledger storage.Ledger
	log    *zap.SugaredLogger
	now    func() time.Time
}

func NewSweeper(source storage.RecurringSource, ledger storage.Ledger, log *zap.SugaredLogger) *Sweeper {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Sweeper{source: source, ledger: ledger, log: log, now: time.Now}
}

// Sweep generates one expense per period for every template due on or
// before asOf. Failures of one template do not stop the others.
func (s *Sweeper) Sweep(ctx context.Context, asOf models.Date) (int, error) {
	due, err := s.source.ListDueRecurring(ctx, asOf)
	if err != nil {
		return 0, fmt.Errorf("list due templates: %w", err)
	}
	var (
		generated int
		errs      []error
	)
	for _, d := range due {
		n, err := s.sweepOne(ctx, d, asOf)
		generated += n
		if err != nil {
			s.log.Errorw("recurring sweep failed", "template_id", d.Template.ID, "user_id", d.OwnerID, "error", err)
			errs = append(errs, fmt.Errorf("template %s: %w", d.Template.ID, err))
		}
	}
	s.log.Infow("recurring sweep done", "as_of", asOf.String(), "templates", len(due), "generated", generated)
	return generated, errors.Join(errs...)
}

func (s *Sweeper) sweepOne(ctx context.Context, d storage.DueTemplate, asOf models.Date) (int, error) {
	tmpl := d.Template
	if !models.ValidFrequency(tmpl.Frequency) {
		return 0, fmt.Errorf("%w: unknown frequency %q", models.ErrInvalid, tmpl.Frequency)
	}
	generated := 0
	next := tmpl.NextDueDate
	for i := 0; !next.After(asOf) && i < maxCatchUp; i++ {
		e := models.Expense{
			ID:                  InstanceID(tmpl.ID, next),
			Description:         tmpl.Description,
			Amount:              tmpl.Amount,
			Date:                next,
			Category:            tmpl.Category,
			Type:                models.DefaultExpenseType(tmpl.Category),
			IsRecurringInstance: true,
		}
		if _, err := s.ledger.Expenses().Upsert(ctx, d.OwnerID, e); err != nil {
			return generated, fmt.Errorf("create instance %s: %w", next, err)
		}
		generated++
		next = models.AdvanceDate(next, tmpl.Frequency)
	}
	tmpl.NextDueDate = next
	if _, err := s.ledger.Recurring().Upsert(ctx, d.OwnerID, tmpl); err != nil {
		return generated, fmt.Errorf("advance template: %w", err)
	}
	return generated, nil
}

// Schedule runs Sweep on the cron spec until ctx is done. The returned func
// stops the scheduler and waits for a running sweep.
func (s *Sweeper) Schedule(ctx context.Context, spec string) (func(), error) {
	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(spec, func() {
		if _, err := s.Sweep(ctx, models.DateOf(s.now())); err != nil {
			s.log.Warnw("scheduled recurring sweep finished with errors", "error", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", spec, err)
	}
	c.Start()
	s.log.Infow("recurring sweep scheduled", "schedule", spec)
	return func() { <-c.Stop().Done() }, nil
}
