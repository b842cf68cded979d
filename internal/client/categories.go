package client

import (
	"context"
	"fmt"

	"github.com/hongminglow/fincontrol-be/internal/models"
)

// Preference keys in the local store.
const (
	PrefExpenseCategories = "expense_categories"
	PrefEarningCategories = "earning_categories"
)

// LoadPreferences restores the custom category lists from the local store.
func (a *App) LoadPreferences(ctx context.Context) error {
	if a.prefs == nil {
		return nil
	}
	expense, _, err := a.prefs.GetStrings(ctx, PrefExpenseCategories)
	if err != nil {
		return fmt.Errorf("load %s: %w", PrefExpenseCategories, err)
	}
	earning, _, err := a.prefs.GetStrings(ctx, PrefEarningCategories)
	if err != nil {
		return fmt.Errorf("load %s: %w", PrefEarningCategories, err)
	}
	a.mu.Lock()
	a.state.ExpenseCategories = models.NewCategorySet(models.DefaultExpenseCategories, expense)
	a.state.EarningCategories = models.NewCategorySet(models.DefaultEarningCategories, earning)
	a.mu.Unlock()
	return nil
}

// AddExpenseCategory adds a custom expense category.
func (a *App) AddExpenseCategory(ctx context.Context, name string) error {
	return a.editCategories(ctx, PrefExpenseCategories, name, true)
}

// RemoveExpenseCategory removes a custom expense category.
func (a *App) RemoveExpenseCategory(ctx context.Context, name string) error {
	return a.editCategories(ctx, PrefExpenseCategories, name, false)
}

// AddEarningCategory adds a custom earning category.
func (a *App) AddEarningCategory(ctx context.Context, name string) error {
	return a.editCategories(ctx, PrefEarningCategories, name, true)
}

// RemoveEarningCategory removes a custom earning category.
func (a *App) RemoveEarningCategory(ctx context.Context, name string) error {
	return a.editCategories(ctx, PrefEarningCategories, name, false)
}

func (a *App) editCategories(ctx context.Context, key, name string, add bool) error {
	a.mu.Lock()
	target := &a.state.ExpenseCategories
	if key == PrefEarningCategories {
		target = &a.state.EarningCategories
	}
	if !add && target.IsBuiltin(name) {
		a.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrBuiltinCategory, name)
	}
	var (
		next    models.CategorySet
		changed bool
	)
	if add {
		next, changed = target.Add(name)
	} else {
		next, changed = target.Remove(name)
	}
	*target = next
	custom := next.Custom()
	a.mu.Unlock()

	if !changed || a.prefs == nil {
		return nil
	}
	if err := a.prefs.PutStrings(ctx, key, custom); err != nil {
		a.log.Errorw("persist categories failed", "key", key, "error", err)
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}
