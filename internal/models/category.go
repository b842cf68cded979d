package models

import (
	"slices"
	"strings"
)

// Built-in expense categories.
const (
	CategoryFuel          = "Fuel"
	CategoryMaintenance   = "Vehicle Maintenance"
	CategoryInsurance     = "Insurance/Taxes"
	CategoryVehicleRental = "Vehicle Rental"
	CategoryWorkFood      = "Food (Work)"
	CategoryHousehold     = "Household Bills"
	CategoryRent          = "Rent"
	CategoryHealth        = "Health"
	CategoryLeisure       = "Leisure"
	CategoryOther         = "Other"
)

// CategoryRides is the built-in earning category.
const CategoryRides = "Rides/Delivery"

// DefaultExpenseCategories lists the built-in expense categories.
var DefaultExpenseCategories = []string{
	CategoryFuel,
	CategoryMaintenance,
	CategoryInsurance,
	CategoryVehicleRental,
	CategoryWorkFood,
	CategoryHousehold,
	CategoryRent,
	CategoryHealth,
	CategoryLeisure,
	CategoryOther,
}

// DefaultEarningCategories lists the built-in earning categories.
var DefaultEarningCategories = []string{CategoryRides}

// CategorySet is a user-extensible set of category names on top of a fixed
// built-in list.
type CategorySet struct {
	builtin []string
	custom  []string
}

// NewCategorySet creates a set with the given built-ins and custom names.
// Custom names duplicating a built-in are dropped.
func NewCategorySet(builtin, custom []string) CategorySet {
	s := CategorySet{builtin: slices.Clone(builtin)}
	for _, c := range custom {
		s, _ = s.Add(c)
	}
	return s
}

// All returns built-ins followed by custom names.
func (s CategorySet) All() []string {
	return append(slices.Clone(s.builtin), s.custom...)
}

// Custom returns only the user-added names.
func (s CategorySet) Custom() []string { return slices.Clone(s.custom) }

// Contains reports whether name is in the set.
func (s CategorySet) Contains(name string) bool {
	return slices.Contains(s.builtin, name) || slices.Contains(s.custom, name)
}

// IsBuiltin reports whether name is a built-in category.
func (s CategorySet) IsBuiltin(name string) bool { return slices.Contains(s.builtin, name) }

// Add returns the set with name added and whether it changed.
func (s CategorySet) Add(name string) (CategorySet, bool) {
	name = strings.TrimSpace(name)
	if name == "" || s.Contains(name) {
		return s, false
	}
	s.custom = append(slices.Clone(s.custom), name)
	return s, true
}

// Remove returns the set without the custom category name and whether it
// changed. Built-ins are never removed.
func (s CategorySet) Remove(name string) (CategorySet, bool) {
	i := slices.Index(s.custom, name)
	if i < 0 {
		return s, false
	}
	s.custom = slices.Delete(slices.Clone(s.custom), i, i+1)
	return s, true
}
