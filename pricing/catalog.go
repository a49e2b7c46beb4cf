/*
Package pricing implements the quoting core for home-care bookings.

PURPOSE:
  This package contains the pure pricing logic: the billable task catalog,
  the admin-editable pricing configuration, the surge rule evaluator, and
  the quote calculator. Nothing in here touches a database or the network.

KEY CONCEPTS IN THIS FILE (catalog.go):
  - Category: The price tier of a task (standard/hospital/doctor)
  - TaskDefinition: A billable task type with an included duration
  - Catalog: Lookup structure over task definitions

DESIGN PRINCIPLES:
  1. Purity: Same inputs always produce the same quote (required for
     re-quoting and audits)
  2. Precision: Uses decimal.Decimal to avoid floating-point money errors
  3. Explicit config: All admin-editable knobs are passed into each call;
     there are no package-level mutable globals

CATEGORY PRIORITY:
  A booking that mixes categories prices the WHOLE block at the highest
  priority category: Hospital > Doctor > Standard. An escort to a hospital
  discharge implies the premium rate for the entire visit, not a blend.

SEE ALSO:
  - config.go: Pricing configuration and surge rules
  - surge.go: Surge multiplier evaluation
  - calculator.go: Quote computation
*/
package pricing

// =============================================================================
// CATEGORY - Price tier for a task
// =============================================================================

type Category string

const (
	CategoryStandard Category = "standard"
	CategoryHospital Category = "hospital"
	CategoryDoctor   Category = "doctor"
)

// categoryPriority orders tiers for whole-block pricing.
// Hospital > Doctor > Standard.
var categoryPriority = map[Category]int{
	CategoryStandard: 1,
	CategoryDoctor:   2,
	CategoryHospital: 3,
}

// HigherPriority reports whether a outranks b for whole-block pricing.
func (c Category) HigherPriority(other Category) bool {
	return categoryPriority[c] > categoryPriority[other]
}

// =============================================================================
// TASK DEFINITION - Immutable reference data
// =============================================================================

// TaskDefinition describes a billable task type.
// Created and edited only by administrators. Tasks referenced by historical
// shifts are never deleted, only soft-disabled.
type TaskDefinition struct {
	ID              string
	Name            string
	IncludedMinutes int
	Category        Category
	Disabled        bool
}

// =============================================================================
// CATALOG - Lookup over task definitions
// =============================================================================

// Catalog indexes task definitions by id.
type Catalog struct {
	tasks map[string]TaskDefinition
	order []string
}

func NewCatalog(tasks []TaskDefinition) *Catalog {
	c := &Catalog{tasks: make(map[string]TaskDefinition, len(tasks))}
	for _, t := range tasks {
		if _, seen := c.tasks[t.ID]; !seen {
			c.order = append(c.order, t.ID)
		}
		c.tasks[t.ID] = t
	}
	return c
}

// Task returns the definition for id, if known.
func (c *Catalog) Task(id string) (TaskDefinition, bool) {
	t, ok := c.tasks[id]
	return t, ok
}

// Tasks returns all definitions in insertion order.
func (c *Catalog) Tasks() []TaskDefinition {
	out := make([]TaskDefinition, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.tasks[id])
	}
	return out
}

// IncludedMinutes returns the billable minutes for a task, honoring
// per-task duration overrides from config. Unknown ids contribute 0.
func (c *Catalog) IncludedMinutes(id string, cfg Config) int {
	t, ok := c.tasks[id]
	if !ok {
		return 0
	}
	if override, ok := cfg.DurationOverrides[id]; ok {
		return override
	}
	return t.IncludedMinutes
}

// HighestCategory returns the highest-priority category among the selected
// tasks. Unknown ids are ignored. Defaults to standard.
func (c *Catalog) HighestCategory(taskIDs []string) Category {
	best := CategoryStandard
	for _, id := range taskIDs {
		t, ok := c.tasks[id]
		if !ok {
			continue
		}
		if t.Category.HigherPriority(best) {
			best = t.Category
		}
	}
	return best
}

// ServiceNames resolves task ids to display names, skipping unknown ids.
// These names are what gets recorded on the Shift.
func (c *Catalog) ServiceNames(taskIDs []string) []string {
	var names []string
	for _, id := range taskIDs {
		if t, ok := c.tasks[id]; ok {
			names = append(names, t.Name)
		}
	}
	return names
}

// DefaultTasks is the seed catalog for a fresh install.
func DefaultTasks() []TaskDefinition {
	return []TaskDefinition{
		{ID: "personal-care", Name: "Personal Care", IncludedMinutes: 60, Category: CategoryStandard},
		{ID: "meal-prep", Name: "Meal Preparation", IncludedMinutes: 45, Category: CategoryStandard},
		{ID: "medication-reminder", Name: "Medication Reminder", IncludedMinutes: 30, Category: CategoryStandard},
		{ID: "companionship", Name: "Companionship", IncludedMinutes: 60, Category: CategoryStandard},
		{ID: "light-housekeeping", Name: "Light Housekeeping", IncludedMinutes: 45, Category: CategoryStandard},
		{ID: "hospital-discharge", Name: "Hospital Discharge Pick-up", IncludedMinutes: 120, Category: CategoryHospital},
		{ID: "doctor-escort", Name: "Doctor Appointment Escort", IncludedMinutes: 90, Category: CategoryDoctor},
		{ID: "doctor-visit", Name: "Doctor Visit Companion", IncludedMinutes: 60, Category: CategoryDoctor},
	}
}
