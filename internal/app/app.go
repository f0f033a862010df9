package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"lembas/internal/api"
	"lembas/internal/calendar"
	"lembas/internal/ingredient"
	"lembas/internal/planner"
	"lembas/internal/recipe"
	"lembas/internal/shopping"
	"lembas/internal/state"

	"github.com/sirupsen/logrus"
)

// NetworkErrorMessage is the notification shown for any failed backend call.
const NetworkErrorMessage = "Network error"

// Notifier shows a short transient message to the user.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

// Notify calls f.
func (f NotifierFunc) Notify(message string) { f(message) }

// ExportStore persists exported shopping lists.
type ExportStore interface {
	Save(ctx context.Context, export *shopping.Export) (int64, error)
}

// ExportRecorder counts exports.
type ExportRecorder interface {
	IncExports()
}

// Option configures an App.
type Option func(*App)

// WithNotifier sets where network failures are reported.
func WithNotifier(n Notifier) Option {
	return func(a *App) { a.notifier = n }
}

// WithExportStore enables saving exported lists.
func WithExportStore(s ExportStore) Option {
	return func(a *App) { a.exports = s }
}

// WithExportRecorder counts exports, e.g. in Prometheus.
func WithExportRecorder(r ExportRecorder) Option {
	return func(a *App) { a.recorder = r }
}

// WithWeekStart sets the first day of the meal plan range.
func WithWeekStart(d time.Weekday) Option {
	return func(a *App) { a.weekStart = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// App holds the application's dependencies and the cached state of each domain area.
// Every area is updated independently.
type App struct {
	client   api.Client
	log      logrus.FieldLogger
	notifier Notifier
	exports  ExportStore
	recorder ExportRecorder

	weekStart time.Weekday
	now       func() time.Time

	Recipes         *state.Resource[[]recipe.Recipe]
	Ingredients     *state.Resource[[]ingredient.Ingredient]
	UserIngredients *state.Resource[[]ingredient.Ingredient]
	Schedule        *state.Resource[[]ingredient.Scheduled]
	Search          *state.Resource[[]ingredient.Ingredient]
	Days            *state.Resource[[]planner.Day]
	List            *state.Resource[shopping.Editable]

	mu          sync.Mutex
	today       string
	rangeStart  time.Time
	selectedDay string
}

// NewApp creates and initializes a new App instance.
func NewApp(client api.Client, log logrus.FieldLogger, opts ...Option) *App {
	a := &App{
		client:    client,
		log:       log,
		notifier:  NotifierFunc(func(string) {}),
		weekStart: time.Monday,
		now:       time.Now,

		Recipes:         state.NewResource([]recipe.Recipe{}),
		Ingredients:     state.NewResource([]ingredient.Ingredient{}),
		UserIngredients: state.NewResource([]ingredient.Ingredient{}),
		Schedule:        state.NewResource([]ingredient.Scheduled{}),
		Search:          state.NewResource([]ingredient.Ingredient{}),
		Days:            state.NewResource([]planner.Day{}),
		List:            state.NewResource(shopping.ToEditable(shopping.List{})),
	}
	for _, opt := range opts {
		opt(a)
	}

	now := a.now()
	a.today = calendar.ISODate(now)
	a.rangeStart = a.initialRangeStart(now)
	return a
}

func (a *App) initialRangeStart(now time.Time) time.Time {
	return planner.WeekContaining(now, a.weekStart).From
}

// fail logs a failed load and surfaces it once as a generic notification.
// Superseded requests are dropped silently.
func (a *App) fail(area string, err error) error {
	if errors.Is(err, state.ErrSuperseded) {
		a.log.WithField("area", area).Debug("Discarded superseded response")
		return err
	}
	a.log.WithError(err).WithField("area", area).Error("Backend request failed")
	a.notifier.Notify(NetworkErrorMessage)
	return err
}

// Ping checks the backend is reachable.
func (a *App) Ping(ctx context.Context) error {
	if err := a.client.Ping(ctx); err != nil {
		return a.fail("health", err)
	}
	return nil
}

// SyncRecipes reloads all recipes.
func (a *App) SyncRecipes(ctx context.Context) ([]recipe.Recipe, error) {
	recipes, err := state.Load(ctx, a.Recipes, a.client.Recipes)
	if err != nil {
		return nil, a.fail("recipes", err)
	}
	return recipes, nil
}

// SyncIngredients reloads the ingredient catalogue.
func (a *App) SyncIngredients(ctx context.Context) ([]ingredient.Ingredient, error) {
	ingredients, err := state.Load(ctx, a.Ingredients, a.client.Ingredients)
	if err != nil {
		return nil, a.fail("ingredients", err)
	}
	return ingredients, nil
}

// SyncUserIngredients reloads the user's custom ingredients.
func (a *App) SyncUserIngredients(ctx context.Context) ([]ingredient.Ingredient, error) {
	ingredients, err := state.Load(ctx, a.UserIngredients, a.client.UserIngredients)
	if err != nil {
		return nil, a.fail("user_ingredients", err)
	}
	return ingredients, nil
}

// SyncSchedule reloads the recurring purchases.
func (a *App) SyncSchedule(ctx context.Context) ([]ingredient.Scheduled, error) {
	scheduled, err := state.Load(ctx, a.Schedule, a.client.Schedule)
	if err != nil {
		return nil, a.fail("schedule", err)
	}
	return scheduled, nil
}

// SearchIngredients runs an ingredient search. A newer search discards the result of an older one.
func (a *App) SearchIngredients(ctx context.Context, query string) ([]ingredient.Ingredient, error) {
	results, err := state.Load(ctx, a.Search, func(ctx context.Context) ([]ingredient.Ingredient, error) {
		return a.client.SearchIngredients(ctx, query)
	})
	if err != nil {
		return nil, a.fail("search", err)
	}
	return results, nil
}

// SyncDays reloads the planned days of the current range.
func (a *App) SyncDays(ctx context.Context) ([]planner.Day, error) {
	week := a.Range()
	days, err := state.Load(ctx, a.Days, func(ctx context.Context) ([]planner.Day, error) {
		return a.client.Days(ctx, week.From, week.To)
	})
	if err != nil {
		return nil, a.fail("days", err)
	}
	return days, nil
}

// SyncList reloads the shopping list of the current range. Ticks are reset to their defaults.
func (a *App) SyncList(ctx context.Context) (shopping.Editable, error) {
	week := a.Range()
	list, err := state.Load(ctx, a.List, func(ctx context.Context) (shopping.Editable, error) {
		l, err := a.client.ShoppingList(ctx, week.From, week.To)
		if err != nil {
			return shopping.Editable{}, err
		}
		return shopping.ToEditable(*l), nil
	})
	if err != nil {
		return shopping.Editable{}, a.fail("list", err)
	}
	return list.Clone(), nil
}

// ToggleListItem flips the ticked flag of one shopping list entry.
func (a *App) ToggleListItem(c shopping.Category, i int) error {
	return a.List.Update(func(e *shopping.Editable) error {
		return e.Toggle(c, i)
	})
}

// ShoppingList returns a copy of the cached shopping list that is safe to read
// while items are toggled.
func (a *App) ShoppingList() shopping.Editable {
	var list shopping.Editable
	a.List.Read(func(e shopping.Editable) {
		list = e.Clone()
	})
	return list
}

// Range returns the meal plan range currently shown.
func (a *App) Range() planner.Week {
	a.mu.Lock()
	defer a.mu.Unlock()
	return planner.WeekFrom(a.rangeStart)
}

// AdjustRange moves the range by days.
func (a *App) AdjustRange(days int) planner.Week {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rangeStart = calendar.AddDays(a.rangeStart, days)
	return planner.WeekFrom(a.rangeStart)
}

// ResetRange returns to the week containing today.
func (a *App) ResetRange() planner.Week {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rangeStart = a.initialRangeStart(a.now())
	return planner.WeekFrom(a.rangeStart)
}

// IsCurrentWeek reports whether the range contains today.
func (a *App) IsCurrentWeek() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rangeStart.Equal(a.initialRangeStart(a.now()))
}

// Today returns the ISO date the app was started on.
func (a *App) Today() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.today
}

// SelectDay marks an ISO date as selected for planning.
func (a *App) SelectDay(date string) error {
	if _, err := calendar.ParseISODate(date); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.selectedDay = date
	return nil
}

// SelectedDay returns the selected ISO date, if any.
func (a *App) SelectedDay() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selectedDay
}

// ExportList renders the ticked items of the current list as plaintext.
// When save is set and an export store is configured, the export is kept in the history.
func (a *App) ExportList(ctx context.Context, save bool) (string, error) {
	var quantities []ingredient.Quantity
	a.List.Read(func(e shopping.Editable) {
		quantities = shopping.ToQuantities(e)
	})
	text := shopping.Plaintext(quantities)

	if a.recorder != nil {
		a.recorder.IncExports()
	}

	if save && a.exports != nil {
		week := a.Range()
		export := &shopping.Export{
			From:  week.FromISO(),
			To:    week.ToISO(),
			Items: quantities,
			Text:  text,
		}
		if _, err := a.exports.Save(ctx, export); err != nil {
			return text, fmt.Errorf("failed to save export: %w", err)
		}
		a.log.WithFields(logrus.Fields{"export_id": export.ID, "items": len(quantities)}).Info("Shopping list exported")
	}
	return text, nil
}

// FindRecipe returns a cached recipe by id.
func (a *App) FindRecipe(id int64) (recipe.Recipe, bool) {
	for _, r := range a.Recipes.Snapshot().Data {
		if r.ID == id {
			return r, true
		}
	}
	return recipe.Recipe{}, false
}

// ScaleRecipe scales a cached recipe. Portions below one are rejected before scaling.
func (a *App) ScaleRecipe(id int64, portions int) (recipe.Recipe, bool, error) {
	r, ok := a.FindRecipe(id)
	if !ok {
		return recipe.Recipe{}, false, fmt.Errorf("recipe %d not found", id)
	}
	if r.Portions < 1 || portions < 1 {
		return recipe.Recipe{}, false, fmt.Errorf("cannot scale recipe %d from %d to %d portions", id, r.Portions, portions)
	}
	scaled, below := recipe.ScaleToPortions(r, portions)
	return scaled, below, nil
}
