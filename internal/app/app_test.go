package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"lembas/internal/ingredient"
	"lembas/internal/logger"
	"lembas/internal/planner"
	"lembas/internal/recipe"
	"lembas/internal/shopping"
	"lembas/internal/state"

	"github.com/google/go-cmp/cmp"
)

// mockClient is a mock implementation of the api.Client interface for testing.
type mockClient struct {
	mu sync.Mutex

	recipes []recipe.Recipe
	list    *shopping.List
	days    []planner.Day
	search  func(ctx context.Context, query string) ([]ingredient.Ingredient, error)
	err     error
	created []recipe.Input
	updated map[int64]recipe.Input
	planned []planner.DayInput
	ranges  [][2]time.Time
}

func (m *mockClient) Ping(ctx context.Context) error { return m.err }

func (m *mockClient) Recipes(ctx context.Context) ([]recipe.Recipe, error) {
	return m.recipes, m.err
}

func (m *mockClient) CreateRecipe(ctx context.Context, in recipe.Input) error {
	m.created = append(m.created, in)
	return m.err
}

func (m *mockClient) UpdateRecipe(ctx context.Context, id int64, in recipe.Input) error {
	if m.updated == nil {
		m.updated = map[int64]recipe.Input{}
	}
	m.updated[id] = in
	return m.err
}

func (m *mockClient) DeleteRecipe(ctx context.Context, id int64) error { return m.err }

func (m *mockClient) Ingredients(ctx context.Context) ([]ingredient.Ingredient, error) {
	return nil, m.err
}

func (m *mockClient) UserIngredients(ctx context.Context) ([]ingredient.Ingredient, error) {
	return nil, m.err
}

func (m *mockClient) SearchIngredients(ctx context.Context, query string) ([]ingredient.Ingredient, error) {
	return m.search(ctx, query)
}

func (m *mockClient) CreateIngredient(ctx context.Context, in ingredient.Input) error { return m.err }

func (m *mockClient) DeleteIngredient(ctx context.Context, id int64) error { return m.err }

func (m *mockClient) Schedule(ctx context.Context) ([]ingredient.Scheduled, error) {
	return nil, m.err
}

func (m *mockClient) CreateScheduled(ctx context.Context, in ingredient.ScheduledInput) error {
	return m.err
}

func (m *mockClient) DeleteScheduled(ctx context.Context, id int64) error { return m.err }

func (m *mockClient) Days(ctx context.Context, from, to time.Time) ([]planner.Day, error) {
	m.mu.Lock()
	m.ranges = append(m.ranges, [2]time.Time{from, to})
	m.mu.Unlock()
	return m.days, m.err
}

func (m *mockClient) CreateDay(ctx context.Context, in planner.DayInput) error {
	m.planned = append(m.planned, in)
	return m.err
}

func (m *mockClient) DeleteRecipeFromDay(ctx context.Context, date string, recipeID int64) error {
	return m.err
}

func (m *mockClient) ShoppingList(ctx context.Context, from, to time.Time) (*shopping.List, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.list, nil
}

type mockExportStore struct {
	saved []*shopping.Export
}

func (m *mockExportStore) Save(ctx context.Context, export *shopping.Export) (int64, error) {
	m.saved = append(m.saved, export)
	export.ID = int64(len(m.saved))
	return export.ID, nil
}

type countingRecorder struct{ exports int }

func (c *countingRecorder) IncExports() { c.exports++ }

var flour = ingredient.Ingredient{ID: 940, Name: "Flour", Unit: "g", MinimumQuantity: 50, PurchaseQuantity: 1000, Life: 365}

// Sunday 2 June 2024.
func fixedClock() time.Time { return time.Date(2024, 6, 2, 9, 30, 0, 0, time.UTC) }

func newTestApp(client *mockClient, opts ...Option) (*App, *[]string) {
	var notices []string
	opts = append([]Option{
		WithClock(fixedClock),
		WithNotifier(NotifierFunc(func(msg string) { notices = append(notices, msg) })),
	}, opts...)
	return NewApp(client, logger.Discard(), opts...), &notices
}

func TestShoppingListExport(t *testing.T) {
	client := &mockClient{
		list: &shopping.List{
			Ingredients: []shopping.PurchaseQuantity{
				{Ingredient: flour, ExistingSurplus: 5, UsedQuantity: 10, PurchaseQuantity: 100},
			},
			ScheduledIngredients: []shopping.PurchaseQuantity{},
		},
	}
	store := &mockExportStore{}
	recorder := &countingRecorder{}
	a, notices := newTestApp(client, WithExportStore(store), WithExportRecorder(recorder))

	list, err := a.SyncList(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(list.Ingredients) != 1 || !list.Ingredients[0].Ticked {
		t.Fatalf("Expected Flour ticked under ingredients, got %+v", list)
	}
	if a.List.Status() != state.Succeeded {
		t.Errorf("Expected list status succeeded, got %s", a.List.Status())
	}

	text, err := a.ExportList(context.Background(), true)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if text != "Shopping List\n\n- Flour, 100g\n" {
		t.Errorf("Unexpected export %q", text)
	}

	if len(store.saved) != 1 {
		t.Fatalf("Expected 1 saved export, got %d", len(store.saved))
	}
	if store.saved[0].From != "2024-05-27" || store.saved[0].To != "2024-06-02" {
		t.Errorf("Expected range 2024-05-27..2024-06-02, got %s..%s", store.saved[0].From, store.saved[0].To)
	}
	if diff := cmp.Diff([]ingredient.Quantity{{Ingredient: flour, Quantity: 100}}, store.saved[0].Items); diff != "" {
		t.Errorf("export items mismatch (-want +got):\n%s", diff)
	}
	if recorder.exports != 1 {
		t.Errorf("Expected 1 recorded export, got %d", recorder.exports)
	}
	if len(*notices) != 0 {
		t.Errorf("Expected no notifications, got %v", *notices)
	}

	t.Run("ToggleExcludesItem", func(t *testing.T) {
		if err := a.ToggleListItem(shopping.CategoryIngredients, 0); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		text, err := a.ExportList(context.Background(), false)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if text != "Shopping List\n\n" {
			t.Errorf("Expected an empty list, got %q", text)
		}
		if len(store.saved) != 1 {
			t.Errorf("Expected no additional saved export, got %d", len(store.saved))
		}
	})
}

func TestToggleWhileExporting(t *testing.T) {
	client := &mockClient{
		list: &shopping.List{
			Ingredients: []shopping.PurchaseQuantity{
				{Ingredient: flour, PurchaseQuantity: 100},
				{Ingredient: ingredient.Ingredient{ID: 2, Name: "Salt", Unit: "g", PurchaseQuantity: 500}, PurchaseQuantity: 10},
			},
		},
	}
	a, _ := newTestApp(client)
	list, err := a.SyncList(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if err := a.ToggleListItem(shopping.CategoryIngredients, i%2); err != nil {
				t.Errorf("Expected no error, got %v", err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if _, err := a.ExportList(context.Background(), false); err != nil {
				t.Errorf("Expected no error, got %v", err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if got := a.ShoppingList(); len(got.Ingredients) != 2 {
				t.Errorf("Expected 2 items, got %d", len(got.Ingredients))
				return
			}
		}
	}()
	wg.Wait()

	// 100 toggles per item leave both ticked again.
	text, err := a.ExportList(context.Background(), false)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if text != "Shopping List\n\n- Flour, 100g\n- Salt, 10g\n" {
		t.Errorf("Unexpected export %q", text)
	}
	if !list.Ingredients[0].Ticked || !list.Ingredients[1].Ticked {
		t.Error("Expected the list returned by SyncList to be unaffected by toggles")
	}
}

func TestNetworkErrorNotification(t *testing.T) {
	client := &mockClient{err: errors.New("connection refused")}
	a, notices := newTestApp(client)

	if _, err := a.SyncRecipes(context.Background()); err == nil {
		t.Fatal("Expected an error, got nil")
	}
	if a.Recipes.Status() != state.Failed {
		t.Errorf("Expected failed status, got %s", a.Recipes.Status())
	}
	if diff := cmp.Diff([]string{NetworkErrorMessage}, *notices); diff != "" {
		t.Errorf("notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchSupersedesOlderRequest(t *testing.T) {
	slowStarted := make(chan struct{})
	client := &mockClient{
		search: func(ctx context.Context, query string) ([]ingredient.Ingredient, error) {
			if query == "fl" {
				close(slowStarted)
				<-ctx.Done()
				return []ingredient.Ingredient{{ID: 1, Name: "Flax"}}, ctx.Err()
			}
			return []ingredient.Ingredient{flour}, nil
		},
	}
	a, notices := newTestApp(client)

	done := make(chan error, 1)
	go func() {
		_, err := a.SearchIngredients(context.Background(), "fl")
		done <- err
	}()
	<-slowStarted

	results, err := a.SearchIngredients(context.Background(), "flour")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(results) != 1 || results[0].Name != "Flour" {
		t.Errorf("Unexpected results %+v", results)
	}

	if err := <-done; !errors.Is(err, state.ErrSuperseded) {
		t.Errorf("Expected the older search to be superseded, got %v", err)
	}
	if got := a.Search.Snapshot().Data; len(got) != 1 || got[0].Name != "Flour" {
		t.Errorf("Expected the newest results to be kept, got %+v", got)
	}
	if len(*notices) != 0 {
		t.Errorf("Expected no notifications for a superseded request, got %v", *notices)
	}
}

func TestRange(t *testing.T) {
	client := &mockClient{}
	a, _ := newTestApp(client)

	if got := a.Range(); got.FromISO() != "2024-05-27" || got.ToISO() != "2024-06-02" {
		t.Errorf("Expected 2024-05-27..2024-06-02, got %s..%s", got.FromISO(), got.ToISO())
	}
	if a.Today() != "2024-06-02" {
		t.Errorf("Expected today to be 2024-06-02, got %s", a.Today())
	}
	if !a.IsCurrentWeek() {
		t.Error("Expected the initial range to be the current week")
	}

	next := a.AdjustRange(planner.RangeLength)
	if next.FromISO() != "2024-06-03" {
		t.Errorf("Expected 2024-06-03, got %s", next.FromISO())
	}
	if a.IsCurrentWeek() {
		t.Error("Expected the adjusted range not to be the current week")
	}

	if _, err := a.SyncDays(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(client.ranges) != 1 || !client.ranges[0][0].Equal(next.From) || !client.ranges[0][1].Equal(next.To) {
		t.Errorf("Expected days to be fetched for the adjusted range, got %v", client.ranges)
	}

	if got := a.ResetRange(); got.FromISO() != "2024-05-27" {
		t.Errorf("Expected reset to 2024-05-27, got %s", got.FromISO())
	}

	t.Run("TuesdayWeekStart", func(t *testing.T) {
		a, _ := newTestApp(&mockClient{}, WithWeekStart(time.Tuesday))
		if got := a.Range().FromISO(); got != "2024-05-28" {
			t.Errorf("Expected 2024-05-28, got %s", got)
		}
	})

	t.Run("ZonedClock", func(t *testing.T) {
		cases := []struct {
			name string
			now  time.Time
			from string
		}{
			{"EST", time.Date(2024, 6, 2, 20, 0, 0, 0, time.FixedZone("EST", -5*3600)), "2024-06-03"},
			{"AEST", time.Date(2024, 6, 3, 5, 0, 0, 0, time.FixedZone("AEST", 10*3600)), "2024-05-27"},
		}
		for _, tc := range cases {
			now := tc.now
			a, _ := newTestApp(&mockClient{}, WithClock(func() time.Time { return now }))
			got := a.Range()
			if got.FromISO() != tc.from || got.From.Weekday() != time.Monday {
				t.Errorf("%s: expected a range from Monday %s, got %s (%s)", tc.name, tc.from, got.FromISO(), got.From.Weekday())
			}
			if !a.IsCurrentWeek() {
				t.Errorf("%s: expected the initial range to be the current week", tc.name)
			}
		}
	})

	t.Run("SelectDay", func(t *testing.T) {
		if err := a.SelectDay("2024-05-29"); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if a.SelectedDay() != "2024-05-29" {
			t.Errorf("Expected 2024-05-29, got %s", a.SelectedDay())
		}
		if err := a.SelectDay("Wednesday"); err == nil {
			t.Error("Expected an error for a non-ISO date")
		}
	})
}

func TestSaveRecipe(t *testing.T) {
	client := &mockClient{}
	a, _ := newTestApp(client)

	e := &recipe.Editable{
		Name:     "Sourdough",
		Portions: 2,
		Steps:    []string{"Mix"},
		Ingredients: []ingredient.QuantityEditable{
			{Ingredient: flour, Quantity: "499.5"},
		},
	}
	if err := a.SaveRecipe(context.Background(), e); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	want := []recipe.Input{{Name: "Sourdough", Portions: 2, Steps: []string{"Mix"}, Ingredients: []recipe.IngredientInput{{ID: 940, Quantity: 500}}}}
	if diff := cmp.Diff(want, client.created); diff != "" {
		t.Errorf("created mismatch (-want +got):\n%s", diff)
	}

	e.ID = 3
	if err := a.SaveRecipe(context.Background(), e); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, ok := client.updated[3]; !ok {
		t.Error("Expected recipe 3 to be updated")
	}

	e.Ingredients[0].Quantity = "lots"
	if err := a.SaveRecipe(context.Background(), e); !errors.Is(err, recipe.ErrInvalid) {
		t.Errorf("Expected ErrInvalid, got %v", err)
	}
}

func TestScaleRecipe(t *testing.T) {
	client := &mockClient{recipes: []recipe.Recipe{
		{ID: 1, Name: "Sourdough", Portions: 2, Ingredients: []ingredient.Quantity{{Ingredient: flour, Quantity: 500}}},
		{ID: 2, Name: "Broken", Portions: 0},
	}}
	a, _ := newTestApp(client)
	if _, err := a.SyncRecipes(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	scaled, below, err := a.ScaleRecipe(1, 4)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if below || scaled.Ingredients[0].Quantity != 1000 {
		t.Errorf("Expected 1000g flour without warning, got %v (below=%v)", scaled.Ingredients[0].Quantity, below)
	}

	if _, _, err := a.ScaleRecipe(2, 4); err == nil {
		t.Error("Expected an error for a recipe without portions")
	}
	if _, _, err := a.ScaleRecipe(9, 4); err == nil {
		t.Error("Expected an error for an unknown recipe")
	}
}

func TestPlanRecipe(t *testing.T) {
	client := &mockClient{list: &shopping.List{}}
	a, _ := newTestApp(client)

	if err := a.PlanRecipe(context.Background(), 1, "2024-05-29"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if diff := cmp.Diff([]planner.DayInput{{RecipeID: 1, Date: "2024-05-29"}}, client.planned); diff != "" {
		t.Errorf("planned mismatch (-want +got):\n%s", diff)
	}
	if a.Days.Status() != state.Succeeded || a.List.Status() != state.Succeeded {
		t.Error("Expected days and list to be reloaded")
	}
	if err := a.PlanRecipe(context.Background(), 1, "tomorrow"); err == nil {
		t.Error("Expected an error for an invalid date")
	}
}
