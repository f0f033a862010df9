package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"lembas/internal/config"
	"lembas/internal/ingredient"
	"lembas/internal/logger"
	"lembas/internal/planner"
	"lembas/internal/recipe"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

type observed struct {
	method, route string
	status        int
}

type mockObserver struct {
	mu    sync.Mutex
	calls []observed
}

func (m *mockObserver) ObserveRequest(method, route string, status int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, observed{method, route, status})
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		APIURL:           server.URL,
		ShoppingListPath: "/shoppinglist",
		RequestTimeout:   5 * time.Second,
	}
	opts = append([]Option{WithLogger(logger.Discard())}, opts...)
	return NewClient(cfg, StaticToken("secret"), opts...)
}

func TestRequestHeaders(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Expected 'Bearer secret', got '%s'", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Expected Accept 'application/json', got '%s'", got)
		}
		if _, err := uuid.Parse(r.Header.Get("X-Request-ID")); err != nil {
			t.Errorf("Expected a uuid request id, got '%s'", r.Header.Get("X-Request-ID"))
		}
		w.WriteHeader(http.StatusOK)
	})

	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
}

func TestRecipes(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		obs := &mockObserver{}
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || r.URL.Path != "/recipes" {
				t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
			}
			fmt.Fprintln(w, `[
				{"id": 1, "name": "Sourdough", "portions": 2, "steps": ["Mix"], "ingredients": [
					{"ingredient": {"id": 940, "name": "Flour", "unit": "g", "minimum_quantity": 50, "purchase_quantity": 1000, "life": 365}, "quantity": 500}
				]}
			]`)
		}, WithObserver(obs))

		recipes, err := client.Recipes(context.Background())
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(recipes) != 1 {
			t.Fatalf("Expected 1 recipe, got %d", len(recipes))
		}
		if recipes[0].Ingredients[0].Ingredient.Name != "Flour" || recipes[0].Ingredients[0].Quantity != 500 {
			t.Errorf("Unexpected ingredient %+v", recipes[0].Ingredients[0])
		}
		if diff := cmp.Diff([]observed{{"GET", "/recipes", 200}}, obs.calls, cmp.AllowUnexported(observed{})); diff != "" {
			t.Errorf("observer mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("ServerError", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, "database down")
		})

		_, err := client.Recipes(context.Background())
		var se *StatusError
		if !errors.As(err, &se) {
			t.Fatalf("Expected a StatusError, got %v", err)
		}
		if se.StatusCode != http.StatusInternalServerError || se.Body != "database down" {
			t.Errorf("Unexpected status error %+v", se)
		}
	})
}

func TestMutations(t *testing.T) {
	type call struct {
		Method, Path, Body string
	}
	var calls []call

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if len(body) > 0 && r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Expected JSON content type for %s %s", r.Method, r.URL.Path)
		}
		calls = append(calls, call{r.Method, r.URL.Path, strings.TrimSpace(string(body))})
		w.WriteHeader(http.StatusOK)
	})
	ctx := context.Background()

	in := recipe.Input{Name: "Toast", Portions: 1, Steps: []string{"Toast"}, Ingredients: []recipe.IngredientInput{{ID: 1, Quantity: 2}}}
	mustNot := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}
	mustNot(client.CreateRecipe(ctx, in))
	mustNot(client.UpdateRecipe(ctx, 7, in))
	mustNot(client.DeleteRecipe(ctx, 7))
	mustNot(client.CreateIngredient(ctx, ingredient.Input{Name: "Coffee", Unit: "g", MinimumQuantity: 1, PurchaseQuantity: 300, Life: 30}))
	mustNot(client.DeleteIngredient(ctx, 3))
	mustNot(client.CreateScheduled(ctx, ingredient.ScheduledInput{IngredientID: 3, StartDate: "2024-01-01", Interval: 7}))
	mustNot(client.DeleteScheduled(ctx, 4))
	mustNot(client.CreateDay(ctx, planner.DayInput{RecipeID: 7, Date: "2024-05-27"}))
	mustNot(client.DeleteRecipeFromDay(ctx, "2024-05-27", 7))

	recipeBody := `{"name":"Toast","portions":1,"steps":["Toast"],"ingredients":[{"id":1,"quantity":2}]}`
	want := []call{
		{"POST", "/recipes", recipeBody},
		{"PUT", "/recipes/7", recipeBody},
		{"DELETE", "/recipes/7", ""},
		{"POST", "/ingredients", `{"name":"Coffee","unit":"g","minimum_quantity":1,"purchase_quantity":300,"life":30}`},
		{"DELETE", "/ingredient/3", ""},
		{"POST", "/schedule", `{"ingredient_id":3,"start_date":"2024-01-01","interval":7}`},
		{"DELETE", "/schedule/4", ""},
		{"POST", "/days", `{"recipe_id":7,"date":"2024-05-27"}`},
		{"DELETE", "/days/2024-05-27/recipes/7", ""},
	}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchIngredients(t *testing.T) {
	requests := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		if got := r.URL.Query().Get("query"); got != "oat milk" {
			t.Errorf("Expected query 'oat milk', got '%s'", got)
		}
		json.NewEncoder(w).Encode([]ingredient.Ingredient{{ID: 329, Name: "Oat Drink", Unit: "ml"}})
	})

	empty, err := client.SearchIngredients(context.Background(), "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(empty) != 0 || requests != 0 {
		t.Errorf("Expected no request for an empty query, got %d requests", requests)
	}

	found, err := client.SearchIngredients(context.Background(), "oat milk")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(found) != 1 || found[0].Name != "Oat Drink" {
		t.Errorf("Unexpected results %+v", found)
	}
}

func TestRangeEndpoints(t *testing.T) {
	from := time.Date(2024, 5, 27, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("from") != "2024-05-27" || r.URL.Query().Get("to") != "2024-06-02" {
			t.Errorf("Unexpected range %s", r.URL.RawQuery)
		}
		switch r.URL.Path {
		case "/days":
			fmt.Fprint(w, `[{"date": "2024-05-28", "recipes": [{"id": 1, "name": "Soup", "portions": 4, "steps": [], "ingredients": []}]}]`)
		case "/shoppinglist":
			fmt.Fprint(w, `{"ingredients": [{"ingredient": {"id": 940, "name": "Flour", "unit": "g", "minimum_quantity": 50, "purchase_quantity": 1000, "life": 365}, "existing_surplus": 5, "used_quantity": 10, "purchase_quantity": 100}], "scheduled_ingredients": []}`)
		default:
			t.Errorf("Unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	days, err := client.Days(context.Background(), from, to)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(days) != 1 || days[0].Recipes[0].Name != "Soup" {
		t.Errorf("Unexpected days %+v", days)
	}

	list, err := client.ShoppingList(context.Background(), from, to)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(list.Ingredients) != 1 || list.Ingredients[0].PurchaseQuantity != 100 || list.Ingredients[0].ExistingSurplus != 5 {
		t.Errorf("Unexpected list %+v", list)
	}
}

func TestConfigurableListPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/list" {
			t.Errorf("Expected path '/list', got '%s'", r.URL.Path)
		}
		fmt.Fprint(w, `{"ingredients": [], "scheduled_ingredients": []}`)
	}))
	defer server.Close()

	cfg := &config.Config{APIURL: server.URL, ShoppingListPath: "/list", RequestTimeout: time.Second}
	client := NewClient(cfg, StaticToken("secret"), WithLogger(logger.Discard()))

	if _, err := client.ShoppingList(context.Background(), time.Now(), time.Now()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
}

func TestStatusErrorHelpers(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/recipes/99" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	})

	err := client.DeleteRecipe(context.Background(), 99)
	if !IsNotFound(err) {
		t.Errorf("Expected a not found error, got %v", err)
	}
	if err := client.Ping(context.Background()); !IsUnauthorized(err) {
		t.Errorf("Expected an unauthorized error, got %v", err)
	}
}

func TestContextCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := client.Ping(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
