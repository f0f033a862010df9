package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"lembas/internal/calendar"
	"lembas/internal/config"
	"lembas/internal/ingredient"
	"lembas/internal/planner"
	"lembas/internal/recipe"
	"lembas/internal/shopping"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Client is an interface for the lembas backend REST API.
type Client interface {
	Ping(ctx context.Context) error

	Recipes(ctx context.Context) ([]recipe.Recipe, error)
	CreateRecipe(ctx context.Context, in recipe.Input) error
	UpdateRecipe(ctx context.Context, id int64, in recipe.Input) error
	DeleteRecipe(ctx context.Context, id int64) error

	Ingredients(ctx context.Context) ([]ingredient.Ingredient, error)
	UserIngredients(ctx context.Context) ([]ingredient.Ingredient, error)
	SearchIngredients(ctx context.Context, query string) ([]ingredient.Ingredient, error)
	CreateIngredient(ctx context.Context, in ingredient.Input) error
	DeleteIngredient(ctx context.Context, id int64) error

	Schedule(ctx context.Context) ([]ingredient.Scheduled, error)
	CreateScheduled(ctx context.Context, in ingredient.ScheduledInput) error
	DeleteScheduled(ctx context.Context, id int64) error

	Days(ctx context.Context, from, to time.Time) ([]planner.Day, error)
	CreateDay(ctx context.Context, in planner.DayInput) error
	DeleteRecipeFromDay(ctx context.Context, date string, recipeID int64) error

	ShoppingList(ctx context.Context, from, to time.Time) (*shopping.List, error)
}

// Observer receives one call per completed request. Status is 0 when no response arrived.
type Observer interface {
	ObserveRequest(method, route string, status int, d time.Duration)
}

// Option configures the client.
type Option func(*apiClient)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *apiClient) { c.httpClient = hc }
}

// WithObserver reports request outcomes, e.g. to a metrics recorder.
func WithObserver(o Observer) Option {
	return func(c *apiClient) { c.observer = o }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *apiClient) { c.log = l }
}

// apiClient is the concrete implementation of the API client.
type apiClient struct {
	httpClient *http.Client
	baseURL    string
	listPath   string
	tokens     TokenSource
	observer   Observer
	log        logrus.FieldLogger
}

// NewClient creates a new API client.
func NewClient(cfg *config.Config, tokens TokenSource, opts ...Option) Client {
	c := &apiClient{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:    cfg.APIURL,
		listPath:   cfg.ShoppingListPath,
		tokens:     tokens,
		log:        logrus.StandardLogger(),
	}
	if c.listPath == "" {
		c.listPath = "/shoppinglist"
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ping checks that the backend answers on its root route.
func (c *apiClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/", "/", nil, nil, nil)
}

func (c *apiClient) Recipes(ctx context.Context) ([]recipe.Recipe, error) {
	var recipes []recipe.Recipe
	if err := c.do(ctx, http.MethodGet, "/recipes", "/recipes", nil, nil, &recipes); err != nil {
		return nil, fmt.Errorf("failed to fetch recipes: %w", err)
	}
	return recipes, nil
}

func (c *apiClient) CreateRecipe(ctx context.Context, in recipe.Input) error {
	if err := c.do(ctx, http.MethodPost, "/recipes", "/recipes", nil, in, nil); err != nil {
		return fmt.Errorf("failed to create recipe: %w", err)
	}
	return nil
}

func (c *apiClient) UpdateRecipe(ctx context.Context, id int64, in recipe.Input) error {
	path := "/recipes/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodPut, "/recipes/{id}", path, nil, in, nil); err != nil {
		return fmt.Errorf("failed to update recipe %d: %w", id, err)
	}
	return nil
}

func (c *apiClient) DeleteRecipe(ctx context.Context, id int64) error {
	path := "/recipes/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodDelete, "/recipes/{id}", path, nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete recipe %d: %w", id, err)
	}
	return nil
}

func (c *apiClient) Ingredients(ctx context.Context) ([]ingredient.Ingredient, error) {
	var ingredients []ingredient.Ingredient
	if err := c.do(ctx, http.MethodGet, "/ingredients", "/ingredients", nil, nil, &ingredients); err != nil {
		return nil, fmt.Errorf("failed to fetch ingredients: %w", err)
	}
	return ingredients, nil
}

func (c *apiClient) UserIngredients(ctx context.Context) ([]ingredient.Ingredient, error) {
	var ingredients []ingredient.Ingredient
	if err := c.do(ctx, http.MethodGet, "/ingredients/user", "/ingredients/user", nil, nil, &ingredients); err != nil {
		return nil, fmt.Errorf("failed to fetch user ingredients: %w", err)
	}
	return ingredients, nil
}

// SearchIngredients returns no results without calling the backend when query is empty.
func (c *apiClient) SearchIngredients(ctx context.Context, query string) ([]ingredient.Ingredient, error) {
	if query == "" {
		return []ingredient.Ingredient{}, nil
	}
	var ingredients []ingredient.Ingredient
	q := url.Values{"query": {query}}
	if err := c.do(ctx, http.MethodGet, "/search/ingredients", "/search/ingredients", q, nil, &ingredients); err != nil {
		return nil, fmt.Errorf("failed to search ingredients: %w", err)
	}
	return ingredients, nil
}

func (c *apiClient) CreateIngredient(ctx context.Context, in ingredient.Input) error {
	if err := c.do(ctx, http.MethodPost, "/ingredients", "/ingredients", nil, in, nil); err != nil {
		return fmt.Errorf("failed to create ingredient: %w", err)
	}
	return nil
}

func (c *apiClient) DeleteIngredient(ctx context.Context, id int64) error {
	path := "/ingredient/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodDelete, "/ingredient/{id}", path, nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete ingredient %d: %w", id, err)
	}
	return nil
}

func (c *apiClient) Schedule(ctx context.Context) ([]ingredient.Scheduled, error) {
	var scheduled []ingredient.Scheduled
	if err := c.do(ctx, http.MethodGet, "/schedule", "/schedule", nil, nil, &scheduled); err != nil {
		return nil, fmt.Errorf("failed to fetch schedule: %w", err)
	}
	return scheduled, nil
}

func (c *apiClient) CreateScheduled(ctx context.Context, in ingredient.ScheduledInput) error {
	if err := c.do(ctx, http.MethodPost, "/schedule", "/schedule", nil, in, nil); err != nil {
		return fmt.Errorf("failed to create scheduled ingredient: %w", err)
	}
	return nil
}

func (c *apiClient) DeleteScheduled(ctx context.Context, id int64) error {
	path := "/schedule/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodDelete, "/schedule/{id}", path, nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete scheduled ingredient %d: %w", id, err)
	}
	return nil
}

func (c *apiClient) Days(ctx context.Context, from, to time.Time) ([]planner.Day, error) {
	var days []planner.Day
	if err := c.do(ctx, http.MethodGet, "/days", "/days", rangeQuery(from, to), nil, &days); err != nil {
		return nil, fmt.Errorf("failed to fetch days: %w", err)
	}
	return days, nil
}

func (c *apiClient) CreateDay(ctx context.Context, in planner.DayInput) error {
	if err := c.do(ctx, http.MethodPost, "/days", "/days", nil, in, nil); err != nil {
		return fmt.Errorf("failed to create day: %w", err)
	}
	return nil
}

func (c *apiClient) DeleteRecipeFromDay(ctx context.Context, date string, recipeID int64) error {
	path := fmt.Sprintf("/days/%s/recipes/%d", url.PathEscape(date), recipeID)
	if err := c.do(ctx, http.MethodDelete, "/days/{date}/recipes/{id}", path, nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete recipe %d from %s: %w", recipeID, date, err)
	}
	return nil
}

func (c *apiClient) ShoppingList(ctx context.Context, from, to time.Time) (*shopping.List, error) {
	var list shopping.List
	if err := c.do(ctx, http.MethodGet, c.listPath, c.listPath, rangeQuery(from, to), nil, &list); err != nil {
		return nil, fmt.Errorf("failed to fetch shopping list: %w", err)
	}
	return &list, nil
}

func rangeQuery(from, to time.Time) url.Values {
	return url.Values{
		"from": {calendar.ISODate(from)},
		"to":   {calendar.ISODate(to)},
	}
}

// do sends one authenticated request. route is the path template used for logging and metrics.
func (c *apiClient) do(ctx context.Context, method, route, path string, query url.Values, body, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to get API token: %w", err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := c.log.WithFields(logrus.Fields{"method": method, "route": route, "request_id": requestID})

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(method, route, 0, time.Since(start))
		log.WithError(err).Debug("API request failed")
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	c.observe(method, route, resp.StatusCode, time.Since(start))
	log.WithField("status", resp.StatusCode).Debug("API request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(data))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *apiClient) observe(method, route string, status int, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveRequest(method, route, status, d)
	}
}
