package recipe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	linkedDataSelector = `script[type="application/ld+json"]`
	userAgent          = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"
	defaultPortions    = 2
)

// ErrNoRecipe is returned when a page carries no schema.org Recipe data.
var ErrNoRecipe = errors.New("no recipe found in page")

var firstNumber = regexp.MustCompile(`\d+`)

// Parsed is a recipe read from a web page. Ingredient lines are kept as free text
// because they still need matching against the ingredient catalogue.
type Parsed struct {
	Title       string   `json:"title"`
	Portions    int      `json:"portions"`
	Steps       []string `json:"steps"`
	Ingredients []string `json:"ingredients"`
}

// Importer fetches recipe pages and reads their schema.org linked data.
type Importer struct {
	httpClient *http.Client
}

// NewImporter creates a new Importer. A nil client gets a 15 second timeout.
func NewImporter(httpClient *http.Client) *Importer {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Importer{httpClient: httpClient}
}

// Import fetches url and extracts the first recipe it describes.
func (im *Importer) Import(ctx context.Context, url string) (*Parsed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := im.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recipe page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	return ParseHTML(resp.Body)
}

// ParseHTML reads the first schema.org Recipe found in the page's JSON-LD blocks.
// Both plain objects and @graph documents are searched.
func ParseHTML(r io.Reader) (*Parsed, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var found *Parsed
	doc.Find(linkedDataSelector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		found = findRecipe([]byte(s.Text()))
		return found == nil
	})

	if found == nil {
		return nil, ErrNoRecipe
	}
	return found, nil
}

type linkedDataRecipe struct {
	Type         json.RawMessage   `json:"@type"`
	Name         string            `json:"name"`
	Yield        json.RawMessage   `json:"recipeYield"`
	Ingredients  []string          `json:"recipeIngredient"`
	Instructions []json.RawMessage `json:"recipeInstructions"`
}

func findRecipe(data []byte) *Parsed {
	var graph struct {
		Graph []json.RawMessage `json:"@graph"`
	}
	if err := json.Unmarshal(data, &graph); err == nil {
		for _, obj := range graph.Graph {
			if p := asRecipe(obj); p != nil {
				return p
			}
		}
	}

	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err == nil {
		for _, obj := range list {
			if p := asRecipe(obj); p != nil {
				return p
			}
		}
		return nil
	}

	return asRecipe(data)
}

func asRecipe(data []byte) *Parsed {
	var ld linkedDataRecipe
	if err := json.Unmarshal(data, &ld); err != nil {
		return nil
	}
	if !isRecipeType(ld.Type) && len(ld.Ingredients) == 0 {
		return nil
	}
	if ld.Name == "" {
		return nil
	}

	p := &Parsed{
		Title:       strings.TrimSpace(ld.Name),
		Portions:    portions(ld.Yield),
		Ingredients: make([]string, 0, len(ld.Ingredients)),
		Steps:       steps(ld.Instructions),
	}
	for _, line := range ld.Ingredients {
		if line = strings.TrimSpace(line); line != "" {
			p.Ingredients = append(p.Ingredients, line)
		}
	}
	return p
}

func isRecipeType(raw json.RawMessage) bool {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single == "Recipe"
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		for _, t := range many {
			if t == "Recipe" {
				return true
			}
		}
	}
	return false
}

// steps flattens instructions given as plain strings, HowToStep objects, or HowToSection groups.
func steps(raw []json.RawMessage) []string {
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		var text string
		if err := json.Unmarshal(item, &text); err == nil {
			if text = strings.TrimSpace(text); text != "" {
				out = append(out, text)
			}
			continue
		}

		var step struct {
			Text            string            `json:"text"`
			ItemListElement []json.RawMessage `json:"itemListElement"`
		}
		if err := json.Unmarshal(item, &step); err != nil {
			continue
		}
		if t := strings.TrimSpace(step.Text); t != "" {
			out = append(out, t)
		}
		out = append(out, steps(step.ItemListElement)...)
	}
	return out
}

// portions reads the first whole number from recipeYield, which may be a string,
// a number, or an array of either.
func portions(raw json.RawMessage) int {
	var candidates []string

	var text string
	var number float64
	var list []json.RawMessage
	switch {
	case json.Unmarshal(raw, &text) == nil:
		candidates = append(candidates, text)
	case json.Unmarshal(raw, &number) == nil:
		candidates = append(candidates, strconv.Itoa(int(number)))
	case json.Unmarshal(raw, &list) == nil:
		for _, item := range list {
			var s string
			if json.Unmarshal(item, &s) == nil {
				candidates = append(candidates, s)
			} else if json.Unmarshal(item, &number) == nil {
				candidates = append(candidates, strconv.Itoa(int(number)))
			}
		}
	}

	for _, c := range candidates {
		if match := firstNumber.FindString(c); match != "" {
			if n, err := strconv.Atoi(match); err == nil && n > 0 {
				return n
			}
		}
	}
	return defaultPortions
}
