package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ai-plan-guard/internal/catalog"

	"github.com/PuerkitoBio/goquery"
)

// CatalogWriter is the subset of the catalog repository ingestion needs.
type CatalogWriter interface {
	Upsert(ctx context.Context, item *catalog.Item) error
}

// Ingester imports catalog items from HTML pages that publish food or
// exercise tables.
type Ingester struct {
	writer CatalogWriter
	client *http.Client
}

// NewIngester creates a new Ingester.
func NewIngester(writer CatalogWriter) *Ingester {
	return &Ingester{
		writer: writer,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// IngestURL fetches the URL, parses every item table on the page, and
// upserts the items into the catalog. Returns the number of items
// imported.
func (i *Ingester) IngestURL(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	items, err := ParseCatalogTable(resp.Body)
	if err != nil {
		return 0, err
	}

	imported := 0
	for idx := range items {
		if err := i.writer.Upsert(ctx, &items[idx]); err != nil {
			return imported, fmt.Errorf("failed to upsert item %q: %w", items[idx].Name, err)
		}
		imported++
	}
	return imported, nil
}

// ParseCatalogTable extracts catalog items from the HTML tables in r.
// Expected columns: name, category, tags (comma separated) and an
// optional attributes column of key=value pairs separated by
// semicolons. Rows with an unknown category or an empty name are
// skipped.
func ParseCatalogTable(r io.Reader) ([]catalog.Item, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var items []catalog.Item
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return // header or malformed row
		}

		name := strings.TrimSpace(cells.Eq(0).Text())
		category := catalog.Category(strings.ToLower(strings.TrimSpace(cells.Eq(1).Text())))
		if name == "" || (category != catalog.CategoryMeal && category != catalog.CategoryWorkout) {
			return
		}

		item := catalog.Item{Name: name, Category: category, Active: true}
		if cells.Length() > 2 {
			item.Tags = splitList(cells.Eq(2).Text())
		}
		if cells.Length() > 3 {
			item.Attributes = parseAttributes(cells.Eq(3).Text())
		}
		items = append(items, item)
	})

	return items, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseAttributes(raw string) map[string]float64 {
	attrs := make(map[string]float64)
	for _, pair := range strings.Split(raw, ";") {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		num, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			continue
		}
		attrs[strings.TrimSpace(key)] = num
	}
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}
