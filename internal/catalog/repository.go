package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// Repository is the SQLite-backed implementation of both catalog
// ports. Tags and attributes are stored as JSON text columns.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// LookupTags finds the catalog entry whose name contains the queried
// name (case-insensitive) and returns its tags. A miss returns nil
// tags and no error.
func (r *Repository) LookupTags(ctx context.Context, name string, category Category) ([]string, error) {
	query := `SELECT tags FROM catalog_items
		WHERE category = ? AND is_active = 1
		AND instr(lower(name), lower(?)) > 0
		LIMIT 1`

	var tagsJSON string
	err := r.db.QueryRowContext(ctx, query, string(category), strings.TrimSpace(name)).Scan(&tagsJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up tags for %q: %w", name, err)
	}

	var tags []string
	if err := json.Unmarshal([]byte(tagsJSON), &tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tags for %q: %w", name, err)
	}
	return tags, nil
}

// ListActive returns every active item in a category, in insertion order.
func (r *Repository) ListActive(ctx context.Context, category Category) ([]Item, error) {
	query := `SELECT id, name, category, tags, attributes, is_active
		FROM catalog_items
		WHERE category = ? AND is_active = 1
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, string(category))
	if err != nil {
		return nil, fmt.Errorf("failed to list active items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// FindByTag returns the substitute candidates authored for a conflict
// tag, ordered by priority ascending. The tag match is bidirectional
// substring, mirroring how detection matches tags.
func (r *Repository) FindByTag(ctx context.Context, tag string, category Category) ([]Item, error) {
	query := `SELECT ci.id, ci.name, ci.category, ci.tags, ci.attributes, ci.is_active
		FROM substitution_rules sr
		JOIN catalog_items ci ON ci.id = sr.substitute_id
		WHERE sr.category = ? AND ci.is_active = 1
		AND (instr(lower(sr.tag), lower(?)) > 0 OR instr(lower(?), lower(sr.tag)) > 0)
		ORDER BY sr.priority`

	rows, err := r.db.QueryContext(ctx, query, string(category), tag, tag)
	if err != nil {
		return nil, fmt.Errorf("failed to find substitutes for tag %q: %w", tag, err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// Upsert inserts an item, or replaces its tags, attributes, and active
// flag when the (name, category) pair already exists. The item's ID is
// populated on return.
func (r *Repository) Upsert(ctx context.Context, item *Item) error {
	tagsJSON, err := json.Marshal(item.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}
	if item.Tags == nil {
		tagsJSON = []byte("[]")
	}
	attrsJSON, err := json.Marshal(item.Attributes)
	if err != nil {
		return fmt.Errorf("failed to marshal attributes: %w", err)
	}
	if item.Attributes == nil {
		attrsJSON = []byte("{}")
	}

	query := `INSERT INTO catalog_items (name, category, tags, attributes, is_active)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (name, category) DO UPDATE SET
			tags = excluded.tags,
			attributes = excluded.attributes,
			is_active = excluded.is_active`

	active := 0
	if item.Active {
		active = 1
	}
	if _, err := r.db.ExecContext(ctx, query, item.Name, string(item.Category), string(tagsJSON), string(attrsJSON), active); err != nil {
		return fmt.Errorf("failed to upsert catalog item %q: %w", item.Name, err)
	}

	return r.db.QueryRowContext(ctx,
		`SELECT id FROM catalog_items WHERE name = ? AND category = ?`,
		item.Name, string(item.Category),
	).Scan(&item.ID)
}

// AddSubstitution records a substitution rule pointing at an existing
// catalog item.
func (r *Repository) AddSubstitution(ctx context.Context, rule SubstitutionRule) error {
	query := `INSERT INTO substitution_rules (tag, category, substitute_id, priority)
		VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, rule.Tag, string(rule.Category), rule.SubstituteID, rule.Priority); err != nil {
		return fmt.Errorf("failed to add substitution rule for tag %q: %w", rule.Tag, err)
	}
	return nil
}

// Count returns the number of catalog items in a category.
func (r *Repository) Count(ctx context.Context, category Category) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM catalog_items WHERE category = ?`, string(category),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count catalog items: %w", err)
	}
	return count, nil
}

func scanItems(rows *sql.Rows) ([]Item, error) {
	var items []Item
	for rows.Next() {
		var (
			item      Item
			category  string
			tagsJSON  string
			attrsJSON string
			active    int
		)
		if err := rows.Scan(&item.ID, &item.Name, &category, &tagsJSON, &attrsJSON, &active); err != nil {
			return nil, fmt.Errorf("failed to scan catalog item: %w", err)
		}
		item.Category = Category(category)
		item.Active = active != 0
		if err := json.Unmarshal([]byte(tagsJSON), &item.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags for item %d: %w", item.ID, err)
		}
		if err := json.Unmarshal([]byte(attrsJSON), &item.Attributes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal attributes for item %d: %w", item.ID, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
