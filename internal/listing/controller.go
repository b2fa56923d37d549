// Package listing holds the in-memory working set behind every list screen:
// fetch-all, search, filters, pagination, deletes and export.
package listing

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/kinderhub/backend/internal/client"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

type State int

const (
	Loading State = iota
	Ready
	Mutating
	Error
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Mutating:
		return "mutating"
	case Error:
		return "error"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Notifier shows transient messages to the user.
type Notifier interface {
	Info(message string)
	Error(message string)
}

type noopNotifier struct{}

func (noopNotifier) Info(string)  {}
func (noopNotifier) Error(string) {}

// Filter narrows the list by one attribute. Validate, when set, rejects
// values the filter cannot use.
type Filter[T any] struct {
	Match    func(item T, value string) bool
	Validate func(value string) error
}

type Column[T any] struct {
	Header string
	Value  func(T) interface{}
}

// Config describes one collection.
type Config[T any] struct {
	Name   string
	Fetch  func(ctx context.Context) client.Result[[]T]
	Remove func(ctx context.Context, id uuid.UUID) client.Result[struct{}]
	ID     func(T) uuid.UUID
	// SearchText returns the fields search looks at.
	SearchText func(T) []string
	Filters    map[string]Filter[T]
	Columns    []Column[T]
	PageSize   int
	Notifier   Notifier
	// Confirm is asked before every delete. Nil confirms.
	Confirm func(T) bool
	// OnState observes every state transition.
	OnState func(State)
}

// Controller owns one collection's working set. Items keep server fetch
// order. It is not safe for concurrent use.
type Controller[T any] struct {
	cfg      Config[T]
	state    State
	items    []T
	search   string
	filters  map[string]string
	page     int
	pageSize int
}

func New[T any](cfg Config[T]) *Controller[T] {
	if cfg.Notifier == nil {
		cfg.Notifier = noopNotifier{}
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	return &Controller[T]{
		cfg:      cfg,
		state:    Loading,
		items:    []T{},
		filters:  map[string]string{},
		pageSize: cfg.PageSize,
	}
}

func (c *Controller[T]) State() State {
	return c.state
}

func (c *Controller[T]) setState(s State) {
	c.state = s
	if c.cfg.OnState != nil {
		c.cfg.OnState(s)
	}
}

// Load replaces the working set with a fresh fetch. On failure the list is
// emptied, the user is notified once and the controller is still usable.
func (c *Controller[T]) Load(ctx context.Context) error {
	c.setState(Loading)

	items, err := c.cfg.Fetch(ctx).Unwrap()
	if err != nil {
		log.Error().Err(err).Str("collection", c.cfg.Name).Msg("failed to fetch")
		c.items = []T{}
		c.setState(Error)
		c.cfg.Notifier.Error(fmt.Sprintf("Failed to load %s", c.cfg.Name))
		c.setState(Ready)
		return err
	}

	if items == nil {
		items = []T{}
	}
	c.items = items
	if c.page >= c.PageCount() {
		c.page = 0
	}
	c.setState(Ready)
	return nil
}

// Items returns the whole working set.
func (c *Controller[T]) Items() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Search sets the case-insensitive substring matched against the search
// fields. An empty term matches everything.
func (c *Controller[T]) Search(term string) {
	c.search = strings.TrimSpace(term)
	c.page = 0
}

func (c *Controller[T]) SearchTerm() string {
	return c.search
}

// Filter sets one equality filter; the empty value clears it.
func (c *Controller[T]) Filter(key, value string) error {
	f, ok := c.cfg.Filters[key]
	if !ok {
		return fmt.Errorf("%s cannot be filtered by %q", c.cfg.Name, key)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		delete(c.filters, key)
		c.page = 0
		return nil
	}
	if f.Validate != nil {
		if err := f.Validate(value); err != nil {
			return fmt.Errorf("invalid %s filter: %w", key, err)
		}
	}
	c.filters[key] = value
	c.page = 0
	return nil
}

func (c *Controller[T]) ClearFilters() {
	c.filters = map[string]string{}
	c.page = 0
}

// ActiveFilters returns a copy of the filters in effect.
func (c *Controller[T]) ActiveFilters() map[string]string {
	out := make(map[string]string, len(c.filters))
	for k, v := range c.filters {
		out[k] = v
	}
	return out
}

// FilteredItems applies search and every filter, all of which must match.
func (c *Controller[T]) FilteredItems() []T {
	term := strings.ToLower(c.search)
	out := make([]T, 0, len(c.items))
	for _, item := range c.items {
		if term != "" && !c.matchesSearch(item, term) {
			continue
		}
		if !c.matchesFilters(item) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (c *Controller[T]) matchesSearch(item T, term string) bool {
	if c.cfg.SearchText == nil {
		return true
	}
	for _, field := range c.cfg.SearchText(item) {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func (c *Controller[T]) matchesFilters(item T) bool {
	for key, value := range c.filters {
		if !c.cfg.Filters[key].Match(item, value) {
			return false
		}
	}
	return true
}

// Paginate selects a zero-based page. A pageSize of zero keeps the current size.
func (c *Controller[T]) Paginate(page, pageSize int) {
	if pageSize > 0 {
		c.pageSize = pageSize
	}
	if page < 0 {
		page = 0
	}
	c.page = page
}

func (c *Controller[T]) Page() int {
	return c.page
}

func (c *Controller[T]) PageSize() int {
	return c.pageSize
}

func (c *Controller[T]) PageCount() int {
	n := len(c.FilteredItems())
	return (n + c.pageSize - 1) / c.pageSize
}

// VisibleItems is the current page of FilteredItems.
func (c *Controller[T]) VisibleItems() []T {
	filtered := c.FilteredItems()
	start := c.page * c.pageSize
	if start >= len(filtered) {
		return []T{}
	}
	end := start + c.pageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end]
}

// FilteredCount is len(FilteredItems()).
func (c *Controller[T]) FilteredCount() int {
	return len(c.FilteredItems())
}

// Header returns the export column headers.
func (c *Controller[T]) Header() []string {
	out := make([]string, len(c.cfg.Columns))
	for i, col := range c.cfg.Columns {
		out[i] = col.Header
	}
	return out
}

// VisibleRows renders the current page as text cells, one per column.
func (c *Controller[T]) VisibleRows() [][]string {
	items := c.VisibleItems()
	rows := make([][]string, len(items))
	for i, item := range items {
		row := make([]string, len(c.cfg.Columns))
		for j, col := range c.cfg.Columns {
			row[j] = fmt.Sprint(col.Value(item))
		}
		rows[i] = row
	}
	return rows
}

// Find returns the item with id from the working set.
func (c *Controller[T]) Find(id uuid.UUID) (T, bool) {
	for _, item := range c.items {
		if c.cfg.ID(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Delete removes id on the server and then locally, without re-fetching.
// It reports whether anything was deleted. Unknown ids and declined
// confirmations change nothing; a failed call leaves the items untouched.
func (c *Controller[T]) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	item, ok := c.Find(id)
	if !ok {
		return false, nil
	}
	if c.cfg.Confirm != nil && !c.cfg.Confirm(item) {
		return false, nil
	}

	c.setState(Mutating)
	defer c.setState(Ready)

	if res := c.cfg.Remove(ctx, id); !res.OK() {
		log.Error().Err(res.Err).Str("collection", c.cfg.Name).Str("id", id.String()).Msg("failed to delete")
		c.cfg.Notifier.Error(fmt.Sprintf("Failed to delete %s: %v", c.cfg.Name, res.Err))
		return false, res.Err
	}

	kept := c.items[:0:0]
	for _, it := range c.items {
		if c.cfg.ID(it) != id {
			kept = append(kept, it)
		}
	}
	c.items = kept
	if pages := c.PageCount(); c.page >= pages {
		c.page = max(pages-1, 0)
	}
	c.cfg.Notifier.Info(fmt.Sprintf("Deleted %s", c.cfg.Name))
	return true, nil
}

// Mutate runs a create, update or import and then always re-fetches, so
// server-generated fields are never merged by hand.
func (c *Controller[T]) Mutate(ctx context.Context, what string, op func(ctx context.Context) error) error {
	c.setState(Mutating)
	err := op(ctx)
	if err != nil {
		log.Error().Err(err).Str("collection", c.cfg.Name).Str("op", what).Msg("mutation failed")
		c.cfg.Notifier.Error(fmt.Sprintf("Failed to %s: %v", what, err))
	} else {
		c.cfg.Notifier.Info(fmt.Sprintf("%s: %s done", c.cfg.Name, what))
	}
	c.setState(Ready)

	// Load notifies on its own failure.
	_ = c.Load(ctx)
	return err
}

// Export writes every filtered item, not just the visible page, as a workbook.
func (c *Controller[T]) Export(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := make([]interface{}, len(c.cfg.Columns))
	for i, name := range c.Header() {
		header[i] = name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for r, item := range c.FilteredItems() {
		row := make([]interface{}, len(c.cfg.Columns))
		for i, col := range c.cfg.Columns {
			row[i] = col.Value(item)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write %s export: %w", c.cfg.Name, err)
	}
	return nil
}
