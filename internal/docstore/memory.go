package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/JaimeStill/logomagic/pkg/pagination"
	"github.com/google/uuid"
)

// Memory is an in-process System for development and tests.
// Records do not survive a restart.
type Memory struct {
	mu         sync.RWMutex
	records    map[string][]Record
	logger     *slog.Logger
	pagination pagination.Config
	now        func() time.Time
}

// NewMemory creates an empty in-memory document store.
func NewMemory(logger *slog.Logger, pagination pagination.Config) *Memory {
	return &Memory{
		records:    make(map[string][]Record),
		logger:     logger.With("system", "docstore", "provider", "memory"),
		pagination: pagination,
		now:        time.Now,
	}
}

func (m *Memory) Append(ctx context.Context, collection string, fields map[string]any) (uuid.UUID, error) {
	if err := ValidateCollection(collection); err != nil {
		return uuid.Nil, err
	}
	if _, err := json.Marshal(fields); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidFields, err)
	}
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}

	rec := Record{
		ID:         uuid.New(),
		Collection: collection,
		Fields:     maps.Clone(fields),
		CreatedAt:  m.now().UTC(),
	}

	m.mu.Lock()
	m.records[collection] = append(m.records[collection], rec)
	m.mu.Unlock()

	m.logger.Info("record appended", "collection", collection, "id", rec.ID)
	return rec.ID, nil
}

func (m *Memory) Find(ctx context.Context, collection string, id uuid.UUID) (*Record, error) {
	if err := ValidateCollection(collection); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, rec := range m.records[collection] {
		if rec.ID == id {
			rec.Fields = maps.Clone(rec.Fields)
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) List(ctx context.Context, collection string, page pagination.PageRequest) (*pagination.PageResult[Record], error) {
	if err := ValidateCollection(collection); err != nil {
		return nil, err
	}
	normalize(&page, m.pagination)

	m.mu.RLock()
	matched := make([]Record, 0, len(m.records[collection]))
	for _, rec := range m.records[collection] {
		if page.Search != nil && !matchesSearch(rec, *page.Search) {
			continue
		}
		rec.Fields = maps.Clone(rec.Fields)
		matched = append(matched, rec)
	}
	m.mu.RUnlock()

	sorts := page.Sort
	if len(sorts) == 0 {
		sorts = append(sorts, defaultSort)
	}
	slices.SortStableFunc(matched, func(a, b Record) int {
		for _, s := range sorts {
			var c int
			switch s.Field {
			case "CreatedAt":
				c = a.CreatedAt.Compare(b.CreatedAt)
			case "Id":
				c = strings.Compare(a.ID.String(), b.ID.String())
			}
			if s.Descending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})

	total := len(matched)
	start := min(page.Offset(), total)
	end := min(start+page.PageSize, total)

	result := pagination.NewPageResult(matched[start:end], total, page.Page, page.PageSize)
	return &result, nil
}

// Len returns the number of records in collection.
func (m *Memory) Len(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records[collection])
}

func matchesSearch(rec Record, search string) bool {
	if search == "" {
		return true
	}
	data, err := json.Marshal(rec.Fields)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(data)), strings.ToLower(search))
}
