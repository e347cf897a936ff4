// Package docstore appends schemaless records to named collections and
// lists them back for operators. Records are stored in Postgres as JSONB,
// or in process memory for development.
package docstore

import (
	"context"

	"github.com/JaimeStill/logomagic/pkg/pagination"
	"github.com/google/uuid"
)

// System defines the document store operations.
type System interface {
	// Append writes fields as a new record in collection and returns its id.
	Append(ctx context.Context, collection string, fields map[string]any) (uuid.UUID, error)

	Find(ctx context.Context, collection string, id uuid.UUID) (*Record, error)

	// List pages through a collection, newest first unless page.Sort says otherwise.
	// page.Search matches against the record's JSON text.
	List(ctx context.Context, collection string, page pagination.PageRequest) (*pagination.PageResult[Record], error)
}

var sortable = map[string]bool{
	"Id":        true,
	"CreatedAt": true,
}

func normalize(page *pagination.PageRequest, cfg pagination.Config) {
	page.Normalize(cfg)

	sorts := page.Sort[:0:0]
	for _, s := range page.Sort {
		if sortable[s.Field] {
			sorts = append(sorts, s)
		}
	}
	page.Sort = sorts
}
