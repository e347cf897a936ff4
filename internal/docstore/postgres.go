package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/logomagic/pkg/pagination"
	"github.com/JaimeStill/logomagic/pkg/query"
	"github.com/JaimeStill/logomagic/pkg/repository"
	"github.com/google/uuid"
)

var projection = query.NewProjectionMap("public", "records", "r").
	Project("id", "Id").
	Project("collection", "Collection").
	Project("fields", "Fields").
	Project("created_at", "CreatedAt").
	Expr("r.fields::text", "Text")

var defaultSort = query.SortField{Field: "CreatedAt", Descending: true}

func scanRecord(s repository.Scanner) (Record, error) {
	var (
		r   Record
		raw []byte
	)
	if err := s.Scan(&r.ID, &r.Collection, &raw, &r.CreatedAt); err != nil {
		return r, err
	}
	if err := json.Unmarshal(raw, &r.Fields); err != nil {
		return r, fmt.Errorf("decode fields: %w", err)
	}
	return r, nil
}

func scanID(s repository.Scanner) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.Scan(&id)
	return id, err
}

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a Postgres-backed document store.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "docstore"),
		pagination: pagination,
	}
}

func (r *repo) Append(ctx context.Context, collection string, fields map[string]any) (uuid.UUID, error) {
	if err := ValidateCollection(collection); err != nil {
		return uuid.Nil, err
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidFields, err)
	}

	q := `INSERT INTO records(id, collection, fields)
		VALUES($1, $2, $3)
		RETURNING id`

	id, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (uuid.UUID, error) {
		return repository.QueryOne(ctx, tx, q, []any{uuid.New(), collection, data}, scanID)
	})
	if err != nil {
		return uuid.Nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("record appended", "collection", collection, "id", id)
	return id, nil
}

func (r *repo) Find(ctx context.Context, collection string, id uuid.UUID) (*Record, error) {
	if err := ValidateCollection(collection); err != nil {
		return nil, err
	}

	q, args := query.
		NewBuilder(projection).
		BuildSingle("Id", id)

	rec, err := repository.QueryOne(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	if rec.Collection != collection {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (r *repo) List(ctx context.Context, collection string, page pagination.PageRequest) (*pagination.PageResult[Record], error) {
	if err := ValidateCollection(collection); err != nil {
		return nil, err
	}
	normalize(&page, r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("Collection", collection).
		WhereSearch(page.Search, "Text")

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	records, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	result := pagination.NewPageResult(records, total, page.Page, page.PageSize)
	return &result, nil
}
