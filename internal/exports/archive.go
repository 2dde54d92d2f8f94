package exports

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/pestilab/pkg/database"
	"github.com/JaimeStill/pestilab/pkg/pagination"
	"github.com/JaimeStill/pestilab/pkg/query"
	"github.com/JaimeStill/pestilab/pkg/repository"
	"github.com/JaimeStill/pestilab/pkg/storage"
)

// Archive stores generated files in blob storage and indexes them in the
// exports table.
type Archive interface {
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Record], error)
	Find(ctx context.Context, id uuid.UUID) (*Record, error)
	Save(ctx context.Context, artifact *Artifact) (*Record, error)
	// Open returns the record and its file. The caller must close the reader.
	Open(ctx context.Context, id uuid.UUID) (*Record, io.ReadCloser, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type archive struct {
	db         *sql.DB
	dialect    query.Dialect
	table      string
	projection *query.ProjectionMap
	storage    storage.System
	pagination pagination.Config
	logger     *slog.Logger
}

// NewArchive creates an Archive over db and store.
func NewArchive(
	db database.System,
	store storage.System,
	pagination pagination.Config,
	logger *slog.Logger,
) Archive {
	return &archive{
		db:         db.Connection(),
		dialect:    db.Dialect(),
		table:      db.Schema() + ".exports",
		projection: newProjection(db.Schema()),
		storage:    store,
		pagination: pagination,
		logger:     logger.With("system", "export-archive"),
	}
}

func (a *archive) builder() *query.Builder {
	return query.NewBuilder(a.projection, defaultSort).WithDialect(a.dialect)
}

func (a *archive) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Record], error) {
	page.Normalize(a.pagination)

	qb := a.builder().WhereSearch(page.Search, "Filename")
	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := a.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count exports: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	records, err := repository.QueryMany(ctx, a.db, pageSQL, pageArgs, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("query exports: %w", err)
	}

	result := pagination.NewPageResult(records, total, page.Page, page.PageSize)
	return &result, nil
}

func (a *archive) Find(ctx context.Context, id uuid.UUID) (*Record, error) {
	q, args := a.builder().BuildSingle("ID", id)

	r, err := repository.QueryOne(ctx, a.db, q, args, scanRecord)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &r, nil
}

func (a *archive) Save(ctx context.Context, artifact *Artifact) (*Record, error) {
	id := uuid.New()
	key := storageKey(id, artifact.Filename)

	if err := a.storage.Upload(ctx, key, bytes.NewReader(artifact.Data), artifact.ContentType); err != nil {
		return nil, fmt.Errorf("upload export blob: %w", err)
	}

	q := fmt.Sprintf(`
		INSERT INTO %s (id, format, filename, content_type, size_bytes, page_count, row_count, storage_key, created_at)
		VALUES (%s)
		RETURNING id, format, filename, content_type, size_bytes, page_count, row_count, storage_key, created_at`,
		a.table, a.params(9),
	)

	args := []any{
		id,
		string(artifact.Format),
		artifact.Filename,
		artifact.ContentType,
		int64(len(artifact.Data)),
		artifact.Pages,
		artifact.Rows,
		key,
		time.Now().UTC(),
	}

	r, err := repository.WithTx(ctx, a.db, func(tx *sql.Tx) (Record, error) {
		return repository.QueryOne(ctx, tx, q, args, scanRecord)
	})

	if err != nil {
		if delErr := a.storage.Delete(ctx, key); delErr != nil {
			a.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	a.logger.Info("export archived", "id", r.ID, "filename", r.Filename)
	return &r, nil
}

func (a *archive) Open(ctx context.Context, id uuid.UUID) (*Record, io.ReadCloser, error) {
	r, err := a.Find(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	body, err := a.storage.Download(ctx, r.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("download export blob: %w", err)
	}
	return r, body, nil
}

func (a *archive) Delete(ctx context.Context, id uuid.UUID) error {
	r, err := a.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, a.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			fmt.Sprintf("DELETE FROM %s WHERE id = %s", a.table, a.dialect.Param(1)),
			id,
		)
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if delErr := a.storage.Delete(ctx, r.StorageKey); delErr != nil {
		a.logger.Warn(
			"blob delete failed after DB delete",
			"key", r.StorageKey,
			"error", delErr,
		)
	}

	a.logger.Info("export deleted", "id", id)
	return nil
}

func (a *archive) params(n int) string {
	p := make([]string, n)
	for i := range n {
		p[i] = a.dialect.Param(i + 1)
	}
	return strings.Join(p, ", ")
}

func storageKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("exports/%s/%s", id, url.PathEscape(filename))
}
