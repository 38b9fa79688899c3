package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/hrdocs-compliance/internal/core/domain"
)

const schemaLockID int64 = 2026031501

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the document and profile tables. Both binaries call
// it on startup.
func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockID); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS generated_documents (
	id TEXT PRIMARY KEY,
	company_id TEXT NOT NULL,
	type_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	content TEXT NOT NULL,
	version INTEGER NOT NULL CHECK (version >= 1),
	history JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_generated_documents_company ON generated_documents(company_id, created_at DESC);

CREATE TABLE IF NOT EXISTS company_profiles (
	company_id TEXT PRIMARY KEY,
	company_name TEXT NOT NULL DEFAULT '',
	industry TEXT NOT NULL DEFAULT '',
	company_size TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	website TEXT NOT NULL DEFAULT '',
	summary TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Create(ctx context.Context, record *domain.DocumentRecord) error {
	historyJSON, err := marshalHistory(record.History)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO generated_documents (
	id, company_id, type_id, kind, content, version, history, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`,
		record.ID, record.CompanyID, string(record.TypeID), string(record.Kind),
		record.Content, record.Version, historyJSON, record.CreatedAt,
	)
	if err != nil {
		return classifyDBError("insert document", err)
	}
	return nil
}

// Revise locks the row, applies the revision and writes it back with a
// version compare-and-swap. Losing the swap yields ErrVersionConflict.
func (r *DocumentRepository) Revise(ctx context.Context, rev domain.DocumentRevision) (*domain.DocumentRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classifyDBError("begin revise tx", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx, `
SELECT id, company_id, type_id, kind, content, version, history, created_at
FROM generated_documents
WHERE id = $1 AND company_id = $2
FOR UPDATE
`, rev.DocumentID, rev.CompanyID)

	current, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "revise document", fmt.Errorf("id=%s", rev.DocumentID))
		}
		return nil, classifyDBError("select document for update", err)
	}

	if rev.ExpectedVersion > 0 && rev.ExpectedVersion != current.Version {
		return nil, domain.WrapError(
			domain.ErrVersionConflict,
			"revise document",
			fmt.Errorf("id=%s expected version %d, current %d", rev.DocumentID, rev.ExpectedVersion, current.Version),
		)
	}

	next := current.Revise(rev.Content, rev.At)
	historyJSON, err := marshalHistory(next.History)
	if err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx, `
UPDATE generated_documents
SET content = $3, version = $4, history = $5, created_at = $6
WHERE id = $1 AND company_id = $2 AND version = $7
`, next.ID, next.CompanyID, next.Content, next.Version, historyJSON, next.CreatedAt, current.Version)
	if err != nil {
		return nil, classifyDBError("update document", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update document rows affected: %w", err)
	}
	if rows == 0 {
		return nil, domain.WrapError(domain.ErrVersionConflict, "revise document", fmt.Errorf("id=%s moved past version %d", rev.DocumentID, current.Version))
	}

	if err := tx.Commit(); err != nil {
		return nil, classifyDBError("commit revise tx", err)
	}
	return &next, nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, companyID, id string) (*domain.DocumentRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, company_id, type_id, kind, content, version, history, created_at
FROM generated_documents
WHERE id = $1 AND company_id = $2
`, id, companyID)

	record, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id=%s", id))
		}
		return nil, classifyDBError("scan document", err)
	}
	return &record, nil
}

func (r *DocumentRepository) ListByCompany(ctx context.Context, companyID string) ([]domain.DocumentRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, company_id, type_id, kind, content, version, history, created_at
FROM generated_documents
WHERE company_id = $1
ORDER BY created_at DESC, id ASC
`, companyID)
	if err != nil {
		return nil, classifyDBError("list documents", err)
	}
	defer rows.Close()

	out := make([]domain.DocumentRecord, 0)
	for rows.Next() {
		record, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyDBError("iterate document rows", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (domain.DocumentRecord, error) {
	var record domain.DocumentRecord
	var typeID, kind string
	var historyRaw []byte
	err := row.Scan(
		&record.ID,
		&record.CompanyID,
		&typeID,
		&kind,
		&record.Content,
		&record.Version,
		&historyRaw,
		&record.CreatedAt,
	)
	if err != nil {
		return domain.DocumentRecord{}, err
	}
	record.TypeID = domain.DocumentTypeID(typeID)
	record.Kind = domain.DocumentKind(kind)
	record.History = []domain.DocumentVersion{}
	if len(historyRaw) > 0 {
		if err := json.Unmarshal(historyRaw, &record.History); err != nil {
			return domain.DocumentRecord{}, fmt.Errorf("unmarshal history: %w", err)
		}
	}
	return record, nil
}

func marshalHistory(history []domain.DocumentVersion) ([]byte, error) {
	if history == nil {
		history = []domain.DocumentVersion{}
	}
	raw, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("marshal history: %w", err)
	}
	return raw, nil
}

// classifyDBError maps Postgres failures onto domain kinds: lock and
// serialization failures are temporary, duplicate keys are invalid input.
func classifyDBError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return domain.WrapError(domain.ErrTemporary, operation, err)
		case "23505":
			return domain.WrapError(domain.ErrInvalidInput, operation, err)
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", operation, err)
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return fmt.Errorf("%s: %w", operation, err)
}
