package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tessavero/fabula/internal/db"
	"github.com/tessavero/fabula/internal/domain"
)

const currentProjectKey = "current_project"

// SQLiteProjectRepo implements ProjectRepo using a SQLite database.
// It accepts a db.DBTX so it composes with db.UnitOfWork.
type SQLiteProjectRepo struct {
	db db.DBTX
}

// NewSQLiteProjectRepo creates a new SQLiteProjectRepo.
func NewSQLiteProjectRepo(conn db.DBTX) *SQLiteProjectRepo {
	return &SQLiteProjectRepo{db: conn}
}

func (r *SQLiteProjectRepo) Save(ctx context.Context, rec *ProjectRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("saving project: id is empty")
	}
	blob, err := json.Marshal(rec.Outline)
	if err != nil {
		return fmt.Errorf("encoding project %s: %w", rec.ID, err)
	}

	now := nowUTC()
	createdAt := now
	if !rec.CreatedAt.IsZero() {
		createdAt = rec.CreatedAt.UTC().Format(time.RFC3339)
	}

	query := `INSERT INTO projects (id, title, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			data = excluded.data,
			updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, query, rec.ID, rec.Title, string(blob), createdAt, now); err != nil {
		return fmt.Errorf("saving project %s: %w", rec.ID, err)
	}
	return nil
}

func (r *SQLiteProjectRepo) Get(ctx context.Context, id string) (*ProjectRecord, error) {
	query := `SELECT id, title, data, created_at, updated_at FROM projects WHERE id = ?`
	return r.scanRecord(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteProjectRepo) List(ctx context.Context) ([]ProjectMeta, error) {
	query := `SELECT id, title, created_at, updated_at FROM projects ORDER BY updated_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var metas []ProjectMeta
	for rows.Next() {
		var m ProjectMeta
		var createdAt, updatedAt string
		if err := rows.Scan(&m.ID, &m.Title, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning project row: %w", err)
		}
		if m.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		if m.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
			return nil, fmt.Errorf("parsing updated_at: %w", err)
		}
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

func (r *SQLiteProjectRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting project %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting project %s: %w", id, err)
	}
	if affected == 0 {
		return ErrProjectNotFound
	}
	// Clear the current pointer if it referenced the deleted project.
	_, err = r.db.ExecContext(ctx, `DELETE FROM app_state WHERE key = ? AND value = ?`, currentProjectKey, id)
	if err != nil {
		return fmt.Errorf("clearing current project pointer: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) SetCurrent(ctx context.Context, id string) error {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking project %s: %w", id, err)
	}
	if exists == 0 {
		return ErrProjectNotFound
	}

	query := `INSERT INTO app_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := r.db.ExecContext(ctx, query, currentProjectKey, id); err != nil {
		return fmt.Errorf("setting current project: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) GetCurrent(ctx context.Context) (*ProjectRecord, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM app_state WHERE key = ?`, currentProjectKey).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNoCurrent
		}
		return nil, fmt.Errorf("reading current project pointer: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *SQLiteProjectRepo) scanRecord(row *sql.Row) (*ProjectRecord, error) {
	var rec ProjectRecord
	var blob, createdAt, updatedAt string

	err := row.Scan(&rec.ID, &rec.Title, &blob, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}

	var outline domain.ProjectOutline
	if err := json.Unmarshal([]byte(blob), &outline); err != nil {
		return nil, fmt.Errorf("decoding project %s: %w", rec.ID, err)
	}
	rec.Outline = &outline

	if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &rec, nil
}
