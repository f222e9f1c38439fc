package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"studio-backend/internal/editor/models"
)

// ============================================================
// SQLite Repository
// ============================================================

// ErrNotFound is returned for lookups of unknown project ids.
var ErrNotFound = errors.New("project not found")

type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Init runs migrations and seeds the sample project.
func (r *Repository) Init(ctx context.Context, migrationsPath string) error {
	if err := r.runMigrations(migrationsPath); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return r.ensureSample(ctx)
}

// Create stores a new project and fills in its id and timestamps.
func (r *Repository) Create(ctx context.Context, p *models.Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	sceneJSON, err := json.Marshal(p.Scene)
	if err != nil {
		return fmt.Errorf("marshal scene: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
        INSERT INTO projects (id, name, scene, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?)
    `, p.ID, p.Name, string(sceneJSON), p.CreatedAt.Format(time.RFC3339), p.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, name, scene, created_at, updated_at
        FROM projects
        WHERE id = ?
    `, id)
	return scanProject(row)
}

// List returns all projects, most recently updated first.
func (r *Repository) List(ctx context.Context) ([]*models.Project, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, name, scene, created_at, updated_at
        FROM projects
        ORDER BY updated_at DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Save writes the project's name and scene back and bumps updated_at.
func (r *Repository) Save(ctx context.Context, p *models.Project) error {
	sceneJSON, err := json.Marshal(p.Scene)
	if err != nil {
		return fmt.Errorf("marshal scene: %w", err)
	}
	p.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
        UPDATE projects
        SET name = ?, scene = ?, updated_at = ?
        WHERE id = ?
    `, p.Name, string(sceneJSON), p.UpdatedAt.Format(time.RFC3339), p.ID)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ============================================================
// Migrations & Seeding
// ============================================================

func (r *Repository) runMigrations(migrationsPath string) error {
	data, err := os.ReadFile(migrationsPath)
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	if _, err := r.db.Exec(string(data)); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

// ensureSample seeds a welcome project so the dashboard is never empty.
func (r *Repository) ensureSample(ctx context.Context) error {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	sample := &models.Project{
		ID:    "11111111-1111-1111-1111-111111111111",
		Name:  "Welcome scene",
		Scene: models.DefaultScene(),
	}
	if err := r.Create(ctx, sample); err != nil {
		return fmt.Errorf("seed sample: %w", err)
	}
	return nil
}

// ============================================================
// Helpers
// ============================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	var p models.Project
	var sceneJSON, createdAt, updatedAt string
	if err := row.Scan(&p.ID, &p.Name, &sceneJSON, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(sceneJSON), &p.Scene); err != nil {
		return nil, fmt.Errorf("unmarshal scene: %w", err)
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &p, nil
}

// OpenSQLite opens the database at the given path, creating the parent
// directory when needed.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
