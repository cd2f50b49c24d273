package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

// Store is the Postgres persistence layer for drawings and users.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const schema = `
CREATE TABLE IF NOT EXISTS drawings (
    id            TEXT PRIMARY KEY,
    owner_id      TEXT NOT NULL,
    name          TEXT NOT NULL,
    preview_image TEXT NOT NULL DEFAULT '',
    canvas_state  JSONB NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS users (
    id           TEXT PRIMARY KEY,
    email        TEXT NOT NULL UNIQUE,
    password     TEXT NOT NULL,
    display_name TEXT NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_drawings_owner ON drawings (owner_id, updated_at DESC);
`

// EnsureSchema creates the tables if they don't exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Drawing is a full persisted drawing row.
type Drawing struct {
	ID           string
	OwnerID      string
	Name         string
	PreviewImage string // base64-encoded PNG
	CanvasState  []byte // serialized scene.Drawing
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DrawingSummary is a gallery listing row; the canvas state is omitted on
// purpose, previews are enough for the gallery.
type DrawingSummary struct {
	ID           string
	Name         string
	PreviewImage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (s *Store) CreateDrawing(ctx context.Context, d *Drawing) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO drawings (id, owner_id, name, preview_image, canvas_state)
		VALUES ($1, $2, $3, $4, $5)`,
		d.ID, d.OwnerID, d.Name, d.PreviewImage, d.CanvasState,
	)
	if err != nil {
		return fmt.Errorf("insert drawing: %w", err)
	}
	return nil
}

func (s *Store) GetDrawing(ctx context.Context, id string) (*Drawing, error) {
	var d Drawing
	err := s.pool.QueryRow(ctx, `
		SELECT id, owner_id, name, preview_image, canvas_state, created_at, updated_at
		FROM drawings WHERE id = $1`, id,
	).Scan(&d.ID, &d.OwnerID, &d.Name, &d.PreviewImage, &d.CanvasState, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get drawing: %w", err)
	}
	return &d, nil
}

func (s *Store) ListDrawings(ctx context.Context, ownerID string) ([]DrawingSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, preview_image, created_at, updated_at
		FROM drawings WHERE owner_id = $1
		ORDER BY updated_at DESC`, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list drawings: %w", err)
	}
	defer rows.Close()

	var out []DrawingSummary
	for rows.Next() {
		var d DrawingSummary
		if err := rows.Scan(&d.ID, &d.Name, &d.PreviewImage, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan drawing: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpdateDrawing updates the provided fields; nil pointers leave a column
// unchanged (the wire PUT is a partial update).
func (s *Store) UpdateDrawing(ctx context.Context, id string, name, preview *string, canvasState []byte) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE drawings SET
			name          = COALESCE($2, name),
			preview_image = COALESCE($3, preview_image),
			canvas_state  = COALESCE($4, canvas_state),
			updated_at    = now()
		WHERE id = $1`,
		id, name, preview, canvasState,
	)
	if err != nil {
		return fmt.Errorf("update drawing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteDrawing(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM drawings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete drawing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// User is a persisted account row.
type User struct {
	ID          string
	Email       string
	Password    string // bcrypt hash
	DisplayName string
	CreatedAt   time.Time
}

func (s *Store) CreateUser(ctx context.Context, u *User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, email, password, display_name)
		VALUES ($1, $2, $3, $4)`,
		u.ID, u.Email, u.Password, u.DisplayName,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.scanUser(s.pool.QueryRow(ctx, `
		SELECT id, email, password, display_name, created_at
		FROM users WHERE email = $1`, email))
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*User, error) {
	return s.scanUser(s.pool.QueryRow(ctx, `
		SELECT id, email, password, display_name, created_at
		FROM users WHERE id = $1`, id))
}

func (s *Store) scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// IsDuplicateKeyError reports a Postgres unique violation.
func IsDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
