package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"pet-guardian/internal/domain/session"
)

// Schema de client_storage: un valor por (scope, key).
const ClientStorageSchema = `
CREATE TABLE IF NOT EXISTS client_storage (
	scope      TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (scope, key)
)`

// ClientStorage persiste el token de cada sesión de browser en Postgres,
// así un reinicio del BFF no desloguea a nadie.
type ClientStorage struct {
	db  *sql.DB
	now func() time.Time
}

func NewClientStorage(db *sql.DB) *ClientStorage {
	return &ClientStorage{db: db, now: time.Now}
}

// EnsureSchema crea la tabla si no existe.
func (s *ClientStorage) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, ClientStorageSchema)
	return err
}

func (s *ClientStorage) For(scope string) session.TokenStorage {
	return &scopedSlot{parent: s, scope: strings.TrimSpace(scope), key: session.TokenKey}
}

type scopedSlot struct {
	parent *ClientStorage
	scope  string
	key    string
}

func (t *scopedSlot) Load(ctx context.Context) (string, error) {
	var value string
	err := t.parent.db.QueryRowContext(ctx, `
		SELECT value
		FROM client_storage
		WHERE scope = $1 AND key = $2
	`, t.scope, t.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (t *scopedSlot) Save(ctx context.Context, token string) error {
	_, err := t.parent.db.ExecContext(ctx, `
		INSERT INTO client_storage (scope, key, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (scope, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, t.scope, t.key, token, t.parent.now().UTC())
	return err
}

func (t *scopedSlot) Clear(ctx context.Context) error {
	_, err := t.parent.db.ExecContext(ctx, `
		DELETE FROM client_storage
		WHERE scope = $1 AND key = $2
	`, t.scope, t.key)
	return err
}
