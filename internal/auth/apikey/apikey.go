// Package apikey manages the keys crawlers present when they push documents
// to the ingestion service. Only the SHA-256 of a key is stored; the raw key
// is shown once at creation.
package apikey

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/pkg/postgres"
)

var (
	ErrInvalidKey = errors.New("invalid api key")
	ErrExpiredKey = errors.New("api key expired")
)

const schema = `
CREATE TABLE IF NOT EXISTS api_keys (
	id         BIGSERIAL PRIMARY KEY,
	key_hash   CHAR(64)    NOT NULL UNIQUE,
	name       TEXT        NOT NULL,
	rate_limit INTEGER     NOT NULL DEFAULT 100,
	is_active  BOOLEAN     NOT NULL DEFAULT true,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ
);
`

// KeyInfo describes a key without revealing it. RateLimit is in requests
// per minute.
type KeyInfo struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	RateLimit int        `json:"rate_limit"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the key has an expiry at or before now.
func (k KeyInfo) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && !k.ExpiresAt.After(now)
}

type Manager struct {
	db     *postgres.Client
	now    func() time.Time
	logger *slog.Logger
}

func NewManager(db *postgres.Client) *Manager {
	return &Manager{
		db:     db,
		now:    time.Now,
		logger: slog.Default().With("component", "apikey-manager"),
	}
}

func (m *Manager) EnsureSchema(ctx context.Context) error {
	if _, err := m.db.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating api_keys schema: %w", err)
	}
	return nil
}

// Validate resolves a raw key to its active record.
func (m *Manager) Validate(ctx context.Context, rawKey string) (*KeyInfo, error) {
	info, err := scanKey(m.db.DB.QueryRowContext(ctx,
		`SELECT id, name, rate_limit, created_at, expires_at
		FROM api_keys
		WHERE key_hash = $1 AND is_active`,
		HashKey(rawKey),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidKey
	}
	if err != nil {
		return nil, fmt.Errorf("querying api key: %w", err)
	}
	if info.Expired(m.now()) {
		return nil, ErrExpiredKey
	}
	return info, nil
}

// CreateKey stores a new key and returns it in raw form.
func (m *Manager) CreateKey(ctx context.Context, name string, rateLimit int, expiresAt *time.Time) (string, error) {
	rawKey, err := generateRawKey()
	if err != nil {
		return "", err
	}
	var expiry sql.NullTime
	if expiresAt != nil {
		expiry = sql.NullTime{Time: *expiresAt, Valid: true}
	}
	if _, err := m.db.DB.ExecContext(ctx,
		`INSERT INTO api_keys (key_hash, name, rate_limit, expires_at) VALUES ($1, $2, $3, $4)`,
		HashKey(rawKey), name, rateLimit, expiry,
	); err != nil {
		return "", fmt.Errorf("creating api key: %w", err)
	}
	m.logger.Info("api key created", "name", name, "rate_limit", rateLimit)
	return rawKey, nil
}

func (m *Manager) RevokeKey(ctx context.Context, rawKey string) error {
	result, err := m.db.DB.ExecContext(ctx,
		`UPDATE api_keys SET is_active = false WHERE key_hash = $1 AND is_active`,
		HashKey(rawKey),
	)
	if err != nil {
		return fmt.Errorf("revoking api key: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrInvalidKey
	}
	m.logger.Info("api key revoked")
	return nil
}

// ListKeys returns the active keys, newest first.
func (m *Manager) ListKeys(ctx context.Context) ([]KeyInfo, error) {
	rows, err := m.db.DB.QueryContext(ctx,
		`SELECT id, name, rate_limit, created_at, expires_at
		FROM api_keys WHERE is_active ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing api keys: %w", err)
	}
	defer rows.Close()

	var keys []KeyInfo
	for rows.Next() {
		k, err := scanKey(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning api key row: %w", err)
		}
		keys = append(keys, *k)
	}
	return keys, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanKey(s scanner) (*KeyInfo, error) {
	var k KeyInfo
	var expiresAt sql.NullTime
	if err := s.Scan(&k.ID, &k.Name, &k.RateLimit, &k.CreatedAt, &expiresAt); err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		k.ExpiresAt = &expiresAt.Time
	}
	return &k, nil
}

// HashKey returns the hex SHA-256 of a raw key.
func HashKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func generateRawKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating api key: %w", err)
	}
	return hex.EncodeToString(b), nil
}
