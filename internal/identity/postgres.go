package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// Postgres authenticates staff against the staff_users table.
type Postgres struct{ pool *pgxpool.Pool }

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	var id Identity
	var hash string
	err := p.pool.QueryRow(ctx,
		`SELECT id, email, password_hash FROM staff_users WHERE email = $1`, email,
	).Scan(&id.UID, &id.Email, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get staff user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &id, nil
}

// SignOut has nothing to revoke; sessions are held by the store.
func (p *Postgres) SignOut(context.Context, *Identity) error { return nil }

// EnsureUser creates the account if the email is not registered yet.
func (p *Postgres) EnsureUser(ctx context.Context, email, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO staff_users (id, email, password_hash, created_at) VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (email) DO NOTHING`,
		uuid.NewString(), email, string(hashed),
	)
	if err != nil {
		return fmt.Errorf("create staff user: %w", err)
	}
	return nil
}
