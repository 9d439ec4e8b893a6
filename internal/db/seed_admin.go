package db

import (
	"context"
	"errors"

	"github.com/campushub/registrar/internal/config"
	"github.com/campushub/registrar/internal/domain/user"
	"github.com/campushub/registrar/internal/security"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureAdminUser seeds a bootstrap admin account so a fresh deployment
// has someone who can create courses. No-op unless both ADMIN_EMAIL and
// ADMIN_PASSWORD are configured, and never touches an existing row.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	var dummy int64

	err := pool.QueryRow(ctx, `SELECT user_id FROM users WHERE email = $1`, cfg.AdminEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (username, email, password_hash, first_name, last_name, role)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		cfg.AdminUsername, cfg.AdminEmail, hash, "Site", "Admin", user.RoleAdmin,
	)

	return err
}
