package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/campushub/registrar/internal/domain/user"
	"github.com/campushub/registrar/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `user_id, username, email, password_hash, first_name, last_name, telephone, address, role`

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (repo *UsersRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.Telephone,
		&u.Address,
		&u.Role,
	)
	return u, err
}

func (repo *UsersRepo) Create(ctx context.Context, req user.RegisterRequest, passwordHash string) (u user.User, err error) {
	role := req.Role

	if role == "" {
		role = user.RoleStudent
	}

	err = repo.observe("users.create", func() error {
		row := repo.pool.QueryRow(ctx,
			`INSERT INTO users (username, email, password_hash, first_name, last_name, telephone, address, role)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			 RETURNING `+userColumns,
			req.Username, req.Email, passwordHash, req.FirstName, req.LastName, req.Telephone, req.Address, role,
		)

		var scanErr error
		u, scanErr = scanUser(row)
		return scanErr
	})

	if err != nil {
		if IsUniqueViolation(err) {
			err = user.ErrAlreadyUsed
		}
		return user.User{}, err
	}

	return u, nil
}

func (repo *UsersRepo) GetByEmail(ctx context.Context, email string) (u user.User, err error) {
	err = repo.observe("users.get_by_email", func() error {
		row := repo.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE email = $1`, email)

		var scanErr error
		u, scanErr = scanUser(row)
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return u, nil
}

func (repo *UsersRepo) GetByID(ctx context.Context, id int64) (u user.User, err error) {
	err = repo.observe("users.get_by_id", func() error {
		row := repo.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE user_id = $1`, id)

		var scanErr error
		u, scanErr = scanUser(row)
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return u, nil
}

// List returns users matching the filter, ordered by id for stable
// results. Search matches username, email and names case-insensitively.
func (repo *UsersRepo) List(ctx context.Context, filter user.ListFilter) (users []user.User, err error) {
	baseQuery := `SELECT ` + userColumns + ` FROM users`

	var conds []string
	var args []interface{}

	argsPosition := 1

	if filter.Search != nil && *filter.Search != "" {
		conds = append(conds, fmt.Sprintf(
			"(username ILIKE $%d OR email ILIKE $%d OR first_name ILIKE $%d OR last_name ILIKE $%d)",
			argsPosition, argsPosition, argsPosition, argsPosition))
		args = append(args, "%"+*filter.Search+"%")
		argsPosition++
	}

	if filter.Role != nil && *filter.Role != "" {
		conds = append(conds, fmt.Sprintf("role = $%d", argsPosition))
		args = append(args, *filter.Role)
		argsPosition++
	}

	query := baseQuery

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	query += " ORDER BY user_id ASC"

	var rows pgx.Rows

	err = repo.observe("users.list", func() error {
		var qerr error
		rows, qerr = repo.pool.Query(ctx, query, args...)
		return qerr
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	users = make([]user.User, 0)

	for rows.Next() {
		u, scanErr := scanUser(rows)

		if scanErr != nil {
			return nil, scanErr
		}
		users = append(users, u)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return users, nil
}

// Update applies a partial update. Nil fields keep their stored value
// via COALESCE. The handler is responsible for clearing the Role field
// on requests from non-admins and for hashing a new password.
func (repo *UsersRepo) Update(ctx context.Context, id int64, req user.UpdateRequest, passwordHash *string) (u user.User, err error) {
	err = repo.observe("users.update", func() error {
		row := repo.pool.QueryRow(ctx,
			`UPDATE users SET
				username      = COALESCE($2, username),
				email         = COALESCE($3, email),
				first_name    = COALESCE($4, first_name),
				last_name     = COALESCE($5, last_name),
				telephone     = COALESCE($6, telephone),
				address       = COALESCE($7, address),
				role          = COALESCE($8, role),
				password_hash = COALESCE($9, password_hash)
			WHERE user_id = $1
			RETURNING `+userColumns,
			id,
			req.Username,
			req.Email,
			req.FirstName,
			req.LastName,
			req.Telephone,
			req.Address,
			req.Role,
			passwordHash,
		)

		var scanErr error
		u, scanErr = scanUser(row)
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		if IsUniqueViolation(err) {
			return user.User{}, user.ErrAlreadyUsed
		}
		return user.User{}, err
	}

	return u, nil
}

func (repo *UsersRepo) Delete(ctx context.Context, id int64) (err error) {
	err = repo.observe("users.delete", func() error {
		tag, execErr := repo.pool.Exec(ctx, `DELETE FROM users WHERE user_id = $1`, id)

		if execErr != nil {
			return execErr
		}

		if tag.RowsAffected() == 0 {
			return user.ErrNotFound
		}

		return nil
	})

	return err
}
