package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/y0shih/AlertMe-Nest/platform/apperr"
	"github.com/y0shih/AlertMe-Nest/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

const userSelect = `
	SELECT u.id, u.external_id, u.email, u.role_id, r.name, p.username,
	       u.phone, u.device_token, u.created_at, u.updated_at
	FROM auth_users u
	JOIN roles r ON r.id = u.role_id
	LEFT JOIN user_profiles p ON p.id = u.id`

const listByRoleQuery = userSelect + `
	WHERE r.name = $1
	ORDER BY u.created_at ASC, u.id ASC`

const insertUserQuery = `
	INSERT INTO auth_users (external_id, email, role_id, phone)
	VALUES ($1, $2, $3, $4)
	RETURNING id`

const insertProfileQuery = `
	INSERT INTO user_profiles (id, username)
	VALUES ($1, $2)`

const upsertProfileQuery = `
	INSERT INTO user_profiles (id, username)
	VALUES ($1, $2)
	ON CONFLICT (id) DO UPDATE
	SET username = EXCLUDED.username, updated_at = now()`

const deleteProfileQuery = `DELETE FROM user_profiles WHERE id = $1`

const deleteUserQuery = `DELETE FROM auth_users WHERE id = $1`

type Repo struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.ExternalID,
		&u.Email,
		&u.RoleID,
		&u.RoleName,
		&u.Username,
		&u.Phone,
		&u.DeviceToken,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

func getOne(q pgx.Row, op string, key any) (User, error) {
	u, err := scanUser(q)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, apperr.NotFoundf("user", key)
	}
	if err != nil {
		return User{}, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := r.pool.QueryRow(ctx, userSelect+" WHERE u.id = $1", id)
	return getOne(row, "get user", id)
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (User, error) {
	row := r.pool.QueryRow(ctx, userSelect+" WHERE lower(u.email) = lower($1)", email)
	return getOne(row, "get user by email", email)
}

func (r *Repo) GetByExternalID(ctx context.Context, externalID string) (User, error) {
	row := r.pool.QueryRow(ctx, userSelect+" WHERE u.external_id = $1", externalID)
	return getOne(row, "get user by subject", externalID)
}

func (r *Repo) ListByRole(ctx context.Context, role string) ([]User, error) {
	rows, err := r.pool.Query(ctx, listByRoleQuery, role)
	if err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate users: %w", rows.Err())
	}
	return users, nil
}

// buildListFilter returns the WHERE clause, its args and the next free
// placeholder index.
func buildListFilter(params ListParams) (string, []any, int) {
	whereClauses := []string{"1=1"}
	args := []any{}
	argIdx := 1

	if params.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("(u.email ILIKE $%d OR p.username ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}
	if params.Role != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("r.name = $%d", argIdx))
		args = append(args, params.Role)
		argIdx++
	}

	return strings.Join(whereClauses, " AND "), args, argIdx
}

func (r *Repo) List(ctx context.Context, params ListParams) ([]User, int, error) {
	whereClause, args, argIdx := buildListFilter(params)

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM auth_users u
		JOIN roles r ON r.id = u.role_id
		LEFT JOIN user_profiles p ON p.id = u.id
		WHERE %s`, whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY u.created_at DESC, u.id ASC
		LIMIT $%d OFFSET $%d`, userSelect, whereClause, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("iterate users: %w", rows.Err())
	}

	return users, total, nil
}

func (r *Repo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM auth_users WHERE lower(email) = lower($1))`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}

func (r *Repo) ExistsByUsername(ctx context.Context, username string, excludeID *uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM user_profiles
			WHERE lower(username) = lower($1) AND ($2::uuid IS NULL OR id <> $2)
		)`, username, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return exists, nil
}

// Create inserts the identity and its profile in one transaction.
func (r *Repo) Create(ctx context.Context, params CreateParams) (User, error) {
	var user User
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var id uuid.UUID
		if err := tx.QueryRow(ctx, insertUserQuery, params.ExternalID, params.Email, params.RoleID, params.Phone).Scan(&id); err != nil {
			return mapWriteError("create user", err)
		}
		if _, err := tx.Exec(ctx, insertProfileQuery, id, params.Username); err != nil {
			return mapWriteError("create profile", err)
		}

		var err error
		user, err = scanUser(tx.QueryRow(ctx, userSelect+" WHERE u.id = $1", id))
		if err != nil {
			return fmt.Errorf("reload user: %w", err)
		}
		return nil
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// Update applies a role change and a profile upsert atomically. A missing
// profile is created.
func (r *Repo) Update(ctx context.Context, params UpdateParams) (User, error) {
	var user User
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var tag pgconn.CommandTag
		var err error
		if params.RoleID != nil {
			tag, err = tx.Exec(ctx, `UPDATE auth_users SET role_id = $2, updated_at = now() WHERE id = $1`, params.ID, *params.RoleID)
		} else {
			tag, err = tx.Exec(ctx, `UPDATE auth_users SET updated_at = now() WHERE id = $1`, params.ID)
		}
		if err != nil {
			return mapWriteError("update user", err)
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFoundf("user", params.ID)
		}

		if params.Username != nil {
			if _, err := tx.Exec(ctx, upsertProfileQuery, params.ID, *params.Username); err != nil {
				return mapWriteError("update profile", err)
			}
		}

		user, err = scanUser(tx.QueryRow(ctx, userSelect+" WHERE u.id = $1", params.ID))
		if err != nil {
			return fmt.Errorf("reload user: %w", err)
		}
		return nil
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// Delete removes the profile and then the identity. Records still
// referencing the user block the delete with a Conflict.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, deleteProfileQuery, id); err != nil {
			return mapWriteError("delete profile", err)
		}
		tag, err := tx.Exec(ctx, deleteUserQuery, id)
		if err != nil {
			return mapWriteError("delete user", err)
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFoundf("user", id)
		}
		return nil
	})
}

// LinkExternalID binds an identity-provider subject to a user that has none.
func (r *Repo) LinkExternalID(ctx context.Context, id uuid.UUID, externalID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE auth_users SET external_id = $2, updated_at = now()
		WHERE id = $1 AND external_id IS NULL`, id, externalID)
	if err != nil {
		return mapWriteError("link subject", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("user", id)
	}
	return nil
}

func (r *Repo) UpdateContact(ctx context.Context, params ContactParams) (User, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE auth_users SET phone = $2, device_token = $3, updated_at = now()
		WHERE id = $1`, params.ID, params.Phone, params.DeviceToken)
	if err != nil {
		return User{}, fmt.Errorf("update contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return User{}, apperr.NotFoundf("user", params.ID)
	}
	return r.GetByID(ctx, params.ID)
}

func (r *Repo) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM roles ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	roles := make([]Role, 0, 4)
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate roles: %w", rows.Err())
	}
	return roles, nil
}

func (r *Repo) GetRole(ctx context.Context, id uuid.UUID) (Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx, `SELECT id, name, created_at FROM roles WHERE id = $1`, id).
		Scan(&role.ID, &role.Name, &role.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Role{}, apperr.NotFoundf("role", id)
	}
	if err != nil {
		return Role{}, fmt.Errorf("get role: %w", err)
	}
	return role, nil
}

// mapWriteError turns constraint violations into domain errors so races
// that slip past the service pre-checks still surface as Conflict.
func mapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperr.Wrap(apperr.KindConflict, conflictMessage(pgErr.ConstraintName), err).WithOp(op)
		case pgForeignKeyViolation:
			if strings.Contains(pgErr.ConstraintName, "role") {
				return apperr.Wrap(apperr.KindValidation, "invalid role ID provided", err).WithOp(op)
			}
			return apperr.Wrap(apperr.KindConflict, "user still owns records", err).WithOp(op)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func conflictMessage(constraint string) string {
	switch {
	case strings.Contains(constraint, "email"):
		return "email already exists"
	case strings.Contains(constraint, "username"):
		return "username already exists"
	case strings.Contains(constraint, "external_id"):
		return "identity already linked"
	default:
		return "duplicate record"
	}
}
