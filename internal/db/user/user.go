package user

import (
	"context"
	"database/sql"
	"errors"
	c "resetme/internal/core/domain/common"
	e "resetme/internal/core/domain/errors"
	"resetme/internal/core/domain/user"
	"resetme/internal/db"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

const PG_UNIQUE_CONSTRAINT_ERR_CODE = "23505"
const EMAIL_CONSTRAINT_NAME = "user_email_idx"

const userColumns = `id, email, password_hash, reset_token, reset_token_expires_at, version, created_at`

type PgxCredentialRepository struct {
	db db.Queryer
}

func NewPgxCredentialRepository(db db.Queryer) *PgxCredentialRepository {
	if db == nil {
		panic(e.NewNilArgumentError("db"))
	}
	return &PgxCredentialRepository{db: db}
}

func (r *PgxCredentialRepository) Create(ctx context.Context, input user.CreateUserInput) (u user.User, err error) {
	row := r.db.QueryRow(
		ctx,
		`INSERT INTO "user" (email, password_hash, created_at)
		 VALUES ($1, $2, $3)
		 RETURNING `+userColumns,
		string(input.Email),
		string(input.PasswordHash),
		input.CreatedAt,
	)
	u, err = scanUser(row)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == PG_UNIQUE_CONSTRAINT_ERR_CODE && pgErr.ConstraintName == EMAIL_CONSTRAINT_NAME {
			return u, user.ErrEmailAlreadyExists
		}
	}
	if err != nil {
		return u, err
	}
	return u, u.Validate()
}

func (r *PgxCredentialRepository) GetByID(ctx context.Context, id user.ID) (u user.User, err error) {
	row := r.db.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM "user" WHERE id = $1`,
		int64(id),
	)
	u, err = scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return u, user.ErrUserDoesNotExist
	}
	if err != nil {
		return u, err
	}
	return u, u.Validate()
}

func (r *PgxCredentialRepository) GetByEmail(ctx context.Context, email c.Email) (u user.User, err error) {
	row := r.db.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM "user" WHERE email = $1`,
		string(email),
	)
	u, err = scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return u, user.ErrUserDoesNotExist
	}
	if err != nil {
		return u, err
	}
	return u, u.Validate()
}

func (r *PgxCredentialRepository) GetByResetToken(
	ctx context.Context,
	token user.ResetToken,
) (u user.User, err error) {
	row := r.db.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM "user" WHERE reset_token = $1`,
		string(token),
	)
	u, err = scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return u, user.ErrUserDoesNotExist
	}
	if err != nil {
		return u, err
	}
	return u, u.Validate()
}

// SetResetToken applies only if the record version has not moved since the
// caller read it, so concurrent requests for the same account cannot leave
// more than one live token.
func (r *PgxCredentialRepository) SetResetToken(
	ctx context.Context,
	input user.SetResetTokenInput,
) (u user.User, err error) {
	row := r.db.QueryRow(
		ctx,
		`UPDATE "user"
		 SET reset_token = $2, reset_token_expires_at = $3, version = version + 1
		 WHERE id = $1 AND version = $4
		 RETURNING `+userColumns,
		int64(input.UserID),
		string(input.Token),
		input.ExpiresAt,
		int64(input.ExpectedVersion),
	)
	u, err = scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		_, getErr := r.GetByID(ctx, input.UserID)
		if getErr != nil {
			return u, getErr
		}
		return u, user.ErrStaleRecord
	}
	if err != nil {
		return u, err
	}
	return u, u.Validate()
}

func (r *PgxCredentialRepository) UpdatePassword(
	ctx context.Context,
	input user.UpdatePasswordInput,
) (u user.User, err error) {
	var row pgx.Row
	if input.ConsumeResetToken.IsPresent {
		// Matching on the exact pending token makes the change and the token
		// consumption a single atomic statement: the first writer wins, any
		// other holder of the same token finds no row to update.
		row = r.db.QueryRow(
			ctx,
			`UPDATE "user"
			 SET password_hash = $2, reset_token = NULL, reset_token_expires_at = NULL, version = version + 1
			 WHERE id = $1 AND reset_token = $3
			 RETURNING `+userColumns,
			int64(input.UserID),
			string(input.PasswordHash),
			string(input.ConsumeResetToken.Value),
		)
	} else {
		row = r.db.QueryRow(
			ctx,
			`UPDATE "user"
			 SET password_hash = $2, version = version + 1
			 WHERE id = $1
			 RETURNING `+userColumns,
			int64(input.UserID),
			string(input.PasswordHash),
		)
	}
	u, err = scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		if input.ConsumeResetToken.IsPresent {
			return u, user.ErrResetTokenInvalid
		}
		return u, user.ErrUserDoesNotExist
	}
	if err != nil {
		return u, err
	}
	return u, u.Validate()
}

func scanUser(row pgx.Row) (u user.User, err error) {
	var id int64
	var email string
	var passwordHash string
	var resetToken sql.NullString
	var resetTokenExpiresAt sql.NullTime
	var version int64
	var createdAt time.Time

	err = row.Scan(&id, &email, &passwordHash, &resetToken, &resetTokenExpiresAt, &version, &createdAt)
	if err != nil {
		return u, err
	}
	u.ID = user.ID(id)
	u.Email = c.Email(email)
	u.PasswordHash = user.PasswordHash(passwordHash)
	u.ResetToken = c.NewOptional(user.ResetToken(resetToken.String), resetToken.Valid)
	u.ResetTokenExpiresAt = c.NewOptional(resetTokenExpiresAt.Time, resetTokenExpiresAt.Valid)
	u.Version = uint64(version)
	u.CreatedAt = createdAt
	return u, nil
}
