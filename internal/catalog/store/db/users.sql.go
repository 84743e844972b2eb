package db

import (
	"context"
)

const userColumns = `id, username, password_hash, email, is_admin, token, created_at`

func scanUser(row scanner) (User, error) {
	var i User
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.PasswordHash,
		&i.Email,
		&i.IsAdmin,
		&i.Token,
		&i.CreatedAt,
	)
	return i, err
}

const createUser = `INSERT INTO users (username, password_hash, email, is_admin)
VALUES ($1, $2, $3, $4)
RETURNING ` + userColumns

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser,
		arg.Username,
		arg.PasswordHash,
		arg.Email,
		arg.IsAdmin,
	)
	return scanUser(row)
}

const findUserByUsername = `SELECT ` + userColumns + ` FROM users WHERE username = $1`

func (q *Queries) FindUserByUsername(ctx context.Context, username string) (User, error) {
	row := q.db.QueryRow(ctx, findUserByUsername, username)
	return scanUser(row)
}

const findUserByToken = `SELECT ` + userColumns + ` FROM users WHERE token = $1`

func (q *Queries) FindUserByToken(ctx context.Context, token string) (User, error) {
	row := q.db.QueryRow(ctx, findUserByToken, token)
	return scanUser(row)
}

const setUserToken = `UPDATE users SET token = $2 WHERE id = $1`

func (q *Queries) SetUserToken(ctx context.Context, id int64, token string) (int64, error) {
	result, err := q.db.Exec(ctx, setUserToken, id, token)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const clearUserToken = `UPDATE users SET token = NULL WHERE id = $1 AND token = $2`

func (q *Queries) ClearUserToken(ctx context.Context, id int64, token string) (int64, error) {
	result, err := q.db.Exec(ctx, clearUserToken, id, token)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
