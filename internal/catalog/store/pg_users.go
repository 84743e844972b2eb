package store

import (
	"context"
	"errors"

	catalogerrors "github.com/abgdnv/observatory/internal/catalog/errors"
	"github.com/abgdnv/observatory/internal/catalog/store/db"
	"github.com/jackc/pgx/v5"
)

// CreateUser adds a user. Returns ErrUsernameTaken if the username exists.
func (p *PgStore) CreateUser(ctx context.Context, params db.CreateUserParams) (*db.User, error) {
	user, err := p.q.CreateUser(ctx, params)
	if err != nil {
		if isUniqueViolation(err, usernameConstraint) {
			return nil, catalogerrors.ErrUsernameTaken
		}
		return nil, storageError(catalogerrors.ErrCreateUser, err)
	}
	return &user, nil
}

func (p *PgStore) FindUserByUsername(ctx context.Context, username string) (*db.User, error) {
	user, err := p.q.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalogerrors.ErrUserNotFound
		}
		return nil, storageError(catalogerrors.ErrFindUser, err)
	}
	return &user, nil
}

func (p *PgStore) FindUserByToken(ctx context.Context, token string) (*db.User, error) {
	user, err := p.q.FindUserByToken(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalogerrors.ErrUserNotFound
		}
		return nil, storageError(catalogerrors.ErrFindUser, err)
	}
	return &user, nil
}

// SetToken overwrites the stored token in one statement, so the last login wins.
func (p *PgStore) SetToken(ctx context.Context, id int64, token string) error {
	count, err := p.q.SetUserToken(ctx, id, token)
	if err != nil {
		return storageError(catalogerrors.ErrUpdateToken, err)
	}
	if count == 0 {
		return catalogerrors.ErrUserNotFound
	}
	return nil
}

// ClearToken is a compare-and-set: a token replaced by a newer login is left untouched.
func (p *PgStore) ClearToken(ctx context.Context, id int64, token string) (bool, error) {
	count, err := p.q.ClearUserToken(ctx, id, token)
	if err != nil {
		return false, storageError(catalogerrors.ErrUpdateToken, err)
	}
	return count > 0, nil
}
