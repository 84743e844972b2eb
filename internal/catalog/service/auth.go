package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	catalogerrors "github.com/abgdnv/observatory/internal/catalog/errors"
	"github.com/abgdnv/observatory/internal/catalog/mutation"
	"github.com/abgdnv/observatory/internal/catalog/store"
	"github.com/abgdnv/observatory/internal/catalog/store/db"
	"github.com/abgdnv/observatory/pkg/auth"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/crypto/bcrypt"
)

// TokenManager issues session tokens and checks their signature.
type TokenManager interface {
	auth.Issuer
	auth.Verifier
}

// AuthService defines registration, sessions and the access checks of the API.
type AuthService interface {
	// Register creates a non admin user without a session.
	// Returns a ValidationError on missing fields or a taken username.
	Register(ctx context.Context, dto RegisterDto) (*UserDto, error)

	// Login issues a new token and replaces any previous one of the user.
	// Returns ErrInvalidCredentials on an unknown username or a wrong password.
	Login(ctx context.Context, dto LoginDto) (*TokenDto, error)

	// Logout ends the session of identity. A session already replaced by a newer login is left alone.
	Logout(ctx context.Context, identity Identity) error

	// Authenticate resolves the caller of token.
	// Returns ErrUnauthorized unless token is the current token of a user.
	Authenticate(ctx context.Context, token string) (*Identity, error)

	// AuthorizeAdmin returns ErrForbidden unless identity is an admin.
	AuthorizeAdmin(identity Identity) error

	// EnsureAdmin creates an admin user unless the username exists. Reports whether it was created.
	EnsureAdmin(ctx context.Context, username, password string) (bool, error)

	// FindUser returns the profile of a user. Returns ErrUserNotFound if it does not exist.
	FindUser(ctx context.Context, username string) (*UserDto, error)
}

// Auth implements AuthService.
type Auth struct {
	users         store.UserStore
	tokens        TokenManager
	logger        *slog.Logger
	hashCost      int
	loginsCounter metric.Int64Counter
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(users store.UserStore, tokens TokenManager, logger *slog.Logger) *Auth {
	return &Auth{
		users:         users,
		tokens:        tokens,
		logger:        logger.With("component", "auth"),
		hashCost:      bcrypt.DefaultCost,
		loginsCounter: newCounter("logins", "Total number of successful logins"),
	}
}

func (a *Auth) Register(ctx context.Context, dto RegisterDto) (*UserDto, error) {
	dto.Username = strings.TrimSpace(dto.Username)
	if err := mutation.Struct(dto); err != nil {
		return nil, err
	}
	user, err := a.createUser(ctx, dto.Username, dto.Password, dto.Email, false)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrUsernameTaken) {
			return nil, catalogerrors.NewValidationError("username", "already taken")
		}
		return nil, err
	}
	a.logger.InfoContext(ctx, "User registered", "username", user.Username)
	return toUserDto(user), nil
}

func (a *Auth) createUser(ctx context.Context, username, password, email string, admin bool) (*db.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return a.users.CreateUser(ctx, db.CreateUserParams{
		Username:     username,
		PasswordHash: string(hash),
		Email:        email,
		IsAdmin:      admin,
	})
}

func (a *Auth) Login(ctx context.Context, dto LoginDto) (*TokenDto, error) {
	if err := mutation.Struct(dto); err != nil {
		return nil, err
	}
	user, err := a.users.FindUserByUsername(ctx, strings.TrimSpace(dto.Username))
	if err != nil {
		if errors.Is(err, catalogerrors.ErrUserNotFound) {
			return nil, catalogerrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(dto.Password)); err != nil {
		a.logger.WarnContext(ctx, "Login rejected", "username", user.Username)
		return nil, catalogerrors.ErrInvalidCredentials
	}

	token, err := a.tokens.Issue(user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	if err := a.users.SetToken(ctx, user.ID, token); err != nil {
		return nil, err
	}
	a.loginsCounter.Add(ctx, 1)
	return &TokenDto{Token: token}, nil
}

func (a *Auth) Logout(ctx context.Context, identity Identity) error {
	cleared, err := a.users.ClearToken(ctx, identity.UserID, identity.Token)
	if err != nil {
		return err
	}
	if !cleared {
		a.logger.DebugContext(ctx, "Session already replaced", "username", identity.Username)
	}
	return nil
}

func (a *Auth) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, catalogerrors.ErrUnauthorized
	}
	claims, err := a.tokens.Verify(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", catalogerrors.ErrUnauthorized, err)
	}
	user, err := a.users.FindUserByToken(ctx, token)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrUserNotFound) {
			return nil, catalogerrors.ErrUnauthorized
		}
		return nil, err
	}
	if subject, _ := claims.Subject(); subject != user.Username {
		return nil, catalogerrors.ErrUnauthorized
	}
	return &Identity{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
		Token:    token,
	}, nil
}

func (a *Auth) AuthorizeAdmin(identity Identity) error {
	if !identity.IsAdmin {
		return catalogerrors.ErrForbidden
	}
	return nil
}

func (a *Auth) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	if _, err := a.users.FindUserByUsername(ctx, username); err == nil {
		return false, nil
	} else if !errors.Is(err, catalogerrors.ErrUserNotFound) {
		return false, err
	}
	if _, err := a.createUser(ctx, username, password, "", true); err != nil {
		if errors.Is(err, catalogerrors.ErrUsernameTaken) {
			return false, nil
		}
		return false, err
	}
	a.logger.InfoContext(ctx, "Admin user created", "username", username)
	return true, nil
}

func (a *Auth) FindUser(ctx context.Context, username string) (*UserDto, error) {
	user, err := a.users.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return toUserDto(user), nil
}
