package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/Fomkes/uae-water-delivery1-sub001/entities"
	"github.com/Fomkes/uae-water-delivery1-sub001/models"
	logx "github.com/Fomkes/uae-water-delivery1-sub001/pkg/logger"
	"github.com/Fomkes/uae-water-delivery1-sub001/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Authenticator checks admin credentials. It returns the admin profile to
// start a session with, or false on mismatch.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (entities.AdminUser, bool)
}

// PasswordChanger is implemented by authenticators that can rotate a
// password.
type PasswordChanger interface {
	ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error
}

// StaticCredentials accepts exactly one configured username/password pair.
// It is a stand-in until a real credential service exists.
type StaticCredentials struct {
	username string
	hash     []byte
	profile  entities.AdminUser
}

const bcryptCost = 10

func NewStaticCredentials(username, password string, profile entities.AdminUser) (*StaticCredentials, error) {
	if password == "" {
		return nil, errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return NewStaticCredentialsFromHash(username, string(hash), profile)
}

func NewStaticCredentialsFromHash(username, hash string, profile entities.AdminUser) (*StaticCredentials, error) {
	if username == "" {
		return nil, errors.New("username must not be empty")
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("invalid bcrypt hash: %w", err)
	}
	profile.Username = username
	if !profile.Role.Valid() {
		profile.Role = entities.RoleAdmin
	}
	return &StaticCredentials{
		username: username,
		hash:     []byte(hash),
		profile:  profile,
	}, nil
}

func (c *StaticCredentials) Authenticate(_ context.Context, username, password string) (entities.AdminUser, bool) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.username)) == 1
	err := bcrypt.CompareHashAndPassword(c.hash, []byte(password))
	if !userOK || err != nil {
		logx.Debug().Str("username", username).Msg("admin credentials rejected")
		return entities.AdminUser{}, false
	}
	return c.profile, true
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// DatabaseCredentials checks admins stored in the admin_users table.
type DatabaseCredentials struct {
	users repository.UserRepository
}

func NewDatabaseCredentials(users repository.UserRepository) *DatabaseCredentials {
	return &DatabaseCredentials{users: users}
}

func (d *DatabaseCredentials) Authenticate(ctx context.Context, username, password string) (entities.AdminUser, bool) {
	acc, ex, err := d.users.GetAdminByName(ctx, username)
	if err != nil {
		logx.Error().Err(err).Str("username", username).Msg("admin lookup failed")
		return entities.AdminUser{}, false
	}
	if !ex || !d.users.VerifyPassword(acc.PasswordHash, password) {
		logx.Debug().Str("username", username).Msg("admin credentials rejected")
		return entities.AdminUser{}, false
	}
	return acc.Admin, true
}

func (d *DatabaseCredentials) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: new password must have at least 8 characters", models.ErrBadRequest)
	}
	acc, ex, err := d.users.GetAdminByName(ctx, username)
	if err != nil {
		return err
	}
	if !ex || !d.users.VerifyPassword(acc.PasswordHash, oldPassword) {
		return models.ErrUnauthorized
	}
	return d.users.UpdatePassword(ctx, acc.Admin.Id, newPassword)
}

// EnsureAdmin creates the bootstrap admin when no account with its username
// exists yet.
func EnsureAdmin(ctx context.Context, users repository.UserRepository, admin entities.AdminUser, password string) error {
	_, ex, err := users.GetAdminByName(ctx, admin.Username)
	if err != nil || ex {
		return err
	}
	if admin.Id == "" {
		admin.Id = uuid.NewString()
	}
	if !admin.Role.Valid() {
		admin.Role = entities.RoleSuperAdmin
	}
	if err := users.AddAdmin(ctx, admin, password); err != nil {
		return err
	}
	logx.Info().Str("username", admin.Username).Msg("bootstrap admin created")
	return nil
}

var (
	_ Authenticator   = (*StaticCredentials)(nil)
	_ Authenticator   = (*DatabaseCredentials)(nil)
	_ PasswordChanger = (*DatabaseCredentials)(nil)
)
