package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Fomkes/uae-water-delivery1-sub001/entities"
	"github.com/Fomkes/uae-water-delivery1-sub001/models"
	logx "github.com/Fomkes/uae-water-delivery1-sub001/pkg/logger"

	"golang.org/x/crypto/bcrypt"
)

// AdminAccount is a stored back-office user with its password hash.
type AdminAccount struct {
	Admin        entities.AdminUser
	PasswordHash string
}

type UserRepository interface {
	Migrate(ctx context.Context) error
	GetAdminByName(ctx context.Context, username string) (acc AdminAccount, exists bool, err error)
	AddAdmin(ctx context.Context, admin entities.AdminUser, password string) error
	UpdatePassword(ctx context.Context, adminId string, newPassword string) error
	EncryptPassword(password string) (hashedPassword string, err error)
	VerifyPassword(hashedPassword string, sentPassword string) bool
}

type UserRepo struct {
	db     *sql.DB
	driver string
	cost   int
}

func NewUserRepository(conn *sql.DB, driver string) (*UserRepo, error) {
	if conn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	if err := conn.Ping(); err != nil {
		return nil, err
	}
	return &UserRepo{
		db:     conn,
		driver: driver,
		cost:   bcrypt.DefaultCost,
	}, nil
}

const createAdminUsersTable = `CREATE TABLE IF NOT EXISTS admin_users (
	id VARCHAR(64) PRIMARY KEY,
	username VARCHAR(191) NOT NULL UNIQUE,
	email VARCHAR(191) NOT NULL,
	role VARCHAR(32) NOT NULL,
	password_hash VARCHAR(255) NOT NULL
)`

func (u *UserRepo) Migrate(ctx context.Context) error {
	if _, err := u.db.ExecContext(ctx, createAdminUsersTable); err != nil {
		return models.WrapSQL(fmt.Errorf("create admin_users table: %w", err))
	}
	return nil
}

func (u *UserRepo) GetAdminByName(ctx context.Context, username string) (acc AdminAccount, exists bool, err error) {
	row := u.db.QueryRowContext(ctx, rebind(u.driver, "SELECT id, username, email, role, password_hash FROM admin_users WHERE username = ?"), username)
	var role string
	err = row.Scan(&acc.Admin.Id, &acc.Admin.Username, &acc.Admin.Email, &role, &acc.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = nil
			return
		}
		err = models.WrapSQL(fmt.Errorf("get admin %s: %w", username, err))
		return
	}
	acc.Admin.Role = entities.Role(role)
	exists = true
	return
}

func (u *UserRepo) AddAdmin(ctx context.Context, admin entities.AdminUser, password string) error {
	hash, err := u.EncryptPassword(password)
	if err != nil {
		return err
	}
	_, err = u.db.ExecContext(ctx, rebind(u.driver, "INSERT INTO admin_users (id, username, email, role, password_hash) VALUES (?, ?, ?, ?, ?)"),
		admin.Id, admin.Username, admin.Email, string(admin.Role), hash)
	if err != nil {
		return models.WrapSQL(fmt.Errorf("insert admin %s: %w", admin.Username, err))
	}
	return nil
}

func (u *UserRepo) UpdatePassword(ctx context.Context, adminId string, newPassword string) error {
	hash, err := u.EncryptPassword(newPassword)
	if err != nil {
		return err
	}
	if _, err := u.db.ExecContext(ctx, rebind(u.driver, "UPDATE admin_users SET password_hash = ? WHERE id = ?"), hash, adminId); err != nil {
		return models.WrapSQL(fmt.Errorf("update password of %s: %w", adminId, err))
	}
	return nil
}

func (u *UserRepo) EncryptPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), u.cost)
	if err != nil {
		logx.Error().Err(err).Msg("EncryptPassword")
		return "", models.ErrServerError
	}
	return string(hashed), nil
}

func (u *UserRepo) VerifyPassword(hashedPassword string, sentPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(sentPassword)) == nil
}

var _ UserRepository = (*UserRepo)(nil)
