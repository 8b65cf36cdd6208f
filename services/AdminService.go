package services

import (
	"context"

	"github.com/Fomkes/uae-water-delivery1-sub001/entities"
	"github.com/Fomkes/uae-water-delivery1-sub001/models"
	"github.com/Fomkes/uae-water-delivery1-sub001/repository"

	"github.com/google/uuid"
)

type AdminService struct {
	sr   repository.AdminSessionRepository
	auth Authenticator
}

func NewAdminService(sessionRepo repository.AdminSessionRepository, auth Authenticator) *AdminService {
	return &AdminService{
		sr:   sessionRepo,
		auth: auth,
	}
}

// Session restores the admin session behind sessionId from durable storage.
func (as *AdminService) Session(ctx context.Context, sessionId string) *AdminSession {
	return RestoreAdminSession(ctx, sessionId, as.sr, as.auth)
}

// Login opens a fresh session and authenticates it. On failure no session id
// is handed out.
func (as *AdminService) Login(ctx context.Context, username, password string) (sessionId string, admin entities.AdminUser, ok bool) {
	session := newAdminSession(uuid.NewString(), as.sr, as.auth)
	if !session.Login(ctx, username, password) {
		return "", entities.AdminUser{}, false
	}
	admin, _ = session.Admin()
	return session.Id(), admin, true
}

func (as *AdminService) Logout(ctx context.Context, sessionId string) {
	as.Session(ctx, sessionId).Logout(ctx)
}

func (as *AdminService) Current(ctx context.Context, sessionId string) (entities.AdminUser, bool) {
	if sessionId == "" {
		return entities.AdminUser{}, false
	}
	return as.Session(ctx, sessionId).Admin()
}

// ChangePassword rotates the password of the admin signed in on sessionId and
// ends that session, as the old credentials no longer hold.
func (as *AdminService) ChangePassword(ctx context.Context, sessionId, oldPassword, newPassword string) error {
	changer, ok := as.auth.(PasswordChanger)
	if !ok {
		return models.ErrNotAllowed
	}
	session := as.Session(ctx, sessionId)
	admin, ok := session.Admin()
	if !ok {
		return models.ErrUnauthorized
	}
	if err := changer.ChangePassword(ctx, admin.Username, oldPassword, newPassword); err != nil {
		return err
	}
	session.Logout(ctx)
	return nil
}
