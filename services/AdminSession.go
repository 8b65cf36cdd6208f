package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Fomkes/uae-water-delivery1-sub001/entities"
	"github.com/Fomkes/uae-water-delivery1-sub001/models"
	logx "github.com/Fomkes/uae-water-delivery1-sub001/pkg/logger"
	"github.com/Fomkes/uae-water-delivery1-sub001/repository"
)

// AdminSession holds the admin identity of one session. It is either
// unauthenticated (admin == nil) or authenticated.
type AdminSession struct {
	mu    sync.Mutex
	id    string
	admin *entities.AdminUser
	repo  repository.AdminSessionRepository
	auth  Authenticator
	now   func() time.Time
}

// RestoreAdminSession loads the identity persisted for sessionId. Missing,
// corrupt or unreadable records all yield an unauthenticated session.
func RestoreAdminSession(ctx context.Context, sessionId string, repo repository.AdminSessionRepository, auth Authenticator) *AdminSession {
	s := newAdminSession(sessionId, repo, auth)
	if sessionId == "" {
		return s
	}

	admin, err := repo.LoadAdmin(ctx, sessionId)
	switch {
	case err == nil:
		s.admin = admin
	case errors.Is(err, models.ErrCorruptRecord):
		logx.Warn().Err(err).Str("sessionId", sessionId).Msg("discarding corrupt admin session record")
		if err := repo.DeleteAdmin(ctx, sessionId); err != nil {
			logx.Error().Err(err).Str("sessionId", sessionId).Msg("failed to delete corrupt admin session record")
		}
	default:
		logx.Error().Err(err).Str("sessionId", sessionId).Msg("failed to restore admin session")
	}
	return s
}

func newAdminSession(sessionId string, repo repository.AdminSessionRepository, auth Authenticator) *AdminSession {
	return &AdminSession{
		id:   sessionId,
		repo: repo,
		auth: auth,
		now:  time.Now,
	}
}

func (s *AdminSession) Id() string {
	return s.id
}

// Login authenticates and, on success, stores the admin with the current time
// as its last login. A failed login leaves the session as it was.
func (s *AdminSession) Login(ctx context.Context, username, password string) bool {
	profile, ok := s.auth.Authenticate(ctx, username, password)
	if !ok {
		return false
	}
	profile.LastLogin = s.now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.admin = &profile
	if err := s.repo.SaveAdmin(ctx, s.id, profile); err != nil {
		logx.Error().Err(err).Str("sessionId", s.id).Msg("failed to persist admin session")
	}
	logx.Info().Str("sessionId", s.id).Str("username", profile.Username).Msg("admin logged in")
	return true
}

func (s *AdminSession) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admin = nil
	if s.id == "" {
		return
	}
	if err := s.repo.DeleteAdmin(ctx, s.id); err != nil {
		logx.Error().Err(err).Str("sessionId", s.id).Msg("failed to delete admin session")
	}
}

func (s *AdminSession) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.admin != nil
}

func (s *AdminSession) Admin() (entities.AdminUser, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.admin == nil {
		return entities.AdminUser{}, false
	}
	return *s.admin, true
}
