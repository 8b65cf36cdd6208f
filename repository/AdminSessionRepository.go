package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Fomkes/uae-water-delivery1-sub001/entities"
	"github.com/Fomkes/uae-water-delivery1-sub001/models"
)

type AdminSessionRepository interface {
	// LoadAdmin returns the admin held by a session, or nil when the session
	// has none.
	LoadAdmin(ctx context.Context, sessionId string) (*entities.AdminUser, error)
	SaveAdmin(ctx context.Context, sessionId string, admin entities.AdminUser) error
	DeleteAdmin(ctx context.Context, sessionId string) error
}

type AdminSessionRepo struct {
	records Records
	ttl     time.Duration
}

func NewAdminSessionRepository(records Records, ttl time.Duration) (*AdminSessionRepo, error) {
	if records == nil {
		return nil, errors.New("records must be non-nil")
	}
	return &AdminSessionRepo{records: records, ttl: ttl}, nil
}

func adminKey(sessionId string) string {
	return fmt.Sprintf("admin:%s:user", sessionId)
}

func (s *AdminSessionRepo) LoadAdmin(ctx context.Context, sessionId string) (*entities.AdminUser, error) {
	val, err := s.records.Get(ctx, adminKey(sessionId))
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var admin entities.AdminUser
	if err := json.Unmarshal(val, &admin); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrCorruptRecord, err)
	}
	if admin.Username == "" {
		return nil, fmt.Errorf("%w: admin record has no username", models.ErrCorruptRecord)
	}
	if !admin.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", models.ErrCorruptRecord, admin.Role)
	}
	return &admin, nil
}

func (s *AdminSessionRepo) SaveAdmin(ctx context.Context, sessionId string, admin entities.AdminUser) error {
	jsonData, err := json.Marshal(admin)
	if err != nil {
		return fmt.Errorf("marshal admin: %w", err)
	}
	return s.records.Set(ctx, adminKey(sessionId), jsonData, s.ttl)
}

func (s *AdminSessionRepo) DeleteAdmin(ctx context.Context, sessionId string) error {
	return s.records.Delete(ctx, adminKey(sessionId))
}

var _ AdminSessionRepository = (*AdminSessionRepo)(nil)
