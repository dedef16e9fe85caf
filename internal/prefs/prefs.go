// Package prefs persists per-user dashboard preferences in Redis so the
// dashboard reopens the way the user left it.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"leadboard_backend/internal/leads/filter"
	"leadboard_backend/platform/apperr"
	"leadboard_backend/platform/logger"
)

// Tab identifies which lead collection the table shows.
type Tab string

const (
	TabActive   Tab = "active"
	TabArchived Tab = "archived"
)

// Preferences is the persisted dashboard state.
type Preferences struct {
	Filters   filter.Criteria `json:"filters"`
	ActiveTab Tab             `json:"activeTab"`
	ViewMode  string          `json:"viewMode"`
}

// Defaults returns the state a user without saved preferences gets.
func Defaults() Preferences {
	return Preferences{
		ActiveTab: TabActive,
		ViewMode:  "table",
	}
}

// Service reads and writes preferences. Preferences never expire; they
// are tiny and losing them only costs the user a few clicks.
type Service struct {
	rdb *redis.Client
	log *logger.Logger
}

func NewService(rdb *redis.Client, log *logger.Logger) *Service {
	return &Service{rdb: rdb, log: log}
}

func key(userID string) string {
	return fmt.Sprintf("leadboard:prefs:%s", userID)
}

// Get loads a user's preferences. Missing or unreadable entries fall back
// to Defaults; a corrupt blob is not an error the caller can act on.
func (s *Service) Get(ctx context.Context, userID string) (Preferences, error) {
	raw, err := s.rdb.Get(ctx, key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return Defaults(), nil
	}
	if err != nil {
		return Defaults(), apperr.Wrap(apperr.KindUnavailable, "preferences store unreachable", err).WithOp("prefs.Get")
	}

	var p Preferences
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		if s.log != nil {
			s.log.Warn("discarding corrupt preferences blob", "userId", userID, "error", err)
		}
		return Defaults(), nil
	}
	if p.ActiveTab != TabActive && p.ActiveTab != TabArchived {
		p.ActiveTab = TabActive
	}
	if p.ViewMode == "" {
		p.ViewMode = Defaults().ViewMode
	}
	return p, nil
}

// Set persists a user's preferences, replacing any previous value.
func (s *Service) Set(ctx context.Context, userID string, p Preferences) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "encode preferences", err).WithOp("prefs.Set")
	}
	if err := s.rdb.Set(ctx, key(userID), raw, 0).Err(); err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "preferences store unreachable", err).WithOp("prefs.Set")
	}
	return nil
}
