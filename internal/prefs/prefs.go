// Package prefs manages user preferences, chiefly the dark-mode flag. The
// flag lives in two places: the device-local store, so the theme applies
// instantly on launch, and the remote preferences document, so it follows the
// account. The local copy is best-effort; the remote document is the truth.
package prefs

import (
	"context"

	"go.uber.org/zap"

	"taskify/app/internal/localstore"
	"taskify/app/internal/models"
	"taskify/app/internal/remote"
)

// PreferenceStore is the slice of the remote accessor this service needs.
type PreferenceStore interface {
	GetPreferences(ctx context.Context, userID string) (*models.Preferences, error)
	UpdatePreferences(ctx context.Context, userID string, update remote.PreferencesUpdate) (*models.Preferences, error)
}

type Service struct {
	remote PreferenceStore
	local  *localstore.Store
	log    *zap.Logger
}

func NewService(remoteStore PreferenceStore, local *localstore.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{remote: remoteStore, local: local, log: log}
}

// DarkMode resolves the dark-mode flag: the remote document wins, the cached
// local value covers the remote being unreachable or the document not yet
// existing, and the final fallback is light mode.
func (s *Service) DarkMode(ctx context.Context, userID string) bool {
	prefs, err := s.remote.GetPreferences(ctx, userID)
	if err == nil {
		s.cacheDarkMode(prefs.DarkMode)
		return prefs.DarkMode
	}
	if !remote.IsNotFound(err) {
		s.log.Warn("failed to read remote preferences, using cached value", zap.Error(err))
	}

	var cached bool
	if err := s.local.GetJSON(localstore.KeyDarkMode, &cached); err != nil {
		return false
	}
	return cached
}

// SetDarkMode writes the flag remotely, which also publishes the theme stamp,
// then refreshes the local cache.
func (s *Service) SetDarkMode(ctx context.Context, userID string, enabled bool) error {
	if _, err := s.remote.UpdatePreferences(ctx, userID, remote.PreferencesUpdate{DarkMode: &enabled}); err != nil {
		return err
	}

	s.cacheDarkMode(enabled)
	return nil
}

func (s *Service) cacheDarkMode(enabled bool) {
	if err := s.local.SetJSON(localstore.KeyDarkMode, enabled); err != nil {
		s.log.Warn("failed to cache dark mode flag", zap.Error(err))
	}
}

// Language returns the saved language code, defaulting to English.
func (s *Service) Language(ctx context.Context, userID string) string {
	prefs, err := s.remote.GetPreferences(ctx, userID)
	if err != nil {
		return "en"
	}
	if prefs.Language == "" {
		return "en"
	}
	return prefs.Language
}

func (s *Service) SetLanguage(ctx context.Context, userID, language string) error {
	_, err := s.remote.UpdatePreferences(ctx, userID, remote.PreferencesUpdate{Language: &language})
	return err
}
