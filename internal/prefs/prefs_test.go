package prefs_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"taskify/app/internal/localstore"
	"taskify/app/internal/models"
	"taskify/app/internal/prefs"
	"taskify/app/internal/remote"
)

type fakeRemote struct {
	prefs map[string]*models.Preferences
	err   error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{prefs: make(map[string]*models.Preferences)}
}

func (f *fakeRemote) GetPreferences(_ context.Context, userID string) (*models.Preferences, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.prefs[userID]
	if !ok {
		return nil, remote.ErrNotFound
	}
	copy := *p
	return &copy, nil
}

func (f *fakeRemote) UpdatePreferences(_ context.Context, userID string, update remote.PreferencesUpdate) (*models.Preferences, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.prefs[userID]
	if !ok {
		p = &models.Preferences{UserID: userID}
		f.prefs[userID] = p
	}
	if update.DarkMode != nil {
		p.DarkMode = *update.DarkMode
	}
	if update.Language != nil {
		p.Language = *update.Language
	}
	copy := *p
	return &copy, nil
}

func newTestService(t *testing.T, remoteStore *fakeRemote) (*prefs.Service, *localstore.Store) {
	t.Helper()

	mr := miniredis.RunT(t)
	config := localstore.DefaultStoreConfig()
	config.Addr = mr.Addr()
	store := localstore.NewStore(config)

	return prefs.NewService(remoteStore, store, nil), store
}

func TestDarkMode_DefaultsToLight(t *testing.T) {
	service, _ := newTestService(t, newFakeRemote())

	if service.DarkMode(context.Background(), "user-1") {
		t.Error("Expected light mode when nothing is saved anywhere")
	}
}

func TestSetDarkMode_PersistsRemotelyAndCachesLocally(t *testing.T) {
	remoteStore := newFakeRemote()
	service, store := newTestService(t, remoteStore)

	if err := service.SetDarkMode(context.Background(), "user-1", true); err != nil {
		t.Fatalf("SetDarkMode failed: %v", err)
	}

	if !remoteStore.prefs["user-1"].DarkMode {
		t.Error("Expected dark mode saved in the remote document")
	}

	var cached bool
	if err := store.GetJSON(localstore.KeyDarkMode, &cached); err != nil {
		t.Fatalf("Expected cached dark mode flag: %v", err)
	}
	if !cached {
		t.Error("Expected cached dark mode flag to be true")
	}

	if !service.DarkMode(context.Background(), "user-1") {
		t.Error("Expected DarkMode to report true")
	}
}

func TestDarkMode_FallsBackToCacheWhenRemoteUnavailable(t *testing.T) {
	remoteStore := newFakeRemote()
	service, store := newTestService(t, remoteStore)

	if err := store.SetJSON(localstore.KeyDarkMode, true); err != nil {
		t.Fatalf("failed to seed cache: %v", err)
	}

	remoteStore.err = errors.New("backend unreachable")

	if !service.DarkMode(context.Background(), "user-1") {
		t.Error("Expected the cached value while the remote is unreachable")
	}
}

func TestDarkMode_RemoteWinsOverStaleCache(t *testing.T) {
	remoteStore := newFakeRemote()
	service, store := newTestService(t, remoteStore)

	if err := store.SetJSON(localstore.KeyDarkMode, true); err != nil {
		t.Fatalf("failed to seed cache: %v", err)
	}
	darkMode := false
	remoteStore.prefs["user-1"] = &models.Preferences{UserID: "user-1", DarkMode: darkMode}

	if service.DarkMode(context.Background(), "user-1") {
		t.Error("Expected the remote document to override the stale cache")
	}

	// The read refreshed the cache.
	var cached bool
	if err := store.GetJSON(localstore.KeyDarkMode, &cached); err != nil {
		t.Fatalf("Expected refreshed cache: %v", err)
	}
	if cached {
		t.Error("Expected cache refreshed to the remote value")
	}
}

func TestLanguage_DefaultsToEnglish(t *testing.T) {
	service, _ := newTestService(t, newFakeRemote())

	if got := service.Language(context.Background(), "user-1"); got != "en" {
		t.Errorf("Expected default language 'en', got '%s'", got)
	}
}

func TestSetLanguage_RoundTrips(t *testing.T) {
	service, _ := newTestService(t, newFakeRemote())

	if err := service.SetLanguage(context.Background(), "user-1", "fi"); err != nil {
		t.Fatalf("SetLanguage failed: %v", err)
	}

	if got := service.Language(context.Background(), "user-1"); got != "fi" {
		t.Errorf("Expected language 'fi', got '%s'", got)
	}
}
