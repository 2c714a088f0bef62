// Package session owns the signed-in principal and the remote accessor bound
// to it. The accessor is chosen exactly once per sign-in: backend-backed for
// real and anonymous accounts, fixture-backed for offline guests.
package session

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskify/app/internal/auth"
	"taskify/app/internal/localstore"
	"taskify/app/internal/models"
	"taskify/app/internal/remote"
)

var ErrNotSignedIn = errors.New("no active session")

// Session is the live sign-in state. Guest sessions carry no tokens; nothing
// they do reaches the backend.
type Session struct {
	User         *models.User
	Accessor     remote.Accessor
	AccessToken  string
	RefreshToken string
}

func (s *Session) IsGuest() bool {
	return s.User != nil && s.User.IsGuest()
}

// guestMarker is what survives a restart for an offline guest. It is cached
// best-effort; losing it only costs the guest their fixture session.
type guestMarker struct {
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Manager struct {
	db      *gorm.DB
	auth    auth.Service
	store   *localstore.Store
	backend remote.Accessor
	log     *zap.Logger

	mu      sync.Mutex
	current *Session
}

func NewManager(db *gorm.DB, authService auth.Service, store *localstore.Store, backend remote.Accessor, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}

	return &Manager{
		db:      db,
		auth:    authService,
		store:   store,
		backend: backend,
		log:     log,
	}
}

func (m *Manager) SignIn(email, password string) (*Session, error) {
	user, err := m.auth.Login(m.db, email, password)
	if err != nil {
		return nil, err
	}

	return m.establish(user)
}

func (m *Manager) SignUp(email, password string) (*Session, error) {
	user, err := m.auth.Register(m.db, email, password)
	if err != nil {
		return nil, err
	}

	return m.establish(user)
}

// SignInAnonymously signs in without credentials. When the backend refuses
// anonymous sign-in the auth service hands back an offline guest, and the
// session binds to the fixture accessor instead of the backend.
func (m *Manager) SignInAnonymously() (*Session, error) {
	user, err := m.auth.LoginAnonymously(m.db)
	if err != nil {
		return nil, err
	}

	return m.establish(user)
}

// RestoreGuestSession revives the cached offline-guest session, if one was
// saved. Returns ErrNotSignedIn when no marker exists.
func (m *Manager) RestoreGuestSession() (*Session, error) {
	var marker guestMarker
	if err := m.store.GetJSON(localstore.KeyGuestSession, &marker); err != nil {
		if errors.Is(err, localstore.ErrNotFound) {
			return nil, ErrNotSignedIn
		}
		return nil, err
	}

	return m.establish(&models.User{
		ID:           marker.UserID,
		Anonymous:    true,
		OfflineGuest: true,
		CreatedAt:    marker.CreatedAt,
	})
}

func (m *Manager) establish(user *models.User) (*Session, error) {
	session := &Session{User: user}

	if user.IsGuest() {
		session.Accessor = remote.NewGuestAccessor(user.ID, m.log)

		marker := guestMarker{UserID: user.ID, CreatedAt: user.CreatedAt}
		if err := m.store.SetJSON(localstore.KeyGuestSession, marker); err != nil {
			m.log.Warn("failed to cache guest session marker", zap.Error(err))
		}
	} else {
		access, refresh, err := m.auth.GenerateToken(m.db, user.ID)
		if err != nil {
			return nil, err
		}
		session.AccessToken = access
		session.RefreshToken = refresh
		session.Accessor = m.backend
	}

	m.mu.Lock()
	m.current = session
	m.mu.Unlock()

	return session, nil
}

// Current returns the active session, or ErrNotSignedIn.
func (m *Manager) Current() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil, ErrNotSignedIn
	}
	return m.current, nil
}

func (m *Manager) SignOut() error {
	m.mu.Lock()
	session := m.current
	m.current = nil
	m.mu.Unlock()

	if session == nil {
		return nil
	}

	if session.IsGuest() {
		if err := m.store.Delete(localstore.KeyGuestSession); err != nil {
			m.log.Warn("failed to clear guest session marker", zap.Error(err))
		}
		return nil
	}

	if session.RefreshToken != "" {
		if err := m.db.Where("refresh_token = ?", session.RefreshToken).Delete(&models.Token{}).Error; err != nil {
			m.log.Warn("failed to revoke refresh token", zap.Error(err))
		}
	}

	return nil
}

// Refresh rotates the current session's tokens. Guest sessions have none and
// refresh is a no-op for them.
func (m *Manager) Refresh() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return ErrNotSignedIn
	}
	if m.current.IsGuest() {
		return nil
	}

	access, refresh, _, err := m.auth.RefreshToken(m.db, m.current.RefreshToken)
	if err != nil {
		return err
	}

	m.current.AccessToken = access
	m.current.RefreshToken = refresh
	return nil
}
