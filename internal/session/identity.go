package session

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/transx/internal/models"
	"github.com/desertthunder/transx/internal/shared"
)

const (
	DefaultCookieName = "user_id"
	DefaultMaxAge     = 365 * 24 * time.Hour
	tokenPrefix       = "user_"
)

// CookieSetter receives the identity cookie. [services.Client] implements it.
type CookieSetter interface {
	SetCookie(cookie *http.Cookie)
}

// IdentityManager reads or creates the identity cookie.
type IdentityManager struct {
	name   string
	maxAge time.Duration
	repo   models.IdentityRepository
	jar    CookieSetter
	now    func() time.Time
	logger *log.Logger
}

// IdentityOpts configures an [IdentityManager].
type IdentityOpts struct {
	Name   string
	MaxAge time.Duration
	Repo   models.IdentityRepository
	Jar    CookieSetter
	Now    func() time.Time
	Logger *log.Logger
}

// NewIdentityManager creates an [IdentityManager], filling in defaults.
func NewIdentityManager(opts IdentityOpts) *IdentityManager {
	if opts.Name == "" {
		opts.Name = DefaultCookieName
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultMaxAge
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	return &IdentityManager{
		name:   opts.Name,
		maxAge: opts.MaxAge,
		repo:   opts.Repo,
		jar:    opts.Jar,
		now:    opts.Now,
		logger: opts.Logger,
	}
}

// NewToken returns a time-based token. Two tokens generated in the same millisecond collide.
func NewToken(now time.Time) string {
	return tokenPrefix + strconv.FormatInt(now.UnixMilli(), 10)
}

// Ensure returns the current identity, creating and persisting a new one only when none exists or the stored one has expired.
//
// The identity is installed in the cookie jar either way.
func (m *IdentityManager) Ensure() (*models.Identity, error) {
	now := m.now()

	identity, err := m.repo.Get(m.name)
	switch {
	case err == nil && !identity.Expired(now):
		m.logger.Debug("identity found", "name", m.name)
	case err == nil || errors.Is(err, shared.ErrIdentityNotFound):
		identity = &models.Identity{
			Name:      m.name,
			Token:     NewToken(now),
			Path:      "/",
			CreatedAt: now.UTC(),
			ExpiresAt: now.Add(m.maxAge).UTC(),
		}
		if err := m.repo.Save(identity); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrIdentityStore, err)
		}
		m.logger.Info("identity created", "name", m.name, "expires", identity.ExpiresAt.Format(time.DateOnly))
	default:
		return nil, fmt.Errorf("%w: %v", shared.ErrIdentityStore, err)
	}

	if m.jar != nil {
		m.jar.SetCookie(Cookie(identity, now))
	}
	return identity, nil
}

// Cookie converts an identity into the cookie sent to the server.
func Cookie(identity *models.Identity, now time.Time) *http.Cookie {
	path := identity.Path
	if path == "" {
		path = "/"
	}
	return &http.Cookie{
		Name:    identity.Name,
		Value:   identity.Token,
		Path:    path,
		MaxAge:  identity.MaxAge(now),
		Expires: identity.ExpiresAt,
	}
}
