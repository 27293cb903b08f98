package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/net/publicsuffix"

	"github.com/desertthunder/hmx/internal/shared"
)

// DefaultCookieKey is the storage key of the persisted jar.
const DefaultCookieKey = "cookies"

// storedCookie is the persisted form of one cookie and the URL it was set for.
type storedCookie struct {
	URL      string    `json:"url"`
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Domain   string    `json:"domain,omitempty"`
	Expires  time.Time `json:"expires,omitzero"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"httpOnly,omitempty"`
}

func (c storedCookie) id() string {
	return c.URL + "|" + c.Domain + "|" + c.Path + "|" + c.Name
}

func (c storedCookie) expired(now time.Time) bool {
	return !c.Expires.IsZero() && !c.Expires.After(now)
}

func (c storedCookie) cookie() *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Domain:   c.Domain,
		Expires:  c.Expires,
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
	}
}

// PersistentJar is an [http.CookieJar] that mirrors every cookie it accepts into a [Storage] entry.
//
// Domain matching is delegated to [cookiejar.Jar] with the public suffix list.
type PersistentJar struct {
	writeMu sync.Mutex // serializes mutation with its persist
	mu      sync.Mutex
	jar     *cookiejar.Jar
	storage Storage
	key     string
	logger  *log.Logger
	entries map[string]storedCookie
	now     func() time.Time
}

// NewPersistentJar creates an empty jar backed by storage. Call [PersistentJar.Load] to restore saved cookies.
func NewPersistentJar(storage Storage, key string, logger *log.Logger) (*PersistentJar, error) {
	if key == "" {
		key = DefaultCookieKey
	}
	if logger == nil {
		logger = shared.DiscardLogger()
	}

	jar, err := newJar()
	if err != nil {
		return nil, err
	}

	return &PersistentJar{
		jar:     jar,
		storage: storage,
		key:     key,
		logger:  logger,
		entries: make(map[string]storedCookie),
		now:     time.Now,
	}, nil
}

func newJar() (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return jar, nil
}

// Load replaces the jar's contents with the persisted cookies, skipping expired ones.
func (p *PersistentJar) Load(ctx context.Context) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	raw, err := p.storage.Get(ctx, p.key)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read cookies: %w", err)
	}

	var stored []storedCookie
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		p.logger.Warn("discarding malformed cookie store", "key", p.key, "error", err)
		return nil
	}

	jar, err := newJar()
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	p.jar = jar
	p.entries = make(map[string]storedCookie, len(stored))
	for _, c := range stored {
		if c.expired(now) {
			continue
		}
		u, err := url.Parse(c.URL)
		if err != nil {
			continue
		}
		p.jar.SetCookies(u, []*http.Cookie{c.cookie()})
		p.entries[c.id()] = c
	}
	p.logger.Debug("cookies restored", "count", len(p.entries))
	return nil
}

// SetCookies implements [http.CookieJar]. Changes are persisted immediately; persistence errors are logged.
func (p *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	normalized := make([]*http.Cookie, len(cookies))
	for i, c := range cookies {
		cp := *c
		if cp.Path == "" {
			cp.Path = "/"
		}
		normalized[i] = &cp
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	p.mu.Lock()
	p.jar.SetCookies(u, normalized)

	origin := (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}).String()
	now := p.now()
	for _, c := range normalized {
		entry := storedCookie{
			URL:      origin,
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		}
		switch {
		case c.MaxAge < 0:
			entry.Expires = now
		case c.MaxAge > 0:
			entry.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}

		if entry.expired(now) {
			delete(p.entries, entry.id())
			continue
		}
		p.entries[entry.id()] = entry
	}
	data, err := p.marshal()
	p.mu.Unlock()

	if err == nil {
		err = p.storage.Put(context.Background(), p.key, data)
	}
	if err != nil {
		p.logger.Warn("failed to persist cookies", "error", err)
	}
}

// Cookies implements [http.CookieJar].
func (p *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.jar.Cookies(u)
}

// Import stores cookies captured outside the client (for example from a browser) for origin.
func (p *PersistentJar) Import(origin *url.URL, cookies []*http.Cookie) {
	p.SetCookies(origin, cookies)
	p.logger.Info("cookies imported", "origin", origin.Host, "count", len(cookies))
}

// Len returns the number of live cookies tracked by the jar.
func (p *PersistentJar) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	n := 0
	for _, c := range p.entries {
		if !c.expired(now) {
			n++
		}
	}
	return n
}

// Clear drops every cookie and removes the persisted entry.
func (p *PersistentJar) Clear(ctx context.Context) error {
	jar, err := newJar()
	if err != nil {
		return err
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	p.mu.Lock()
	p.jar = jar
	p.entries = make(map[string]storedCookie)
	p.mu.Unlock()

	if err := p.storage.Delete(ctx, p.key); err != nil && !errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("failed to remove cookies: %w", err)
	}
	return nil
}

// marshal encodes the live entries; callers hold p.mu.
func (p *PersistentJar) marshal() (string, error) {
	stored := make([]storedCookie, 0, len(p.entries))
	for _, c := range p.entries {
		stored = append(stored, c)
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("failed to encode cookies: %w", err)
	}
	return string(data), nil
}
