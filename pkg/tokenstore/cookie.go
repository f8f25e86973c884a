package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// CookieMaxAge is how long a token cookie is kept.
const CookieMaxAge = 30 * 24 * time.Hour

// ErrCookieJarRequired is returned when a CookieStore has no jar.
var ErrCookieJarRequired = errors.New("cookie jar required")

// CookieOptions tune the token cookie.
type CookieOptions struct {
	Secure bool
	Path   string
}

func (o CookieOptions) path() string {
	if o.Path == "" {
		return "/"
	}

	return o.Path
}

func encodeCookieValue(token *Token) (string, error) {
	data, err := Encode(token)
	if err != nil {
		return "", err
	}

	return url.QueryEscape(string(data)), nil
}

func decodeCookieValue(value string) (*Token, error) {
	raw, err := url.QueryUnescape(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptToken, err)
	}

	return Decode([]byte(raw))
}

// CookieStore keeps the token as a cookie in a client-side jar scoped to
// the API URL.
type CookieStore struct {
	jar     http.CookieJar
	url     *url.URL
	name    string
	options CookieOptions
}

// NewCookieStore binds a store to jar for apiURL.
func NewCookieStore(jar http.CookieJar, apiURL, clientID string, options CookieOptions) (*CookieStore, error) {
	if jar == nil {
		return nil, ErrCookieJarRequired
	}

	u, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cookie URL: %w", err)
	}

	return &CookieStore{
		jar:     jar,
		url:     u,
		name:    CookieName(clientID),
		options: options,
	}, nil
}

// GetToken reads the token cookie. A corrupt cookie is expired and nil is
// returned.
func (s *CookieStore) GetToken(ctx context.Context) (*Token, error) {
	for _, cookie := range s.jar.Cookies(s.url) {
		if cookie.Name != s.name {
			continue
		}

		token, err := decodeCookieValue(cookie.Value)
		if err != nil {
			return nil, s.RemoveToken(ctx)
		}

		return token, nil
	}

	return nil, nil
}

// SetToken writes the token cookie.
func (s *CookieStore) SetToken(_ context.Context, token *Token) error {
	value, err := encodeCookieValue(token)
	if err != nil {
		return err
	}

	s.jar.SetCookies(s.url, []*http.Cookie{{
		Name:    s.name,
		Value:   value,
		Path:    s.options.path(),
		Expires: time.Now().Add(CookieMaxAge),
		Secure:  s.options.Secure,
	}})

	return nil
}

// RemoveToken expires the token cookie.
func (s *CookieStore) RemoveToken(_ context.Context) error {
	s.jar.SetCookies(s.url, []*http.Cookie{{
		Name:   s.name,
		Value:  "",
		Path:   s.options.path(),
		MaxAge: -1,
	}})

	return nil
}

// ServerCookieStore keeps the token in the cookie of one incoming HTTP
// request, answering through its ResponseWriter. Create one per request.
type ServerCookieStore struct {
	mu      sync.Mutex
	req     *http.Request
	w       http.ResponseWriter
	name    string
	options CookieOptions

	// written is set once the store has answered with a Set-Cookie; current
	// then shadows the request cookie.
	written bool
	current *Token
}

// NewServerCookieStore binds a store to a request/response pair.
func NewServerCookieStore(w http.ResponseWriter, req *http.Request, clientID string, options CookieOptions) *ServerCookieStore {
	return &ServerCookieStore{
		req:     req,
		w:       w,
		name:    CookieName(clientID),
		options: options,
	}
}

// GetToken returns the latest token written during this request, or the
// token carried by the request cookie.
func (s *ServerCookieStore) GetToken(_ context.Context) (*Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.written {
		return s.current.Clone(), nil
	}

	cookie, err := s.req.Cookie(s.name)
	if err != nil {
		return nil, nil //nolint:nilerr // a missing cookie is an empty store
	}

	token, err := decodeCookieValue(cookie.Value)
	if err != nil {
		s.expire()

		return nil, nil
	}

	return token, nil
}

// SetToken answers with a Set-Cookie carrying the token.
func (s *ServerCookieStore) SetToken(_ context.Context, token *Token) error {
	value, err := encodeCookieValue(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	http.SetCookie(s.w, &http.Cookie{
		Name:     s.name,
		Value:    value,
		Path:     s.options.path(),
		Expires:  time.Now().Add(CookieMaxAge),
		Secure:   s.options.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	s.written = true
	s.current = token.Clone()

	return nil
}

// RemoveToken answers with an expired cookie.
func (s *ServerCookieStore) RemoveToken(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expire()

	return nil
}

func (s *ServerCookieStore) expire() {
	http.SetCookie(s.w, &http.Cookie{
		Name:   s.name,
		Value:  "",
		Path:   s.options.path(),
		MaxAge: -1,
	})

	s.written = true
	s.current = nil
}
