// Package auth carries the caller's identity through a request. API clients
// authenticate with a bearer token, console users with a Redis-backed
// session cookie; both end up as the same Identity in the request context.
package auth

import (
	"context"
	"encoding/base32"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
)

const defaultSessionTTL = 12 * time.Hour

// SessionOptions configures NewSessionStore.
type SessionOptions struct {
	// AuthKey signs the cookie (32 or 64 bytes). EncryptionKey encrypts it
	// (16, 24 or 32 bytes).
	AuthKey       []byte
	EncryptionKey []byte
	// Secure restricts the cookie to HTTPS.
	Secure bool
	// TTL is the idle timeout. Every authenticated request extends it.
	// Zero means 12 hours.
	TTL time.Duration
	// KeyPrefix namespaces the Redis keys, e.g. "orderdesk:console_session:".
	KeyPrefix string
}

// RedisStore is a sessions.Store that keeps session values in Redis. The
// cookie only carries the signed and encrypted session id.
type RedisStore struct {
	client  redis.UniversalClient
	codecs  []securecookie.Codec
	prefix  string
	ttl     time.Duration
	options sessions.Options
}

// NewSessionStore returns a store on client. Cookies are HttpOnly and
// SameSite=Strict; the console never needs them cross-site.
func NewSessionStore(client redis.UniversalClient, opts SessionOptions) *RedisStore {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &RedisStore{
		client: client,
		codecs: securecookie.CodecsFromPairs(opts.AuthKey, opts.EncryptionKey),
		prefix: opts.KeyPrefix,
		ttl:    ttl,
		options: sessions.Options{
			Path:     "/",
			MaxAge:   int(ttl / time.Second),
			HttpOnly: true,
			Secure:   opts.Secure,
			SameSite: http.SameSiteStrictMode,
		},
	}
}

// Get implements sessions.Store.
func (s *RedisStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New implements sessions.Store. A missing, tampered or expired cookie yields
// a fresh session rather than an error.
func (s *RedisStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := s.options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}
	var id string
	if err := securecookie.DecodeMulti(name, c.Value, &id, s.codecs...); err != nil {
		return session, nil
	}
	values, err := s.load(r.Context(), id)
	if err != nil {
		return session, nil
	}
	session.ID = id
	session.Values = values
	session.IsNew = false
	return session, nil
}

// Save implements sessions.Store. A negative MaxAge deletes the session. A new
// session always gets a freshly generated id, so an id planted before login
// never becomes authenticated.
func (s *RedisStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.client.Del(r.Context(), s.key(session.ID)).Err(); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.IsNew || session.ID == "" {
		session.ID = newSessionID()
	}
	body, err := encodeValues(session.Values)
	if err != nil {
		return err
	}
	if err := s.client.Set(r.Context(), s.key(session.ID), body, s.ttl).Err(); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	cookie, err := securecookie.EncodeMulti(session.Name(), session.ID, s.codecs...)
	if err != nil {
		return fmt.Errorf("encode session cookie: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), cookie, session.Options))
	return nil
}

// load reads the session and slides its expiry.
func (s *RedisStore) load(ctx context.Context, id string) (map[any]any, error) {
	body, err := s.client.GetEx(ctx, s.key(id), s.ttl).Bytes()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return decodeValues(body)
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

var errSessionValueKey = errors.New("session value keys must be strings")

// Session values are stored as a JSON object, so keys must be strings and
// values must be JSON types.
func encodeValues(values map[any]any) ([]byte, error) {
	m := make(map[string]any, len(values))
	for k, v := range values {
		ks, ok := k.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %v", errSessionValueKey, k)
		}
		m[ks] = v
	}
	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode session values: %w", err)
	}
	return body, nil
}

func decodeValues(body []byte) (map[any]any, error) {
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("decode session values: %w", err)
	}
	values := make(map[any]any, len(m))
	for k, v := range m {
		values[k] = v
	}
	return values, nil
}

func newSessionID() string {
	return strings.TrimRight(base32.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)), "=")
}
