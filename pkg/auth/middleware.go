package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/ghuser/orderdesk/pkg/httpx"
	"github.com/ghuser/orderdesk/pkg/logger"
)

// SessionName is the console session cookie.
const SessionName = "orderdesk_console"

const (
	sessionAccountIDKey = "account_id"
	sessionCompanyIDKey = "company_id"
	sessionRoleKey      = "role"
	sessionSuperuserKey = "superuser"
)

var errSessionIncomplete = errors.New("session missing identity")

// RequireToken is a chi middleware for the token API. It reads the Bearer
// token, validates it and injects the Identity into the request context.
func RequireToken(tokens *TokenIssuer, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			id, err := tokens.Parse(raw)
			if err != nil {
				log.WarnContext(r.Context(), "rejected api token", "error", err)
				httpx.JSONError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), id)))
		})
	}
}

// withCaller stores id and tags the request's log records with it.
func withCaller(ctx context.Context, id Identity) context.Context {
	ctx = logger.ContextWith(ctx, "account_id", id.AccountID, "company_id", id.CompanyID, "role", string(id.Role))
	return WithIdentity(ctx, id)
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	raw, found := strings.CutPrefix(h, "Bearer ")
	if !found || strings.TrimSpace(raw) == "" {
		return "", false
	}
	return strings.TrimSpace(raw), true
}

// RequireSession is a chi middleware for the console. It reads the session
// cookie and injects the Identity stored at login into the request context.
// Returns 401 Unauthorized if the session is missing, invalid, or incomplete.
func RequireSession(store sessions.Store, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := store.Get(r, SessionName)
			if err != nil {
				log.WarnContext(r.Context(), "invalid session cookie", "error", err)
				httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			id, err := identityFromSession(session)
			if err != nil {
				log.WarnContext(r.Context(), "unusable console session", "error", err)
				httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), id)))
		})
	}
}

// StartSession stores id in a fresh console session and writes the cookie.
func StartSession(w http.ResponseWriter, r *http.Request, store sessions.Store, id Identity) error {
	session, err := store.Get(r, SessionName)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	session.Values[sessionAccountIDKey] = id.AccountID.String()
	session.Values[sessionCompanyIDKey] = id.CompanyID.String()
	session.Values[sessionRoleKey] = string(id.Role)
	session.Values[sessionSuperuserKey] = id.Superuser
	return session.Save(r, w)
}

// EndSession expires the console session.
func EndSession(w http.ResponseWriter, r *http.Request, store sessions.Store) error {
	session, err := store.Get(r, SessionName)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

func identityFromSession(s *sessions.Session) (Identity, error) {
	accountStr, _ := s.Values[sessionAccountIDKey].(string)
	companyStr, _ := s.Values[sessionCompanyIDKey].(string)
	roleStr, _ := s.Values[sessionRoleKey].(string)
	superuser, _ := s.Values[sessionSuperuserKey].(bool)
	if accountStr == "" || companyStr == "" || roleStr == "" {
		return Identity{}, errSessionIncomplete
	}

	accountID, err := uuid.Parse(accountStr)
	if err != nil {
		return Identity{}, fmt.Errorf("account_id: %w", err)
	}
	companyID, err := uuid.Parse(companyStr)
	if err != nil {
		return Identity{}, fmt.Errorf("company_id: %w", err)
	}
	role, err := ParseRole(roleStr)
	if err != nil {
		return Identity{}, err
	}
	return Identity{AccountID: accountID, CompanyID: companyID, Role: role, Superuser: superuser}, nil
}
