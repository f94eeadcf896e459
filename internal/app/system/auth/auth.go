// internal/app/system/auth/auth.go
package auth

// Terminology: User Identifiers
//   - UserID / userID / user_id: the account ObjectID (hex in the cookie)
//   - SessionID / session_id: the ObjectID of the server-side session record

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session constants                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	isAuthKey    = "is_authenticated"
	userIDKey    = "user_id"
	sessionIDKey = "session_id"
)

const (
	// LoginPath is where unauthenticated visitors are sent.
	LoginPath = "/login"
	// DeniedPath is where a signed-in user without the required role is sent.
	DeniedPath = "/activities"
	// DeniedMessage is the toast shown after a role redirect.
	DeniedMessage = "Bu sayfaya erişim yetkiniz yok"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is the signed-in user resolved once per request and carried
// in r.Context(). Role is always the stored profile role.
type SessionUser struct {
	ID        string
	SessionID string
	Name      string
	Email     string
	Role      string
}

// UserFetcher resolves the cookie's user and session ids to a SessionUser.
// It returns nil when the session is closed or expired, or the profile is
// missing.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID, sessionID string) *SessionUser
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// WithTestUser injects u into the request context. Tests use it to bypass
// the cookie.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| SessionManager                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager owns the session cookie and the middleware that turns it
// into a request-context user. The cookie is the only session transport.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	maxAge  time.Duration
	fetcher UserFetcher
	logger  *zap.Logger
}

// NewSessionManager builds a cookie store signed with sessionKey.
//
// In production (secure=true) cookies are Secure and SameSite=Lax. In local
// dev over http://localhost, use secure=false so cookies are accepted.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		return nil, fmt.Errorf("session cookie name is empty")
	}
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(int(maxAge.Seconds()))

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("max_age", maxAge))

	return &SessionManager{store: store, name: name, maxAge: maxAge, logger: logger}, nil
}

// SetUserFetcher installs the resolver used by LoadSessionUser.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) { sm.fetcher = f }

// MaxAge is the lifetime given to new sessions.
func (sm *SessionManager) MaxAge() time.Duration { return sm.maxAge }

// Store exposes the underlying cookie store.
func (sm *SessionManager) Store() sessions.Store { return sm.store }

// GetSession returns the session for r. A cookie that fails to decode
// (for example after a key rotation) yields a fresh session and a
// securecookie.Error.
func (sm *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return sm.store.Get(r, sm.name)
}

// SignIn records the user and server-side session ids in the cookie. Any
// flashes are queued in the same write so the response carries one cookie.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, userID, sessionID string, flashes ...Flash) error {
	sess, err := sm.GetSession(r)
	if err != nil && !isDecodeErr(err) {
		return err
	}
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = userID
	sess.Values[sessionIDKey] = sessionID
	sess.Options.MaxAge = int(sm.maxAge.Seconds())
	for _, f := range flashes {
		sess.AddFlash(f.encode())
	}
	return sess.Save(r, w)
}

// SignOut clears the auth values. Without flashes the cookie is expired;
// with flashes it is kept so the next page can show them.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request, flashes ...Flash) error {
	sess, _ := sm.GetSession(r)
	delete(sess.Values, isAuthKey)
	delete(sess.Values, userIDKey)
	delete(sess.Values, sessionIDKey)
	if len(flashes) == 0 {
		sess.Options.MaxAge = -1
	}
	for _, f := range flashes {
		sess.AddFlash(f.encode())
	}
	return sess.Save(r, w)
}

// IDs returns the user and session ids stored in the cookie, if any.
func (sm *SessionManager) IDs(r *http.Request) (userID, sessionID string, ok bool) {
	sess, err := sm.GetSession(r)
	if err != nil {
		return "", "", false
	}
	if isAuth, _ := sess.Values[isAuthKey].(bool); !isAuth {
		return "", "", false
	}
	userID = getString(sess, userIDKey)
	sessionID = getString(sess, sessionIDKey)
	return userID, sessionID, userID != "" && sessionID != ""
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// LoadSessionUser resolves the cookie to a user (and role) once per request
// and injects it into the context. Cookies pointing at a closed or expired
// session are cleared.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sm.fetcher == nil {
			next.ServeHTTP(w, r)
			return
		}

		userID, sessionID, ok := sm.IDs(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		u := sm.fetcher.FetchUser(r.Context(), userID, sessionID)
		if u == nil {
			sm.logger.Debug("stale session cookie cleared", zap.String("user_id", userID))
			_ = sm.SignOut(w, r)
			next.ServeHTTP(w, r)
			return
		}
		u.ID = userID
		u.SessionID = sessionID
		next.ServeHTTP(w, withUser(r, u))
	})
}

// RequireSignedIn ensures there is a user in context (set by LoadSessionUser).
// If not signed in:
//   - HTMX: sends HX-Redirect to /login?return=...
//   - HTML: 303 redirect to /login?return=...
//   - API:  401 Unauthorized with a plain error body.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		unauthorized(w, r)
	})
}

// RequireRole ensures the context user has one of the allowed roles. This is
// the single authorization boundary for role-restricted route groups.
// A signed-in user with another role is sent to DeniedPath with a toast
// (HTMX: HX-Redirect + 403, API: 403).
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				unauthorized(w, r)
				return
			}

			if _, has := set[strings.ToLower(u.Role)]; !has {
				sm.logger.Info("role denied",
					zap.String("user_id", u.ID),
					zap.String("role", u.Role),
					zap.String("path", r.URL.Path))

				if r.Header.Get("HX-Request") == "true" {
					sm.AddFlash(w, r, FlashError, DeniedMessage)
					w.Header().Set("HX-Redirect", DeniedPath)
					w.WriteHeader(http.StatusForbidden)
					return
				}
				if wantsHTML(r) {
					sm.AddFlash(w, r, FlashError, DeniedMessage)
					http.Redirect(w, r, DeniedPath, http.StatusSeeOther)
					return
				}
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RedirectIfSignedIn guards the public auth pages: a signed-in visitor is
// sent to dest instead.
func (sm *SessionManager) RedirectIfSignedIn(dest string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := CurrentUser(r); !ok {
				next.ServeHTTP(w, r)
				return
			}
			if r.Header.Get("HX-Request") == "true" {
				w.Header().Set("HX-Redirect", dest)
				w.WriteHeader(http.StatusOK)
				return
			}
			http.Redirect(w, r, dest, http.StatusSeeOther)
		})
	}
}

// helpers

func unauthorized(w http.ResponseWriter, r *http.Request) {
	loginURL := LoginPath + "?return=" + url.QueryEscape(currentURI(r))

	// HTMX: full-page client redirect (no partial swap)
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", loginURL)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	// Browser/HTML: go to login and preserve return
	if wantsHTML(r) {
		http.Redirect(w, r, loginURL, http.StatusSeeOther)
		return
	}

	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// getString safely extracts a string from a session value.
func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func isDecodeErr(err error) bool {
	scErr, ok := err.(securecookie.Error)
	return ok && scErr.IsDecode()
}

func wantsHTML(r *http.Request) bool {
	// Very light heuristic: treat it as HTML if it's HTMX or Accepts text/html.
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func currentURI(r *http.Request) string {
	// Preserve path + query as a return param.
	u := *r.URL
	return u.RequestURI()
}
