package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"

	"github.com/tahcohcat/healplay/config"
	"github.com/tahcohcat/healplay/internal/logger"
)

const (
	sessionName      = "healplay-session"
	keyParentID      = "parent_id"
	keyAuthenticated = "admin_authenticated"
)

type ctxKey int

const parentKey ctxKey = iota

// Auth holds the cookie store shared by the parent and admin surfaces.
type Auth struct {
	store     *sessions.CookieStore
	adminHash []byte
	logger    *logger.Log
}

func New(cfg config.AuthConfig) *Auth {
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	a := &Auth{store: store, logger: logger.New()}
	if cfg.AdminPasswordHash != "" {
		a.adminHash = []byte(cfg.AdminPasswordHash)
	} else {
		a.logger.Warn("auth.admin_password_hash is empty, admin routes are open")
	}
	return a
}

// HashPassword is used by operators to produce auth.admin_password_hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// ParentMiddleware gives every browser a stable parent id kept in its
// session cookie.
func (a *Auth) ParentMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// a cookie signed with an old secret fails to decode; start afresh
		session, _ := a.store.Get(r, sessionName)

		parentID, _ := session.Values[keyParentID].(string)
		if parentID == "" {
			parentID = uuid.NewString()
			session.Values[keyParentID] = parentID
			if err := session.Save(r, w); err != nil {
				a.logger.WithError(err).Error("Failed to save parent session")
				writeError(w, http.StatusInternalServerError, "Failed to start session")
				return
			}
		}

		next.ServeHTTP(w, r.WithContext(WithParentID(r.Context(), parentID)))
	})
}

// WithParentID stores the parent id on ctx.
func WithParentID(ctx context.Context, parentID string) context.Context {
	return context.WithValue(ctx, parentKey, parentID)
}

// ParentID returns the id set by ParentMiddleware, or "".
func ParentID(r *http.Request) string {
	id, _ := r.Context().Value(parentKey).(string)
	return id
}

// LoginHandler handles POST /api/admin/login with {"password": "..."}.
func (a *Auth) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if a.adminHash != nil {
		if err := bcrypt.CompareHashAndPassword(a.adminHash, []byte(req.Password)); err != nil {
			a.logger.Warn("Admin login rejected")
			writeError(w, http.StatusUnauthorized, "Invalid password")
			return
		}
	}

	session, _ := a.store.Get(r, sessionName)
	session.Values[keyAuthenticated] = true
	if err := session.Save(r, w); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save session")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

func (a *Auth) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	session, _ := a.store.Get(r, sessionName)
	delete(session.Values, keyAuthenticated)
	session.Save(r, w)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

// AdminMiddleware rejects requests without an admin session.
func (a *Auth) AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.adminHash == nil {
			next.ServeHTTP(w, r)
			return
		}

		session, _ := a.store.Get(r, sessionName)
		if ok, _ := session.Values[keyAuthenticated].(bool); !ok {
			writeError(w, http.StatusUnauthorized, "Admin login required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
