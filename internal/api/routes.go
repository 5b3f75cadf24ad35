package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tahcohcat/healplay/internal/auth"
)

// Server groups the HTTP handlers of the parent and admin surfaces.
type Server struct {
	Auth    *auth.Auth
	Games   *GameHandler
	Goodies *GoodieHandler
	Badges  *BadgeHandler
	Speech  *SpeechHandler
	// Events serves the admin push stream at /ws/admin when set.
	Events http.Handler
}

// Router mounts every route:
//
//	/api/parent/...  parent identity via session cookie
//	/api/admin/...   admin session required (except login)
//	/ws/admin        admin push events
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	parent := r.PathPrefix("/api/parent").Subrouter()
	parent.Use(s.Auth.ParentMiddleware)
	s.Games.RegisterRoutes(parent)
	s.Goodies.RegisterParentRoutes(parent)
	s.Badges.RegisterRoutes(parent)
	s.Speech.RegisterRoutes(parent)

	r.HandleFunc("/api/admin/login", s.Auth.LoginHandler).Methods("POST")
	r.HandleFunc("/api/admin/logout", s.Auth.LogoutHandler).Methods("POST")

	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(s.Auth.AdminMiddleware)
	s.Goodies.RegisterAdminRoutes(admin)

	if s.Events != nil {
		r.Handle("/ws/admin", s.Auth.AdminMiddleware(s.Events)).Methods("GET")
	}

	return r
}
