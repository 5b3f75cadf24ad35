package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/tahcohcat/healplay/internal/auth"
	"github.com/tahcohcat/healplay/internal/catalog"
	"github.com/tahcohcat/healplay/internal/coach"
	"github.com/tahcohcat/healplay/internal/game"
	"github.com/tahcohcat/healplay/internal/logger"
	"github.com/tahcohcat/healplay/internal/models"
	"github.com/tahcohcat/healplay/internal/services"
)

type GameHandler struct {
	catalog  *catalog.Catalog
	progress *services.ProgressService
	coach    *coach.Coach
	sessions *sessionStore
	logger   *logger.Log
}

func NewGameHandler(c *catalog.Catalog, progress *services.ProgressService, co *coach.Coach, ttl time.Duration) *GameHandler {
	return &GameHandler{
		catalog:  c,
		progress: progress,
		coach:    co,
		sessions: newSessionStore(ttl),
		logger:   logger.New(),
	}
}

// Run evicts idle sessions until ctx is cancelled.
func (gh *GameHandler) Run(ctx context.Context) {
	gh.sessions.janitor(ctx)
}

// unlocked reports whether id is playable given the cleared set.
func (gh *GameHandler) unlocked(id string, cleared map[string]bool) bool {
	prev, ok := gh.catalog.Previous(id)
	return !ok || cleared[prev]
}

// GET /api/parent/games
func (gh *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	parentID := auth.ParentID(r)

	cleared, err := gh.progress.Cleared(r.Context(), parentID)
	if err != nil {
		fail(w, err, "Failed to load progress")
		return
	}
	best, err := gh.progress.BestScores(r.Context(), parentID)
	if err != nil {
		fail(w, err, "Failed to load progress")
		return
	}

	games := []models.GameSummary{}
	for _, g := range gh.catalog.List() {
		summary := models.GameSummary{
			ID:          g.ID,
			Title:       g.Title,
			Description: g.Description,
			Scoring:     string(g.Scoring.Kind),
			TotalLevels: gh.catalog.Levels(g),
			Badge:       g.Badge,
			Unlocked:    gh.unlocked(g.ID, cleared),
			Completed:   cleared[g.ID],
		}
		if score, ok := best[g.ID]; ok {
			summary.BestScore = &score
		}
		games = append(games, summary)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"games": games})
}

// GET /api/parent/progress
func (gh *GameHandler) Progress(w http.ResponseWriter, r *http.Request) {
	parentID := auth.ParentID(r)
	results, err := gh.progress.Results(r.Context(), parentID)
	if err != nil {
		fail(w, err, "Failed to load progress")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"parent_id": parentID,
		"results":   results,
	})
}

// POST /api/parent/games/{game}/sessions
func (gh *GameHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	parentID := auth.ParentID(r)

	g, err := gh.catalog.Get(mux.Vars(r)["game"])
	if err != nil {
		if nf, ok := err.(*catalog.NotFoundError); ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": nf.Error(), "suggestion": nf.Suggestion})
			return
		}
		fail(w, err, "Failed to load game")
		return
	}

	cleared, err := gh.progress.Cleared(r.Context(), parentID)
	if err != nil {
		fail(w, err, "Failed to load progress")
		return
	}
	if !gh.unlocked(g.ID, cleared) {
		writeError(w, http.StatusForbidden, "Game is locked")
		return
	}

	session, err := gh.catalog.NewSession(g.ID, game.WithID(uuid.NewString()))
	if err != nil {
		fail(w, err, "Failed to create session")
		return
	}
	gh.sessions.put(session.ID, &playSession{parentID: parentID, session: session})

	gh.logger.Game(g.ID, fmt.Sprintf("session %s started for parent %s", session.ID, parentID))
	writeJSON(w, http.StatusCreated, session.View())
}

// lookup resolves {session} for the calling parent, writing the error
// response itself when it fails.
func (gh *GameHandler) lookup(w http.ResponseWriter, r *http.Request) (*playSession, bool) {
	ps, ok := gh.sessions.get(mux.Vars(r)["session"])
	if !ok {
		writeError(w, http.StatusNotFound, "Game session not found")
		return nil, false
	}
	if ps.parentID != auth.ParentID(r) {
		writeError(w, http.StatusForbidden, "Access denied")
		return nil, false
	}
	return ps, true
}

// record saves the result of a completed session once. A failed save is
// retried by the next call.
func (gh *GameHandler) record(ctx context.Context, ps *playSession) (*models.GameResult, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.result != nil {
		return ps.result, nil
	}

	session := ps.session
	g := session.Game()
	result := session.Result()
	rec, err := gh.progress.RecordResult(ctx, ps.parentID, g.ID, session.ID, result)
	if err != nil {
		return nil, err
	}
	ps.result = rec
	gh.logger.Game(g.ID, fmt.Sprintf("session %s complete: %d/%d (%s)", session.ID, result.Score, result.MaxScore, result.Level))
	return rec, nil
}

// completeResponse records a completed session and builds the reply.
func (gh *GameHandler) completeResponse(w http.ResponseWriter, r *http.Request, ps *playSession) (nextResponse, bool) {
	resp := nextResponse{SessionView: ps.session.View()}
	rec, err := gh.record(r.Context(), ps)
	if err != nil {
		fail(w, err, "Failed to save result")
		return resp, false
	}
	if rec.Cleared() {
		resp.Badge = ps.session.Game().Badge
	}
	return resp, true
}

// GET /api/parent/sessions/{session}
func (gh *GameHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	ps, ok := gh.lookup(w, r)
	if !ok {
		return
	}
	if ps.session.State() == game.StateComplete {
		resp, ok := gh.completeResponse(w, r, ps)
		if ok {
			writeJSON(w, http.StatusOK, resp)
		}
		return
	}
	writeJSON(w, http.StatusOK, ps.session.View())
}

// POST /api/parent/sessions/{session}/start
func (gh *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	ps, ok := gh.lookup(w, r)
	if !ok {
		return
	}
	session := ps.session
	if err := session.Start(); err != nil {
		fail(w, err, "Failed to start session")
		return
	}
	writeJSON(w, http.StatusOK, session.View())
}

type selectRequest struct {
	RoundID  string `json:"round_id"`
	ChoiceID string `json:"choice_id"`
}

// POST /api/parent/sessions/{session}/select
func (gh *GameHandler) Select(w http.ResponseWriter, r *http.Request) {
	ps, ok := gh.lookup(w, r)
	if !ok {
		return
	}
	session := ps.session
	var req selectRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := session.Select(req.RoundID, req.ChoiceID); err != nil {
		fail(w, err, "Failed to record answer")
		return
	}
	writeJSON(w, http.StatusOK, session.View())
}

type reflectRequest struct {
	RoundID string `json:"round_id"`
	Text    string `json:"text"`
}

// POST /api/parent/sessions/{session}/reflect
func (gh *GameHandler) Reflect(w http.ResponseWriter, r *http.Request) {
	ps, ok := gh.lookup(w, r)
	if !ok {
		return
	}
	session := ps.session
	var req reflectRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := session.Reflect(req.RoundID, req.Text); err != nil {
		fail(w, err, "Failed to record reflection")
		return
	}

	g := session.Game()
	for _, round := range g.Rounds {
		if round.ID != req.RoundID {
			continue
		}
		fb := gh.coach.Feedback(r.Context(), g.Title, round.Prompt, req.Text, round.Explanation)
		if fb != round.Explanation {
			session.SetFeedback(round.ID, fb)
		}
		break
	}

	writeJSON(w, http.StatusOK, session.View())
}

type placeRequest struct {
	ItemID string `json:"item_id"`
	Bin    string `json:"bin"`
}

// POST /api/parent/sessions/{session}/place
func (gh *GameHandler) Place(w http.ResponseWriter, r *http.Request) {
	ps, ok := gh.lookup(w, r)
	if !ok {
		return
	}
	session := ps.session
	var req placeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := session.Place(req.ItemID, req.Bin); err != nil {
		fail(w, err, "Failed to place item")
		return
	}
	writeJSON(w, http.StatusOK, session.View())
}

// POST /api/parent/sessions/{session}/remove
func (gh *GameHandler) Remove(w http.ResponseWriter, r *http.Request) {
	ps, ok := gh.lookup(w, r)
	if !ok {
		return
	}
	session := ps.session
	var req placeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := session.Remove(req.ItemID); err != nil {
		fail(w, err, "Failed to remove item")
		return
	}
	writeJSON(w, http.StatusOK, session.View())
}

type nextResponse struct {
	game.SessionView
	Badge string `json:"badge,omitempty"`
}

// POST /api/parent/sessions/{session}/next
func (gh *GameHandler) Next(w http.ResponseWriter, r *http.Request) {
	ps, ok := gh.lookup(w, r)
	if !ok {
		return
	}

	// a completed session whose result was not saved yet is finished here
	if ps.session.State() != game.StateComplete || ps.recorded() {
		done, err := ps.session.Next()
		if err != nil {
			fail(w, err, "Failed to advance session")
			return
		}
		if !done {
			writeJSON(w, http.StatusOK, nextResponse{SessionView: ps.session.View()})
			return
		}
	}

	resp, ok := gh.completeResponse(w, r, ps)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (gh *GameHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/games", gh.ListGames).Methods("GET")
	r.HandleFunc("/progress", gh.Progress).Methods("GET")
	r.HandleFunc("/games/{game}/sessions", gh.CreateSession).Methods("POST")
	r.HandleFunc("/sessions/{session}", gh.GetSession).Methods("GET")
	r.HandleFunc("/sessions/{session}/start", gh.Start).Methods("POST")
	r.HandleFunc("/sessions/{session}/select", gh.Select).Methods("POST")
	r.HandleFunc("/sessions/{session}/reflect", gh.Reflect).Methods("POST")
	r.HandleFunc("/sessions/{session}/place", gh.Place).Methods("POST")
	r.HandleFunc("/sessions/{session}/remove", gh.Remove).Methods("POST")
	r.HandleFunc("/sessions/{session}/next", gh.Next).Methods("POST")
}
