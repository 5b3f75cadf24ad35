package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/tahcohcat/healplay/config"
	"github.com/tahcohcat/healplay/internal/auth"
	"github.com/tahcohcat/healplay/internal/catalog"
	"github.com/tahcohcat/healplay/internal/coach"
	"github.com/tahcohcat/healplay/internal/database"
	"github.com/tahcohcat/healplay/internal/game"
	"github.com/tahcohcat/healplay/internal/models"
	"github.com/tahcohcat/healplay/internal/services"
	"github.com/tahcohcat/healplay/internal/tts"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(event string, _ any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

type fakeLLM struct{ reply string }

func (f fakeLLM) Generate(context.Context, string, string) (string, error) { return f.reply, nil }
func (f fakeLLM) IsModelAvailable(context.Context) error { return nil }

type fakeSynth struct{}

func (fakeSynth) Synthesize(_ context.Context, text, _ string) ([]byte, error) {
	return []byte("ID3" + text), nil
}
func (fakeSynth) Name() string { return "fake" }

type fixture struct {
	srv      *httptest.Server
	db       *database.DB
	progress *services.ProgressService
	events   *recordingPublisher
}

func newFixture(t *testing.T, synth tts.Synthesizer) *fixture {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cat, err := catalog.New(config.GamesConfig{DefaultTotalLevels: 5, ShuffleSeed: 7})
	if err != nil {
		t.Fatal(err)
	}

	events := &recordingPublisher{}
	progress := services.NewProgressService(db)
	badges := services.NewBadgeService(db)
	if err := badges.SeedFromGames(context.Background(), cat.List()); err != nil {
		t.Fatal(err)
	}

	s := &Server{
		Auth:    auth.New(config.AuthConfig{SessionSecret: "test"}),
		Games:   NewGameHandler(cat, progress, coach.New(fakeLLM{reply: `{"feedback":"What a lovely moment."}`}, 0), 0),
		Goodies: NewGoodieHandler(services.NewGoodieService(db, events)),
		Badges:  NewBadgeHandler(badges),
		Speech:  NewSpeechHandler(synth),
	}
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, db: db, progress: progress, events: events}
}

// newParent returns a client with its own cookie jar, so its own parent id.
func newParent(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{Jar: jar}
}

func (f *fixture) do(t *testing.T, c *http.Client, method, path string, body interface{}, out interface{}) int {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (f *fixture) parentID(t *testing.T, c *http.Client) string {
	t.Helper()
	var out struct {
		ParentID string `json:"parent_id"`
	}
	if code := f.do(t, c, "GET", "/api/parent/progress", nil, &out); code != http.StatusOK || out.ParentID == "" {
		t.Fatalf("progress = %d %+v", code, out)
	}
	return out.ParentID
}

// unlockThrough marks every game before id as cleared for the parent.
func (f *fixture) unlockThrough(t *testing.T, parentID, id string) {
	t.Helper()
	for _, g := range catalog.Builtin() {
		if g.ID == id {
			return
		}
		if _, err := f.progress.RecordResult(context.Background(), parentID, g.ID, "seed-"+parentID+"-"+g.ID, game.Result{}); err != nil {
			t.Fatal(err)
		}
	}
	t.Fatalf("unknown game %s", id)
}

func builtinGame(t *testing.T, id string) game.Game {
	t.Helper()
	for _, g := range catalog.Builtin() {
		if g.ID == id {
			return g
		}
	}
	t.Fatalf("unknown game %s", id)
	return game.Game{}
}

func correctChoice(g game.Game, roundID string) string {
	for _, r := range g.Rounds {
		if r.ID != roundID {
			continue
		}
		for _, c := range r.Options {
			if c.Correct {
				return c.ID
			}
		}
	}
	return ""
}

type nextView struct {
	game.SessionView
	Badge string `json:"badge"`
}

func TestGamesUnlockChain(t *testing.T) {
	f := newFixture(t, nil)
	parent := newParent(t)

	var list struct {
		Games []models.GameSummary `json:"games"`
	}
	if code := f.do(t, parent, "GET", "/api/parent/games", nil, &list); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(list.Games) != len(catalog.Builtin()) {
		t.Fatalf("games = %d", len(list.Games))
	}
	if !list.Games[0].Unlocked || list.Games[1].Unlocked {
		t.Fatalf("unlock flags = %v, %v", list.Games[0].Unlocked, list.Games[1].Unlocked)
	}

	var errBody map[string]string
	if code := f.do(t, parent, "POST", "/api/parent/games/resilience-check/sessions", nil, &errBody); code != http.StatusForbidden {
		t.Fatalf("locked game status = %d", code)
	}
	if code := f.do(t, parent, "POST", "/api/parent/games/reframe-quizz/sessions", nil, &errBody); code != http.StatusNotFound {
		t.Fatalf("unknown game status = %d", code)
	}
	if errBody["suggestion"] != "reframe-quiz" {
		t.Fatalf("suggestion = %q", errBody["suggestion"])
	}
}

func TestTallyGameToBadge(t *testing.T) {
	f := newFixture(t, nil)
	parent := newParent(t)
	quiz := builtinGame(t, "reframe-quiz")

	var view game.SessionView
	if code := f.do(t, parent, "POST", "/api/parent/games/reframe-quiz/sessions", nil, &view); code != http.StatusCreated {
		t.Fatalf("create status = %d", code)
	}
	if view.State != game.StateRoundActive || view.CanAdvance || view.Round == nil {
		t.Fatalf("initial view = %+v", view)
	}
	base := "/api/parent/sessions/" + view.SessionID

	var errBody map[string]string
	if code := f.do(t, parent, "POST", base+"/next", nil, &errBody); code != http.StatusConflict {
		t.Fatalf("next before answer = %d", code)
	}

	// another parent cannot touch this session
	if code := f.do(t, newParent(t), "GET", base, nil, &errBody); code != http.StatusForbidden {
		t.Fatalf("foreign parent status = %d", code)
	}

	var last nextView
	for i := 0; i < view.TotalRounds; i++ {
		var cur game.SessionView
		f.do(t, parent, "GET", base, nil, &cur)
		roundID := cur.Round.ID

		var answered game.SessionView
		code := f.do(t, parent, "POST", base+"/select", selectRequest{RoundID: roundID, ChoiceID: correctChoice(quiz, roundID)}, &answered)
		if code != http.StatusOK || !answered.CanAdvance || answered.Correct == nil || !*answered.Correct || answered.Feedback == "" {
			t.Fatalf("round %s answer = %d %+v", roundID, code, answered)
		}
		if code := f.do(t, parent, "POST", base+"/select", selectRequest{RoundID: roundID, ChoiceID: "a"}, &errBody); code != http.StatusConflict {
			t.Fatalf("double answer status = %d", code)
		}

		last = nextView{}
		if code := f.do(t, parent, "POST", base+"/next", nil, &last); code != http.StatusOK {
			t.Fatalf("next status = %d", code)
		}
	}

	if last.State != game.StateComplete || last.Result == nil || !last.Result.Passed || last.Result.Score != 5 {
		t.Fatalf("final view = %+v", last)
	}
	if last.Badge != "reframe-ranger" {
		t.Fatalf("badge hint = %q", last.Badge)
	}

	var list struct {
		Games []models.GameSummary `json:"games"`
	}
	f.do(t, parent, "GET", "/api/parent/games", nil, &list)
	if !list.Games[0].Completed || !list.Games[1].Unlocked || list.Games[0].BestScore == nil || *list.Games[0].BestScore != 5 {
		t.Fatalf("games after clear = %+v", list.Games[:2])
	}

	var collected models.CollectResult
	if code := f.do(t, parent, "POST", "/api/parent/badge/reframe-ranger/collect", nil, &collected); code != http.StatusOK || !collected.NewlyEarned {
		t.Fatalf("collect = %d %+v", code, collected)
	}
	if code := f.do(t, parent, "POST", "/api/parent/badge/reframe-ranger/collect", nil, &collected); code != http.StatusOK || !collected.AlreadyEarned {
		t.Fatalf("recollect = %d %+v", code, collected)
	}
	var status models.BadgeStatus
	if code := f.do(t, parent, "GET", "/api/parent/badge/bounce-back/status", nil, &status); code != http.StatusOK || status.Eligible || status.BadgeEarned {
		t.Fatalf("other badge status = %d %+v", code, status)
	}
	if code := f.do(t, parent, "POST", "/api/parent/badge/nope/collect", nil, &collected); code != http.StatusNotFound || collected.Success {
		t.Fatalf("unknown badge = %d %+v", code, collected)
	}
}

func TestClassificationOverHTTP(t *testing.T) {
	f := newFixture(t, nil)
	parent := newParent(t)
	f.unlockThrough(t, f.parentID(t, parent), "healthy-sort")
	sort := builtinGame(t, "healthy-sort")

	var view game.SessionView
	if code := f.do(t, parent, "POST", "/api/parent/games/healthy-sort/sessions", nil, &view); code != http.StatusCreated {
		t.Fatalf("create status = %d", code)
	}
	base := "/api/parent/sessions/" + view.SessionID
	if len(view.Pool) != len(sort.Rounds) || len(view.Bins) != 2 {
		t.Fatalf("initial view = %+v", view)
	}

	var errBody map[string]string
	if code := f.do(t, parent, "POST", base+"/place", placeRequest{ItemID: "h1", Bin: "crunchy"}, &errBody); code != http.StatusBadRequest {
		t.Fatalf("unknown bin status = %d", code)
	}

	for i, r := range sort.Rounds {
		f.do(t, parent, "POST", base+"/place", placeRequest{ItemID: r.ID, Bin: r.Bin}, &view)
		if last := i == len(sort.Rounds)-1; view.CanAdvance != last {
			t.Fatalf("after %d placements canAdvance = %v", i+1, view.CanAdvance)
		}
	}

	f.do(t, parent, "POST", base+"/remove", placeRequest{ItemID: "h1"}, &view)
	if view.CanAdvance || len(view.Pool) != 1 {
		t.Fatalf("after remove = %+v", view)
	}
	if code := f.do(t, parent, "POST", base+"/next", nil, &errBody); code != http.StatusConflict {
		t.Fatalf("next with pool = %d", code)
	}
	f.do(t, parent, "POST", base+"/place", placeRequest{ItemID: "h1", Bin: "healthy"}, &view)

	var done nextView
	if code := f.do(t, parent, "POST", base+"/next", nil, &done); code != http.StatusOK {
		t.Fatalf("next status = %d", code)
	}
	if done.Result == nil || done.Result.Score != done.Result.MaxScore || !done.Result.Passed || done.Badge != "habit-hero" {
		t.Fatalf("done = %+v", done)
	}
}

func TestReflectionUsesCoach(t *testing.T) {
	f := newFixture(t, nil)
	parent := newParent(t)
	f.unlockThrough(t, f.parentID(t, parent), "gratitude-journal")

	var view game.SessionView
	if code := f.do(t, parent, "POST", "/api/parent/games/gratitude-journal/sessions", nil, &view); code != http.StatusCreated {
		t.Fatalf("create status = %d", code)
	}
	base := "/api/parent/sessions/" + view.SessionID

	var errBody map[string]string
	if code := f.do(t, parent, "POST", base+"/reflect", reflectRequest{RoundID: view.Round.ID, Text: "   "}, &errBody); code != http.StatusBadRequest {
		t.Fatalf("empty reflection status = %d", code)
	}

	f.do(t, parent, "POST", base+"/reflect", reflectRequest{RoundID: view.Round.ID, Text: "We baked bread together"}, &view)
	if !view.CanAdvance || view.Feedback != "What a lovely moment." {
		t.Fatalf("view = %+v", view)
	}
}

func TestAdminGoodieFlow(t *testing.T) {
	f := newFixture(t, nil)
	admin := newParent(t)
	parent := newParent(t)

	var errBody map[string]string
	if code := f.do(t, admin, "POST", "/api/admin/goodies", models.CreateGoodieRequest{Title: "  ", Coins: 0}, &errBody); code != http.StatusBadRequest {
		t.Fatalf("invalid create = %d", code)
	}
	if errBody["error"] == "" {
		t.Fatal("missing error message")
	}

	var created struct {
		Goodie models.Goodie `json:"goodie"`
	}
	if code := f.do(t, admin, "POST", "/api/admin/goodies", models.CreateGoodieRequest{Title: " Puzzle ", Coins: 300}, &created); code != http.StatusCreated {
		t.Fatalf("create = %d", code)
	}
	if created.Goodie.Title != "Puzzle" || created.Goodie.ID == "" {
		t.Fatalf("created = %+v", created.Goodie)
	}

	var goodies struct {
		Goodies []models.Goodie `json:"goodies"`
	}
	f.do(t, parent, "GET", "/api/parent/goodies", nil, &goodies)
	if len(goodies.Goodies) != 1 {
		t.Fatalf("parent goodies = %+v", goodies)
	}

	redeem := models.RedeemRequest{
		UserName: "Ravi", ContactNumber: "12345", HealCoins: 100,
		Address: models.Address{Line1: "1 Main St", City: "Delhi", Pincode: "110001"},
	}
	path := "/api/parent/goodies/" + created.Goodie.ID + "/redeem"
	if code := f.do(t, parent, "POST", path, redeem, &errBody); code != http.StatusConflict {
		t.Fatalf("insufficient coins = %d", code)
	}
	redeem.HealCoins = 1000
	var placed struct {
		Order models.GoodieOrder `json:"order"`
	}
	if code := f.do(t, parent, "POST", path, redeem, &placed); code != http.StatusCreated || placed.Order.HealCoinsAfter != 700 {
		t.Fatalf("redeem = %d %+v", code, placed.Order)
	}

	var orders struct {
		Orders []models.GoodieOrder `json:"orders"`
	}
	f.do(t, admin, "GET", "/api/admin/goodie-orders", nil, &orders)
	if len(orders.Orders) != 1 || orders.Orders[0].Status != models.OrderRequested {
		t.Fatalf("orders = %+v", orders)
	}

	var updated struct {
		Order models.GoodieOrder `json:"order"`
	}
	if code := f.do(t, admin, "PATCH", "/api/admin/goodie-orders/"+placed.Order.ID, models.UpdateOrderStatusRequest{Status: models.OrderDelivered}, &updated); code != http.StatusOK || updated.Order.Status != models.OrderDelivered {
		t.Fatalf("patch = %d %+v", code, updated)
	}
	if code := f.do(t, admin, "PATCH", "/api/admin/goodie-orders/"+placed.Order.ID, map[string]string{"status": "lost"}, &errBody); code != http.StatusBadRequest {
		t.Fatalf("bad status patch = %d", code)
	}

	var deleted map[string]bool
	if code := f.do(t, admin, "DELETE", "/api/admin/goodies/"+created.Goodie.ID, nil, &deleted); code != http.StatusOK || !deleted["success"] {
		t.Fatalf("delete = %d %v", code, deleted)
	}
	if code := f.do(t, admin, "DELETE", "/api/admin/goodies/"+created.Goodie.ID, nil, &errBody); code != http.StatusNotFound {
		t.Fatalf("second delete = %d", code)
	}

	want := []string{models.EventCatalogNew, models.EventOrderNew, models.EventOrderUpdate, models.EventCatalogDelete}
	got := f.events.names()
	if len(got) != len(want) {
		t.Fatalf("events = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestSpeech(t *testing.T) {
	f := newFixture(t, nil)
	var errBody map[string]string
	if code := f.do(t, newParent(t), "POST", "/api/parent/speech", speechRequest{Text: "Breathe in"}, &errBody); code != http.StatusServiceUnavailable {
		t.Fatalf("disabled speech = %d", code)
	}

	f = newFixture(t, fakeSynth{})
	if code := f.do(t, newParent(t), "POST", "/api/parent/speech", speechRequest{Text: ""}, &errBody); code != http.StatusBadRequest {
		t.Fatalf("empty text = %d", code)
	}

	b, _ := json.Marshal(speechRequest{Text: "Breathe in", Mood: "calm"})
	resp, err := newParent(t).Post(f.srv.URL+"/api/parent/speech", "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	audio, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "audio/mpeg" || string(audio) != "ID3Breathe in" {
		t.Fatalf("speech = %d %s %q", resp.StatusCode, resp.Header.Get("Content-Type"), audio)
	}
}

func TestSessionEviction(t *testing.T) {
	store := newSessionStore(time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }

	started := now
	s, err := game.NewSession(builtinGame(t, "calm-parent"), game.WithID("s1"), game.WithClock(func() time.Time { return started }))
	if err != nil {
		t.Fatal(err)
	}
	store.put("s1", &playSession{parentID: "p", session: s})

	if n := store.evict(); n != 0 || store.count() != 1 {
		t.Fatalf("fresh session evicted: %d", n)
	}
	now = now.Add(2 * time.Minute)
	if n := store.evict(); n != 1 || store.count() != 0 {
		t.Fatalf("idle session kept: %d", n)
	}
}

func TestResultSavedAfterFailedRecord(t *testing.T) {
	f := newFixture(t, nil)
	parent := newParent(t)
	quiz := builtinGame(t, "reframe-quiz")

	var view game.SessionView
	if code := f.do(t, parent, "POST", "/api/parent/games/reframe-quiz/sessions", nil, &view); code != http.StatusCreated {
		t.Fatalf("create status = %d", code)
	}
	base := "/api/parent/sessions/" + view.SessionID

	for i := 0; i < view.TotalRounds; i++ {
		var cur game.SessionView
		f.do(t, parent, "GET", base, nil, &cur)
		f.do(t, parent, "POST", base+"/select", selectRequest{RoundID: cur.Round.ID, ChoiceID: correctChoice(quiz, cur.Round.ID)}, nil)
		if i == view.TotalRounds-1 {
			if _, err := f.db.Exec(`ALTER TABLE game_results RENAME TO game_results_off`); err != nil {
				t.Fatal(err)
			}
		}
		var out nextView
		code := f.do(t, parent, "POST", base+"/next", nil, &out)
		if i < view.TotalRounds-1 && code != http.StatusOK {
			t.Fatalf("next status = %d", code)
		}
		if i == view.TotalRounds-1 && code != http.StatusInternalServerError {
			t.Fatalf("next with broken store = %d", code)
		}
	}

	if _, err := f.db.Exec(`ALTER TABLE game_results_off RENAME TO game_results`); err != nil {
		t.Fatal(err)
	}

	var retried nextView
	if code := f.do(t, parent, "POST", base+"/next", nil, &retried); code != http.StatusOK {
		t.Fatalf("retry status = %d", code)
	}
	if retried.State != game.StateComplete || retried.Badge != "reframe-ranger" {
		t.Fatalf("retry view = %+v", retried)
	}

	var again nextView
	if code := f.do(t, parent, "GET", base, nil, &again); code != http.StatusOK || again.Badge != "reframe-ranger" {
		t.Fatalf("get after save = %d %+v", code, again)
	}
	var errBody map[string]string
	if code := f.do(t, parent, "POST", base+"/next", nil, &errBody); code != http.StatusConflict {
		t.Fatalf("next after save = %d", code)
	}

	results, err := f.progress.Results(context.Background(), f.parentID(t, parent))
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].GameID != "reframe-quiz" {
		t.Fatalf("results = %+v", results)
	}
}
