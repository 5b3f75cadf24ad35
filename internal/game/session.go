package game

import (
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"
)

type State string

const (
	StateReady         State = "ready"
	StateRoundActive   State = "round_active"
	StateRoundFeedback State = "round_feedback"
	StateComplete      State = "complete"
)

var (
	ErrNotStarted      = errors.New("session has not been started")
	ErrAlreadyStarted  = errors.New("session already started")
	ErrComplete        = errors.New("session is complete")
	ErrAlreadyAnswered = errors.New("round already answered")
	ErrNoResponse      = errors.New("current round has no response")
	ErrNotCurrentRound = errors.New("round is not the current round")
	ErrUnknownRound    = errors.New("unknown round")
	ErrUnknownChoice   = errors.New("unknown choice")
	ErrUnknownBin      = errors.New("unknown bin")
	ErrNotPlaced       = errors.New("item is not in a bin")
	ErrEmptyReflection = errors.New("reflection text is required")
	ErrWrongMode       = errors.New("operation not supported by this game")
)

type Option func(*Session)

// WithRand sets the source used to shuffle option order.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) { s.rng = r }
}

// WithLevels limits the session to the first n rounds. Values <= 0 or
// larger than the round count play every round.
func WithLevels(n int) Option {
	return func(s *Session) { s.levels = n }
}

func WithID(id string) Option {
	return func(s *Session) { s.ID = id }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session is one pass through a game's rounds. Safe for concurrent use.
type Session struct {
	ID string

	mu        sync.Mutex
	game      Game
	rounds    []Round
	strategy  Strategy
	state     State
	current   int
	responses []Response
	feedback  map[string]string
	rng       *rand.Rand
	levels    int
	now       func() time.Time
	touched   time.Time
}

func NewSession(g Game, opts ...Option) (*Session, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	strategy, err := NewStrategy(g.Scoring)
	if err != nil {
		return nil, err
	}

	s := &Session{
		game:     g,
		strategy: strategy,
		feedback: make(map[string]string),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	n := len(g.Rounds)
	if s.levels > 0 && s.levels < n {
		n = s.levels
	}
	s.rounds = make([]Round, n)
	for i := 0; i < n; i++ {
		r := g.Rounds[i]
		r.Options = append([]Choice(nil), r.Options...)
		if g.ShuffleOptions {
			s.rng.Shuffle(len(r.Options), func(a, b int) {
				r.Options[a], r.Options[b] = r.Options[b], r.Options[a]
			})
		}
		s.rounds[i] = r
	}

	s.state = StateRoundActive
	if g.RequiresStart {
		s.state = StateReady
	}
	s.touched = s.now()
	return s, nil
}

func (s *Session) Game() Game {
	return s.game
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastActivity is the time of the last state change.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

func (s *Session) classification() bool {
	return s.strategy.Kind() == ScoringClassification
}

func (s *Session) touch() {
	s.touched = s.now()
}

// Start moves a ready session into its first round.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return ErrAlreadyStarted
	}
	s.state = StateRoundActive
	s.touch()
	return nil
}

func (s *Session) inputGuard() error {
	switch s.state {
	case StateReady:
		return ErrNotStarted
	case StateComplete:
		return ErrComplete
	}
	return nil
}

// currentRoundFor checks roundID against the round awaiting input.
func (s *Session) currentRoundFor(roundID string) (Round, error) {
	if err := s.inputGuard(); err != nil {
		return Round{}, err
	}
	if s.answered(roundID) {
		return Round{}, ErrAlreadyAnswered
	}
	if s.current >= len(s.rounds) {
		return Round{}, ErrComplete
	}
	r := s.rounds[s.current]
	if r.ID != roundID {
		if _, ok := s.roundByID(roundID); !ok {
			return Round{}, ErrUnknownRound
		}
		return Round{}, ErrNotCurrentRound
	}
	return r, nil
}

func (s *Session) answered(roundID string) bool {
	for _, r := range s.responses {
		if r.RoundID == roundID {
			return true
		}
	}
	return false
}

func (s *Session) roundByID(id string) (Round, bool) {
	for _, r := range s.rounds {
		if r.ID == id {
			return r, true
		}
	}
	return Round{}, false
}

// Select records the one allowed choice for the current round.
func (s *Session) Select(roundID, choiceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.classification() {
		return ErrWrongMode
	}
	r, err := s.currentRoundFor(roundID)
	if err != nil {
		return err
	}
	if r.kind() != KindChoice {
		return ErrWrongMode
	}
	if _, ok := r.choice(choiceID); !ok {
		return ErrUnknownChoice
	}

	s.responses = append(s.responses, Response{RoundID: roundID, ChoiceID: choiceID})
	s.state = StateRoundFeedback
	s.touch()
	return nil
}

// Reflect records a journal entry for the current reflection round.
func (s *Session) Reflect(roundID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.classification() {
		return ErrWrongMode
	}
	r, err := s.currentRoundFor(roundID)
	if err != nil {
		return err
	}
	if r.kind() != KindReflection {
		return ErrWrongMode
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyReflection
	}

	s.responses = append(s.responses, Response{RoundID: roundID, Text: text})
	s.state = StateRoundFeedback
	s.touch()
	return nil
}

// SetFeedback overrides the feedback shown for an answered round.
func (s *Session) SetFeedback(roundID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if text = strings.TrimSpace(text); text != "" {
		s.feedback[roundID] = text
	}
}

// Place puts an item into a bin, moving it if it is already in the other
// one. Filling the last slot enables Next.
func (s *Session) Place(itemID, bin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.classification() {
		return ErrWrongMode
	}
	if err := s.inputGuard(); err != nil {
		return err
	}
	if _, ok := s.roundByID(itemID); !ok {
		return ErrUnknownRound
	}
	if !s.game.Scoring.hasBin(bin) {
		return ErrUnknownBin
	}

	placed := false
	for i := range s.responses {
		if s.responses[i].RoundID == itemID {
			s.responses[i].ChoiceID = bin
			placed = true
			break
		}
	}
	if !placed {
		s.responses = append(s.responses, Response{RoundID: itemID, ChoiceID: bin})
	}

	if len(s.responses) == len(s.rounds) {
		s.state = StateRoundFeedback
	}
	s.touch()
	return nil
}

// Remove returns an item from its bin to the unassigned pool.
func (s *Session) Remove(itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.classification() {
		return ErrWrongMode
	}
	if err := s.inputGuard(); err != nil {
		return err
	}
	for i := range s.responses {
		if s.responses[i].RoundID == itemID {
			s.responses = append(s.responses[:i], s.responses[i+1:]...)
			s.state = StateRoundActive
			s.touch()
			return nil
		}
	}
	if _, ok := s.roundByID(itemID); !ok {
		return ErrUnknownRound
	}
	return ErrNotPlaced
}

// CanAdvance reports whether Next would succeed.
func (s *Session) CanAdvance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateRoundFeedback
}

// Next advances past the answered round. done is true when this call
// completed the session.
func (s *Session) Next() (done bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateReady:
		return false, ErrNotStarted
	case StateComplete:
		return false, ErrComplete
	case StateRoundActive:
		return false, ErrNoResponse
	}

	s.touch()
	if s.classification() {
		s.state = StateComplete
		return true, nil
	}

	s.current++
	if s.current >= len(s.rounds) {
		s.state = StateComplete
		return true, nil
	}
	s.state = StateRoundActive
	return false, nil
}

// Result scores the responses recorded so far.
func (s *Session) Result() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.strategy.Score(s.rounds, s.responses)
}

// Responses returns a copy of the recorded answers in answer order.
func (s *Session) Responses() []Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Response(nil), s.responses...)
}
