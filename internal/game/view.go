package game

// ChoiceView hides the scoring attributes of a choice.
type ChoiceView struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type RoundView struct {
	ID      string       `json:"id"`
	Kind    RoundKind    `json:"kind"`
	Prompt  string       `json:"prompt"`
	Options []ChoiceView `json:"options,omitempty"`
}

// SessionView is what the front end renders after every operation.
type SessionView struct {
	SessionID   string                 `json:"session_id"`
	GameID      string                 `json:"game_id"`
	Title       string                 `json:"title"`
	State       State                  `json:"state"`
	RoundIndex  int                    `json:"round_index"`
	TotalRounds int                    `json:"total_rounds"`
	Round       *RoundView             `json:"round,omitempty"`
	Selected    string                 `json:"selected,omitempty"`
	Correct     *bool                  `json:"correct,omitempty"`
	Feedback    string                 `json:"feedback,omitempty"`
	CanAdvance  bool                   `json:"can_advance"`
	Meter       *int                   `json:"meter,omitempty"`
	Bins        []string               `json:"bins,omitempty"`
	Pool        []RoundView            `json:"pool,omitempty"`
	Placed      map[string][]RoundView `json:"placed,omitempty"`
	Result      *Result                `json:"result,omitempty"`
}

func newRoundView(r Round) RoundView {
	v := RoundView{ID: r.ID, Kind: r.kind(), Prompt: r.Prompt}
	for _, c := range r.Options {
		v.Options = append(v.Options, ChoiceView{ID: c.ID, Label: c.Label})
	}
	return v
}

func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := SessionView{
		SessionID:   s.ID,
		GameID:      s.game.ID,
		Title:       s.game.Title,
		State:       s.state,
		RoundIndex:  s.current,
		TotalRounds: len(s.rounds),
		CanAdvance:  s.state == StateRoundFeedback,
	}

	result := s.strategy.Score(s.rounds, s.responses)
	if result.Meter != nil {
		v.Meter = result.Meter
	}
	if s.state == StateComplete {
		v.Result = &result
	}

	if s.classification() {
		s.fillClassification(&v)
		return v
	}

	if s.state == StateComplete || s.current >= len(s.rounds) {
		return v
	}

	r := s.rounds[s.current]
	rv := newRoundView(r)
	v.Round = &rv

	if s.state != StateRoundFeedback {
		return v
	}
	for _, resp := range s.responses {
		if resp.RoundID != r.ID {
			continue
		}
		v.Feedback = r.Explanation
		if c, ok := r.choice(resp.ChoiceID); ok {
			v.Selected = c.ID
			if c.Feedback != "" {
				v.Feedback = c.Feedback
			}
			if s.strategy.Kind() == ScoringTally {
				correct := c.Correct
				v.Correct = &correct
			}
		}
	}
	if fb, ok := s.feedback[r.ID]; ok {
		v.Feedback = fb
	}
	return v
}

func (s *Session) fillClassification(v *SessionView) {
	v.Bins = append([]string(nil), s.game.Scoring.Bins...)
	v.Placed = make(map[string][]RoundView, len(v.Bins))
	for _, b := range v.Bins {
		v.Placed[b] = []RoundView{}
	}

	placed := make(map[string]string, len(s.responses))
	for _, resp := range s.responses {
		placed[resp.RoundID] = resp.ChoiceID
	}
	for _, r := range s.rounds {
		rv := newRoundView(r)
		if bin, ok := placed[r.ID]; ok {
			v.Placed[bin] = append(v.Placed[bin], rv)
			continue
		}
		v.Pool = append(v.Pool, rv)
	}
}
