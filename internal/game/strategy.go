package game

import (
	"fmt"
	"math"
	"strings"
)

type ScoringKind string

const (
	ScoringTally          ScoringKind = "tally"
	ScoringLikert         ScoringKind = "likert"
	ScoringMeter          ScoringKind = "meter"
	ScoringClassification ScoringKind = "classification"
)

const (
	MeterMin          = 0
	MeterMax          = 100
	DefaultMeterStart = 60

	LikertMax = 5

	DefaultClassificationPoints = 5
)

// ScoringConfig selects and parameterises a Strategy.
type ScoringConfig struct {
	Kind ScoringKind `json:"kind"`
	// tally: minimum correct rounds (0 = majority)
	// likert: minimum percentage (0 = ungraded)
	// classification: minimum points (0 = majority of max points)
	PassThreshold int      `json:"pass_threshold,omitempty"`
	InitialMeter  *int     `json:"initial_meter,omitempty"`
	Bins          []string `json:"bins,omitempty"`
	MaxPoints     int      `json:"max_points,omitempty"`
}

func (c ScoringConfig) hasBin(bin string) bool {
	for _, b := range c.Bins {
		if b == bin {
			return true
		}
	}
	return false
}

// Response is one recorded answer. ChoiceID holds the bin for
// classification placements.
type Response struct {
	RoundID  string `json:"round_id"`
	ChoiceID string `json:"choice_id,omitempty"`
	Text     string `json:"text,omitempty"`
}

// Result is always derived from responses, never stored on a session.
type Result struct {
	Kind       ScoringKind `json:"kind"`
	Score      int         `json:"score"`
	MaxScore   int         `json:"max_score"`
	Percentage int         `json:"percentage"`
	Level      string      `json:"level,omitempty"`
	Graded     bool        `json:"graded"`
	Passed     bool        `json:"passed"`
	Correct    int         `json:"correct"`
	Meter      *int        `json:"meter,omitempty"`
}

type Strategy interface {
	Kind() ScoringKind
	Score(rounds []Round, responses []Response) Result
}

// NewStrategy builds the strategy described by cfg.
func NewStrategy(cfg ScoringConfig) (Strategy, error) {
	switch cfg.Kind {
	case ScoringTally:
		return Tally{PassThreshold: cfg.PassThreshold}, nil
	case ScoringLikert:
		return Likert{PassPercentage: cfg.PassThreshold}, nil
	case ScoringMeter:
		start := DefaultMeterStart
		if cfg.InitialMeter != nil {
			start = clamp(*cfg.InitialMeter, MeterMin, MeterMax)
		}
		return Meter{Initial: start}, nil
	case ScoringClassification:
		if len(cfg.Bins) != 2 || cfg.Bins[0] == cfg.Bins[1] || cfg.Bins[0] == "" || cfg.Bins[1] == "" {
			return nil, fmt.Errorf("classification needs exactly two distinct bins, got %v", cfg.Bins)
		}
		return Classification{Bins: [2]string{cfg.Bins[0], cfg.Bins[1]}, MaxPoints: cfg.MaxPoints, PassPoints: cfg.PassThreshold}, nil
	default:
		return nil, fmt.Errorf("unsupported scoring kind: %q", cfg.Kind)
	}
}

// MajorityThreshold is ceil(n/2).
func MajorityThreshold(n int) int {
	return (n + 1) / 2
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// percent rounds 100*num/den, treating an empty denominator as 0.
func percent(num, den int) int {
	if den <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(num) / float64(den)))
}

func roundIndex(rounds []Round) map[string]Round {
	idx := make(map[string]Round, len(rounds))
	for _, r := range rounds {
		idx[r.ID] = r
	}
	return idx
}

// Tally counts correct selections. Written reflections count as correct.
type Tally struct {
	PassThreshold int
}

func (Tally) Kind() ScoringKind { return ScoringTally }

func (t Tally) threshold(n int) int {
	if t.PassThreshold > 0 {
		// a game shortened by configuration stays passable
		return min(t.PassThreshold, n)
	}
	return MajorityThreshold(n)
}

func (t Tally) Score(rounds []Round, responses []Response) Result {
	idx := roundIndex(rounds)
	score := 0
	for _, resp := range responses {
		r, ok := idx[resp.RoundID]
		if !ok {
			continue
		}
		if r.kind() == KindReflection {
			if strings.TrimSpace(resp.Text) != "" {
				score++
			}
			continue
		}
		if c, ok := r.choice(resp.ChoiceID); ok && c.Correct {
			score++
		}
	}

	n := len(rounds)
	return Result{
		Kind:       ScoringTally,
		Score:      score,
		MaxScore:   n,
		Correct:    score,
		Percentage: percent(score, n),
		Level:      TallyLevel(score, n),
		Graded:     true,
		Passed:     n > 0 && score >= t.threshold(n),
	}
}

// TallyLevel buckets score/max at 90/70/50%.
func TallyLevel(score, max int) string {
	if max <= 0 {
		return "Keep Practicing"
	}
	ratio := float64(score) / float64(max)
	switch {
	case ratio >= 0.9:
		return "Excellent"
	case ratio >= 0.7:
		return "Great"
	case ratio >= 0.5:
		return "Good"
	default:
		return "Keep Practicing"
	}
}

// Likert sums 1..5 ratings and normalises against 5 per round.
type Likert struct {
	PassPercentage int
}

func (Likert) Kind() ScoringKind { return ScoringLikert }

func (l Likert) Score(rounds []Round, responses []Response) Result {
	idx := roundIndex(rounds)
	raw := 0
	for _, resp := range responses {
		r, ok := idx[resp.RoundID]
		if !ok {
			continue
		}
		if c, ok := r.choice(resp.ChoiceID); ok {
			raw += clamp(c.Points, 1, LikertMax)
		}
	}

	max := LikertMax * len(rounds)
	pct := percent(raw, max)
	graded := l.PassPercentage > 0
	return Result{
		Kind:       ScoringLikert,
		Score:      raw,
		MaxScore:   max,
		Percentage: pct,
		Level:      LikertLevel(pct),
		Graded:     graded,
		Passed:     graded && pct >= l.PassPercentage,
	}
}

func LikertLevel(pct int) string {
	switch {
	case pct >= 80:
		return "Excellent"
	case pct >= 60:
		return "Good"
	case pct >= 40:
		return "Fair"
	default:
		return "Needs Improvement"
	}
}

// Meter applies each answer's delta in order, clamped to [0,100].
type Meter struct {
	Initial int
}

func (Meter) Kind() ScoringKind { return ScoringMeter }

func (m Meter) Score(rounds []Round, responses []Response) Result {
	idx := roundIndex(rounds)
	value := clamp(m.Initial, MeterMin, MeterMax)
	for _, resp := range responses {
		r, ok := idx[resp.RoundID]
		if !ok {
			continue
		}
		if c, ok := r.choice(resp.ChoiceID); ok {
			value = clamp(value+c.Delta, MeterMin, MeterMax)
		}
	}

	return Result{
		Kind:       ScoringMeter,
		Score:      value,
		MaxScore:   MeterMax,
		Percentage: value,
		Meter:      &value,
	}
}

// Classification scores bin placements across the whole item pool.
type Classification struct {
	Bins       [2]string
	MaxPoints  int
	PassPoints int
}

func (Classification) Kind() ScoringKind { return ScoringClassification }

func (c Classification) maxPoints() int {
	if c.MaxPoints > 0 {
		return c.MaxPoints
	}
	return DefaultClassificationPoints
}

// Points maps correct placements to the point scale: full marks only for a
// perfect sort, otherwise floor(correct/2).
func (c Classification) Points(correct, total int) int {
	max := c.maxPoints()
	if total > 0 && correct == total {
		return max
	}
	return min(correct/2, max)
}

func (c Classification) Score(rounds []Round, responses []Response) Result {
	idx := roundIndex(rounds)
	correct := 0
	for _, resp := range responses {
		if r, ok := idx[resp.RoundID]; ok && r.Bin == resp.ChoiceID {
			correct++
		}
	}

	total := len(rounds)
	max := c.maxPoints()
	pass := c.PassPoints
	if pass <= 0 {
		pass = MajorityThreshold(max)
	}
	pass = min(pass, max)
	points := c.Points(correct, total)
	return Result{
		Kind:       ScoringClassification,
		Score:      points,
		MaxScore:   max,
		Correct:    correct,
		Percentage: percent(correct, total),
		Level:      TallyLevel(correct, total),
		Graded:     true,
		Passed:     total > 0 && points >= pass,
	}
}
