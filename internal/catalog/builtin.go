package catalog

import "github.com/tahcohcat/healplay/internal/game"

// Pass thresholds are fixed per game.
const (
	ReframeQuizPass      = 3 // of 5
	ResiliencePass       = 0 // majority of the rounds played
	ConnectionCheckPass  = 60
	HealthySortPass      = 3 // of 5 points
	GratitudeJournalPass = 3
)

func intPtr(v int) *int { return &v }

// Builtin returns the shipped mini-games in unlock order.
func Builtin() []game.Game {
	return []game.Game{
		reframeQuiz(),
		resilienceCheck(),
		connectionCheck(),
		calmParent(),
		healthySort(),
		breathingReset(),
		gratitudeJournal(),
	}
}

func reframeQuiz() game.Game {
	return game.Game{
		ID:             "reframe-quiz",
		Title:          "Reframe It",
		Description:    "Pick the most helpful way to reframe a tough parenting thought.",
		Scoring:        game.ScoringConfig{Kind: game.ScoringTally, PassThreshold: ReframeQuizPass},
		ShuffleOptions: true,
		Badge:          "reframe-ranger",
		Rounds: []game.Round{
			{
				ID:     "r1",
				Prompt: "\"My child never listens to me.\"",
				Options: []game.Choice{
					{ID: "a", Label: "They are doing it on purpose to upset me."},
					{ID: "b", Label: "They are still learning to switch attention; I can get down to their level.", Correct: true},
					{ID: "c", Label: "I am a bad parent."},
				},
				Explanation: "Attention shifting is a skill that develops with practice and connection.",
			},
			{
				ID:     "r2",
				Prompt: "\"Bedtime is always a battle.\"",
				Options: []game.Choice{
					{ID: "a", Label: "Bedtime is hard tonight; a predictable routine can help.", Correct: true},
					{ID: "b", Label: "Nothing will ever work."},
					{ID: "c", Label: "I should just give up on bedtimes."},
				},
				Explanation: "Replacing 'always' with 'tonight' keeps the problem solvable.",
			},
			{
				ID:     "r3",
				Prompt: "\"I yelled again. I'm ruining everything.\"",
				Options: []game.Choice{
					{ID: "a", Label: "Repair matters more than perfection; I can apologise and reconnect.", Correct: true},
					{ID: "b", Label: "Kids forget, it doesn't matter."},
					{ID: "c", Label: "I'm just an angry person."},
				},
				Explanation: "Rupture followed by repair teaches children that relationships recover.",
			},
			{
				ID:     "r4",
				Prompt: "\"Other parents have it all figured out.\"",
				Options: []game.Choice{
					{ID: "a", Label: "I only see their highlights; everyone struggles somewhere.", Correct: true},
					{ID: "b", Label: "I'm falling behind everyone."},
					{ID: "c", Label: "I should copy exactly what they do."},
				},
				Explanation: "Comparison rarely includes the full picture.",
			},
			{
				ID:     "r5",
				Prompt: "\"My teenager doesn't want to talk to me.\"",
				Options: []game.Choice{
					{ID: "a", Label: "They hate me."},
					{ID: "b", Label: "They need some independence; side-by-side time can open doors.", Correct: true},
					{ID: "c", Label: "I'll force a conversation tonight."},
				},
				Explanation: "Teens often talk more during shared activities than face-to-face.",
			},
		},
	}
}

func resilienceCheck() game.Game {
	return game.Game{
		ID:          "resilience-check",
		Title:       "Bounce Back",
		Description: "Choose the resilient response to everyday setbacks.",
		Scoring:     game.ScoringConfig{Kind: game.ScoringTally, PassThreshold: ResiliencePass},
		Badge:       "bounce-back",
		Rounds: []game.Round{
			{ID: "s1", Prompt: "Your toddler melts down in the supermarket.", Options: []game.Choice{
				{ID: "calm", Label: "Take a breath and name the feeling for them.", Correct: true, Feedback: "Naming feelings helps children regulate."},
				{ID: "leave", Label: "Abandon the cart and storm out."},
			}},
			{ID: "s2", Prompt: "Your child fails a spelling test.", Options: []game.Choice{
				{ID: "blame", Label: "Tell them they should have studied harder."},
				{ID: "plan", Label: "Ask what felt tricky and make a plan together.", Correct: true, Feedback: "Problem-solving together builds a growth mindset."},
			}},
			{ID: "s3", Prompt: "You miss a school event because of work.", Options: []game.Choice{
				{ID: "guilt", Label: "Spend the evening feeling guilty."},
				{ID: "reconnect", Label: "Ask your child to tell you all about it over dinner.", Correct: true},
			}},
			{ID: "s4", Prompt: "Siblings are fighting over a toy.", Options: []game.Choice{
				{ID: "coach", Label: "Coach them through taking turns.", Correct: true},
				{ID: "confiscate", Label: "Take the toy and send both to their rooms."},
			}},
			{ID: "s5", Prompt: "You feel overwhelmed at the end of the day.", Options: []game.Choice{
				{ID: "push", Label: "Push through and ignore it."},
				{ID: "ask", Label: "Ask for help and take ten minutes for yourself.", Correct: true},
			}},
		},
	}
}

func likertOptions() []game.Choice {
	return []game.Choice{
		{ID: "1", Label: "Never", Points: 1},
		{ID: "2", Label: "Rarely", Points: 2},
		{ID: "3", Label: "Sometimes", Points: 3},
		{ID: "4", Label: "Often", Points: 4},
		{ID: "5", Label: "Always", Points: 5},
	}
}

func connectionCheck() game.Game {
	return game.Game{
		ID:          "connection-check",
		Title:       "Connection Check-In",
		Description: "Rate how often these connection habits happen at home.",
		Scoring:     game.ScoringConfig{Kind: game.ScoringLikert, PassThreshold: ConnectionCheckPass},
		Badge:       "heart-connector",
		Rounds: []game.Round{
			{ID: "c1", Prompt: "I put my phone away when my child talks to me.", Options: likertOptions()},
			{ID: "c2", Prompt: "We share at least one meal a day together.", Options: likertOptions()},
			{ID: "c3", Prompt: "I notice and praise effort, not just results.", Options: likertOptions()},
			{ID: "c4", Prompt: "We have a calm bedtime routine.", Options: likertOptions()},
			{ID: "c5", Prompt: "I say sorry when I get it wrong.", Options: likertOptions()},
		},
	}
}

func calmParent() game.Game {
	return game.Game{
		ID:          "calm-parent",
		Title:       "Calm Meter",
		Description: "Every reaction moves your calm level. Keep it steady.",
		Scoring:     game.ScoringConfig{Kind: game.ScoringMeter, InitialMeter: intPtr(game.DefaultMeterStart)},
		Badge:       "steady-hands",
		Rounds: []game.Round{
			{ID: "m1", Prompt: "Milk spills across the table.", Options: []game.Choice{
				{ID: "sigh", Label: "Sigh loudly.", Delta: -5},
				{ID: "towel", Label: "Hand over a towel and clean up together.", Delta: 10},
			}},
			{ID: "m2", Prompt: "Your child says 'I hate you!'", Options: []game.Choice{
				{ID: "breathe", Label: "Breathe and reply 'You're really angry right now.'", Delta: 15},
				{ID: "shout", Label: "Shout back.", Delta: -20},
			}},
			{ID: "m3", Prompt: "You're late and shoes aren't on.", Options: []game.Choice{
				{ID: "race", Label: "Turn it into a race to the door.", Delta: 10},
				{ID: "threaten", Label: "Threaten to leave them behind.", Delta: -25},
			}},
			{ID: "m4", Prompt: "Homework tears at the kitchen table.", Options: []game.Choice{
				{ID: "break", Label: "Suggest a five-minute movement break.", Delta: 10},
				{ID: "lecture", Label: "Lecture about responsibility.", Delta: -10},
			}},
			{ID: "m5", Prompt: "A sibling squabble erupts during your call.", Options: []game.Choice{
				{ID: "mute", Label: "Mute, step in calmly, then return.", Delta: 8},
				{ID: "ignore", Label: "Ignore it and raise your voice on the call.", Delta: -8},
			}},
		},
	}
}

func healthySort() game.Game {
	item := func(id, prompt, bin string) game.Round {
		return game.Round{ID: id, Kind: game.KindItem, Prompt: prompt, Bin: bin}
	}
	return game.Game{
		ID:          "healthy-sort",
		Title:       "Habit Sorter",
		Description: "Sort each habit into healthy or unhealthy.",
		Scoring: game.ScoringConfig{
			Kind:          game.ScoringClassification,
			Bins:          []string{"healthy", "unhealthy"},
			MaxPoints:     5,
			PassThreshold: HealthySortPass,
		},
		TotalLevels: 10,
		Badge:       "habit-hero",
		Rounds: []game.Round{
			item("h1", "Reading a story together", "healthy"),
			item("h2", "Regular bedtime", "healthy"),
			item("h3", "Outdoor play", "healthy"),
			item("h4", "Family meals without screens", "healthy"),
			item("h5", "Naming feelings out loud", "healthy"),
			item("u1", "Screens right before bed", "unhealthy"),
			item("u2", "Skipping breakfast", "unhealthy"),
			item("u3", "Yelling to get attention", "unhealthy"),
			item("u4", "Comparing siblings", "unhealthy"),
			item("u5", "Bribing with sweets", "unhealthy"),
		},
	}
}

func breathingReset() game.Game {
	breath := func(id, prompt string) game.Round {
		return game.Round{ID: id, Prompt: prompt, Options: []game.Choice{
			{ID: "followed", Label: "I followed along", Delta: 8},
			{ID: "drifted", Label: "My mind drifted", Delta: 2},
		}}
	}
	return game.Game{
		ID:            "breathing-reset",
		Title:         "Box Breathing",
		Description:   "A guided four-step breathing reset. Press start when you're ready.",
		Scoring:       game.ScoringConfig{Kind: game.ScoringMeter, InitialMeter: intPtr(game.DefaultMeterStart)},
		RequiresStart: true,
		TotalLevels:   4,
		Badge:         "deep-breather",
		Rounds: []game.Round{
			breath("b1", "Breathe in slowly for four counts."),
			breath("b2", "Hold your breath for four counts."),
			breath("b3", "Breathe out gently for four counts."),
			breath("b4", "Hold, empty, for four counts."),
		},
	}
}

func gratitudeJournal() game.Game {
	entry := func(id, prompt string) game.Round {
		return game.Round{
			ID:          id,
			Kind:        game.KindReflection,
			Prompt:      prompt,
			Explanation: "Thanks for writing that down. Noticing small moments builds connection.",
		}
	}
	return game.Game{
		ID:          "gratitude-journal",
		Title:       "Gratitude Journal",
		Description: "Three short reflections on your week as a parent.",
		Scoring:     game.ScoringConfig{Kind: game.ScoringTally, PassThreshold: GratitudeJournalPass},
		TotalLevels: 3,
		Badge:       "grateful-heart",
		Rounds: []game.Round{
			entry("d1", "What is one moment with your child you'd like to remember?"),
			entry("d2", "When did you handle something better than you expected?"),
			entry("d3", "What support would make next week easier?"),
		},
	}
}
