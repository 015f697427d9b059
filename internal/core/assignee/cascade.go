package assignee

// Cascade runs strategies in order
type Cascade struct {
	strategies []Strategy
	canon      *Canonicalizer
}

// DefaultStrategies is the standard order with its thresholds
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: MethodSelf, Threshold: 0.9, Run: Self},
		{Name: MethodExplicit, Threshold: 0.6, Run: Explicit},
		{Name: MethodModal, Threshold: 0.6, Run: Modal},
		{Name: MethodCanonical, Threshold: 0.7, Run: Canonical},
		{Name: MethodFallback, Threshold: 0, Run: Fallback},
	}
}

// New returns the default cascade. canon may be nil
func New(canon *Canonicalizer) *Cascade {
	return NewCascade(canon, DefaultStrategies()...)
}

// NewCascade builds a cascade from explicit strategies. Fallback is appended
// when missing so Detect always yields an assignee
func NewCascade(canon *Canonicalizer, strategies ...Strategy) *Cascade {
	hasFallback := false
	for _, s := range strategies {
		if s.Name == MethodFallback {
			hasFallback = true
		}
	}
	if !hasFallback {
		strategies = append(strategies, Strategy{Name: MethodFallback, Run: Fallback})
	}
	return &Cascade{strategies: strategies, canon: canon}
}

// Canon returns the cascade's canonicalizer
func (c *Cascade) Canon() *Canonicalizer { return c.canon }

// Detect returns the first match that reaches its strategy's threshold
func (c *Cascade) Detect(description, speaker string, participants []string) Match {
	in := Input{Description: description, Speaker: speaker, Participants: participants, Canon: c.canon}
	for _, s := range c.strategies {
		if s.Run == nil {
			continue
		}
		if m := s.Run(in); m != nil && m.Confidence >= s.Threshold {
			return *m
		}
	}
	return Match{Assignee: TBD, Method: MethodFallback}
}
