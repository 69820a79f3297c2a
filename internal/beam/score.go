package beam

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Mode selects the scoring function used to rank hypotheses.
type Mode int

const (
	// ModePlain ranks by average log-probability.
	ModePlain Mode = iota
	// ModeSmart ranks by the linguistic heuristic: sentence-start weighted
	// log-probs with pronoun, repeated-n-gram and coverage penalties.
	ModeSmart
)

func (m Mode) String() string {
	switch m {
	case ModePlain:
		return "plain"
	case ModeSmart:
		return "smart"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode converts a string mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "plain", "":
		return ModePlain, nil
	case "smart":
		return ModeSmart, nil
	default:
		return 0, fmt.Errorf("unknown scoring mode %q", s)
	}
}

// IDSet is a membership set of token ids.
type IDSet map[int]struct{}

// NewIDSet builds an IDSet from the given ids.
func NewIDSet(ids ...int) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether id is in the set.
func (s IDSet) Contains(id int) bool {
	_, ok := s[id]
	return ok
}

// Config carries every tunable of the search. It is passed explicitly so that
// decodes with different settings can run in the same process.
type Config struct {
	// BeamSize is the number of live hypotheses carried between steps.
	BeamSize int
	// MaxSteps is the hard cap on decoding steps.
	MaxSteps int
	// MinSteps is the minimum number of steps before a hypothesis may
	// terminate into the results set.
	MinSteps int
	// StartToken seeds every beam slot.
	StartToken int
	// StopToken signals sequence completion.
	StopToken int
	// UnknownThreshold is the free-vocabulary boundary: ids below it are
	// reserved unknown/placeholder tokens.
	UnknownThreshold int
	// Mode selects plain or smart scoring.
	Mode Mode

	// StartSentenceIDs marks tokens that open a sentence (the start token
	// and sentence-ending punctuation). The start token must be a member,
	// otherwise smart scoring has no weight mass to normalize.
	StartSentenceIDs IDSet
	// StopwordIDs are excluded from sentence-start proximity weighting.
	StopwordIDs IDSet
	// PronounIDs are charged a fixed log-prob penalty per occurrence.
	PronounIDs IDSet
}

func (c Config) validate() error {
	if c.BeamSize <= 0 {
		return fmt.Errorf("beam size must be positive, got %d", c.BeamSize)
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("max steps must be positive, got %d", c.MaxSteps)
	}
	if c.MinSteps < 0 || c.MinSteps > c.MaxSteps {
		return fmt.Errorf("min steps must be in [0, %d], got %d", c.MaxSteps, c.MinSteps)
	}
	if c.Mode == ModeSmart && !c.StartSentenceIDs.Contains(c.StartToken) {
		return fmt.Errorf("smart mode requires the start token in StartSentenceIDs")
	}
	return nil
}

// SmartAvgLogProb computes the linguistic quality heuristic: tokens close
// after a sentence boundary are upweighted by 1/(distance+5) within a
// four-token lookahead (stopwords excluded, later sentence starts overwrite
// earlier ones), pronoun positions lose a fixed 0.8 from their log-prob, and
// the result blends the plain mean with the sentence-start weighted average
// at 3:1. A sequence producing no weight mass is a degenerate scoring input.
func (h *Hypothesis) SmartAvgLogProb(cfg Config) (float64, error) {
	n := len(h.tokens)
	weights := make([]float64, n)
	work := append([]float64(nil), h.logProbs...)

	for i, tok := range h.tokens {
		if cfg.StartSentenceIDs.Contains(tok) {
			for j := i + 1; j < n && j < i+5; j++ {
				if !cfg.StopwordIDs.Contains(h.tokens[j]) {
					weights[j] = 1 / float64(j-i+5)
				}
			}
		}
		if cfg.PronounIDs.Contains(tok) {
			work[i] -= pronounPenalty
		}
	}

	sum := floats.Sum(weights)
	if sum == 0 {
		return 0, fmt.Errorf("%w: sentence-start weights sum to zero", ErrDegenerateScore)
	}
	floats.Scale(1/sum, weights)
	sentenceStart := floats.Dot(weights, work)
	mean := floats.Sum(work) / float64(n)

	return 0.75*mean + 0.25*sentenceStart, nil
}

// Score is the smart-mode ranking value: the smart average log-prob minus the
// repeated-n-gram and coverage penalties, or DisqualifiedScore when the
// hypothesis carries an unknown-vocabulary token. The root hypothesis has no
// attention history yet and contributes zero coverage loss.
func (h *Hypothesis) Score(cfg Config) (float64, error) {
	if h.hasUnknownToken(cfg) {
		return DisqualifiedScore, nil
	}
	smart, err := h.SmartAvgLogProb(cfg)
	if err != nil {
		return 0, err
	}
	var cov float64
	if len(h.attnDists) > 0 {
		cov, err = h.CovLoss()
		if err != nil {
			return 0, err
		}
	}
	return smart - h.RepeatedNGramLoss() - cov, nil
}

// scoreFor applies the configured scoring mode to a hypothesis.
func scoreFor(h *Hypothesis, cfg Config) (float64, error) {
	if cfg.Mode == ModeSmart {
		return h.Score(cfg)
	}
	return h.AvgLogProb(cfg), nil
}
