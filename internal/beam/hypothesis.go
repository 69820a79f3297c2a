package beam

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	// DisqualifiedScore is returned by the scoring functions for hypotheses
	// containing unknown-vocabulary tokens. It is a sentinel rather than an
	// error so that disqualified hypotheses stay sortable next to valid ones.
	DisqualifiedScore = -1e6

	// repeatedNGramPenalty is charged when any 3-gram repeats.
	repeatedNGramPenalty = 1e6

	disallowedNGram = 3

	pronounPenalty = 0.8
)

// State is an opaque decoder state handle. The search core never inspects it;
// it only threads it between a hypothesis and the decode-step capability.
type State any

// Hypothesis is one candidate output sequence at a point in the search.
// It is an immutable value: Extend returns a new Hypothesis and never touches
// the parent, so branching search needs no defensive copies.
type Hypothesis struct {
	tokens    []int
	logProbs  []float64
	state     State
	attnDists [][]float64
	pGens     []float64 // nil when the model has no copy mechanism
	coverage  []float64

	pointerGen bool
}

// NewRoot returns the hypothesis every beam slot starts from: a single start
// token with log-prob zero, the externally supplied initial decoder state,
// empty attention history and a zero coverage vector of attnLen positions.
// pointerGen controls whether generation probabilities are recorded on
// extension.
func NewRoot(startToken int, state State, attnLen int, pointerGen bool) *Hypothesis {
	return &Hypothesis{
		tokens:     []int{startToken},
		logProbs:   []float64{0},
		state:      state,
		coverage:   make([]float64, attnLen),
		pointerGen: pointerGen,
	}
}

// New builds a hypothesis from complete histories, enforcing the structural
// invariants: len(tokens) == len(logProbs) == len(attnDists)+1, pGens nil or
// the same length as attnDists, and every attention vector the same length
// as coverage.
func New(tokens []int, logProbs []float64, state State, attnDists [][]float64, pGens []float64, coverage []float64) (*Hypothesis, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty token sequence", ErrMalformedHypothesis)
	}
	if len(tokens) != len(logProbs) {
		return nil, fmt.Errorf("%w: %d tokens but %d log-probs", ErrMalformedHypothesis, len(tokens), len(logProbs))
	}
	if len(attnDists) != len(tokens)-1 {
		return nil, fmt.Errorf("%w: %d tokens but %d attention distributions", ErrMalformedHypothesis, len(tokens), len(attnDists))
	}
	if pGens != nil && len(pGens) != len(attnDists) {
		return nil, fmt.Errorf("%w: %d attention distributions but %d p_gens", ErrMalformedHypothesis, len(attnDists), len(pGens))
	}
	for i, a := range attnDists {
		if len(a) != len(coverage) {
			return nil, fmt.Errorf("%w: attention %d has length %d, coverage has %d", ErrMalformedHypothesis, i, len(a), len(coverage))
		}
	}
	return &Hypothesis{
		tokens:     append([]int(nil), tokens...),
		logProbs:   append([]float64(nil), logProbs...),
		state:      state,
		attnDists:  cloneVecs(attnDists),
		pGens:      append([]float64(nil), pGens...),
		coverage:   append([]float64(nil), coverage...),
		pointerGen: pGens != nil,
	}, nil
}

// Extend returns a new hypothesis with the step's token, log-prob, attention
// distribution and generation probability appended, and the state and
// coverage replaced outright by the supplied values.
func (h *Hypothesis) Extend(token int, logProb float64, state State, attnDist []float64, pGen float64, coverage []float64) *Hypothesis {
	child := &Hypothesis{
		tokens:     appendInt(h.tokens, token),
		logProbs:   appendFloat(h.logProbs, logProb),
		state:      state,
		attnDists:  appendVec(h.attnDists, attnDist),
		coverage:   append([]float64(nil), coverage...),
		pointerGen: h.pointerGen,
	}
	if h.pointerGen {
		child.pGens = appendFloat(h.pGens, pGen)
	}
	return child
}

// LatestToken returns the last token of the sequence.
func (h *Hypothesis) LatestToken() int {
	return h.tokens[len(h.tokens)-1]
}

// Len returns the number of tokens, including the start token.
func (h *Hypothesis) Len() int { return len(h.tokens) }

// Tokens returns a copy of the token sequence.
func (h *Hypothesis) Tokens() []int { return append([]int(nil), h.tokens...) }

// LogProbs returns a copy of the per-token log-probabilities.
func (h *Hypothesis) LogProbs() []float64 { return append([]float64(nil), h.logProbs...) }

// AttnDists returns a copy of the per-step attention distributions.
func (h *Hypothesis) AttnDists() [][]float64 { return cloneVecs(h.attnDists) }

// PGens returns a copy of the per-step generation probabilities, or nil when
// the model has no copy mechanism.
func (h *Hypothesis) PGens() []float64 {
	if h.pGens == nil {
		return nil
	}
	return append([]float64(nil), h.pGens...)
}

// Coverage returns a copy of the running coverage vector.
func (h *Hypothesis) Coverage() []float64 { return append([]float64(nil), h.coverage...) }

// StateHandle returns the opaque decoder state owned by this hypothesis.
func (h *Hypothesis) StateHandle() State { return h.state }

// hasUnknownToken reports whether the hypothesis carries a token the model
// cannot interpret: any interior token below the free-vocabulary threshold,
// or a final token below the threshold that is not the stop token.
func (h *Hypothesis) hasUnknownToken(cfg Config) bool {
	for i := 1; i < len(h.tokens)-1; i++ {
		if h.tokens[i] < cfg.UnknownThreshold {
			return true
		}
	}
	last := h.LatestToken()
	return last < cfg.UnknownThreshold && last != cfg.StopToken
}

// AvgLogProb returns the plain quality score: the sum of log-probs divided by
// the token count (including the start token), or DisqualifiedScore when the
// hypothesis contains an unknown-vocabulary token.
func (h *Hypothesis) AvgLogProb(cfg Config) float64 {
	if h.hasUnknownToken(cfg) {
		return DisqualifiedScore
	}
	return floats.Sum(h.logProbs) / float64(len(h.tokens))
}

// RepeatedNGramLoss returns repeatedNGramPenalty if any contiguous 3-gram of
// tokens occurs twice, scanning in order and short-circuiting on the first
// repeat, and 0 otherwise.
func (h *Hypothesis) RepeatedNGramLoss() float64 {
	if len(h.tokens) < disallowedNGram {
		return 0
	}
	seen := make(map[[disallowedNGram]int]struct{}, len(h.tokens))
	for i := 0; i+disallowedNGram <= len(h.tokens); i++ {
		var gram [disallowedNGram]int
		copy(gram[:], h.tokens[i:i+disallowedNGram])
		if _, ok := seen[gram]; ok {
			return repeatedNGramPenalty
		}
		seen[gram] = struct{}{}
	}
	return 0
}

// CovLoss replays the attention history against a running coverage vector
// that starts at zero: each step contributes the sum of the element-wise
// minimum of its attention distribution and the coverage so far, after which
// the distribution is added into the coverage. The result is the mean
// per-step loss. A hypothesis with no attention history is malformed here.
func (h *Hypothesis) CovLoss() (float64, error) {
	if len(h.attnDists) == 0 {
		return 0, fmt.Errorf("%w: coverage loss needs at least one attention distribution", ErrMalformedHypothesis)
	}
	coverage := make([]float64, len(h.attnDists[0]))
	var total float64
	for _, a := range h.attnDists {
		for k, v := range a {
			total += math.Min(v, coverage[k])
		}
		floats.Add(coverage, a)
	}
	return total / float64(len(h.attnDists)), nil
}

// AvgTopAttn returns the mean, over all steps, of each attention
// distribution's maximum element. Not used by scoring; kept for diagnostics.
func (h *Hypothesis) AvgTopAttn() (float64, error) {
	if len(h.attnDists) == 0 {
		return 0, fmt.Errorf("%w: no attention distributions", ErrMalformedHypothesis)
	}
	var total float64
	for _, a := range h.attnDists {
		total += floats.Max(a)
	}
	return total / float64(len(h.attnDists)), nil
}

func appendInt(s []int, v int) []int {
	out := make([]int, len(s)+1)
	copy(out, s)
	out[len(s)] = v
	return out
}

func appendFloat(s []float64, v float64) []float64 {
	out := make([]float64, len(s)+1)
	copy(out, s)
	out[len(s)] = v
	return out
}

func appendVec(s [][]float64, v []float64) [][]float64 {
	out := make([][]float64, len(s)+1)
	copy(out, s)
	out[len(s)] = append([]float64(nil), v...)
	return out
}

func cloneVecs(s [][]float64) [][]float64 {
	if s == nil {
		return nil
	}
	out := make([][]float64, len(s))
	for i, v := range s {
		out[i] = append([]float64(nil), v...)
	}
	return out
}
