// Package decode runs beam-search decodes against a model and turns the
// winning hypothesis into rendered text, statistics and visualization data.
package decode

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samcharles93/beamdec/internal/beam"
	"github.com/samcharles93/beamdec/internal/logger"
)

// Model is the external sequence model behind the decode-step capability.
// Start returns the initial decoder state and the attention length for one
// input; Step produces candidate continuations for the live hypotheses.
type Model interface {
	Start(ctx context.Context) (beam.State, int, error)
	Step(ctx context.Context, latestTokens []int, states []beam.State, prevCoverage [][]float64) (*beam.StepResult, error)
}

// TokenRemapper is implemented by models whose inputs carry temporary
// out-of-vocabulary ids that must be folded back to a canonical unknown id
// before embedding lookup.
type TokenRemapper interface {
	RemapToken(id int) int
}

// PointerGenerator is implemented by models with a copy mechanism; such
// models report a generation probability each step.
type PointerGenerator interface {
	UsesPointerGen() bool
}

// TokenRenderer maps token ids to display strings. Vocabulary construction
// lives outside this module; callers supply whatever mapping they use.
type TokenRenderer interface {
	TokenString(id int) string
}

// Outcome is the result of decoding a single input.
type Outcome struct {
	ID       string
	Best     *beam.Hypothesis
	Score    float64
	Steps    int
	Duration time.Duration

	// Words is the rendered output without the start token, truncated at the
	// first stop token.
	Words []string
	// Text is Words joined with spaces.
	Text string
}

// Session decodes inputs one at a time with a fixed configuration, keeping
// running score statistics the way an evaluation loop wants them.
type Session struct {
	searcher *beam.Searcher
	model    Model
	renderer TokenRenderer
	log      logger.Logger

	mu     sync.Mutex
	count  int
	scores float64
}

// NewSession builds a decoding session. renderer may be nil when only token
// ids are needed.
func NewSession(cfg beam.Config, model Model, renderer TokenRenderer, log logger.Logger) (*Session, error) {
	if model == nil {
		return nil, fmt.Errorf("decode: model is required")
	}
	searcher, err := beam.NewSearcher(cfg)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if log == nil {
		log = logger.Default()
	}
	return &Session{
		searcher: searcher,
		model:    model,
		renderer: renderer,
		log:      log,
	}, nil
}

// Decode runs beam search for one input and renders the winner. A failure
// aborts this input only; the session remains usable for the next one.
func (s *Session) Decode(ctx context.Context) (*Outcome, error) {
	id := "dec_" + uuid.NewString()
	start := time.Now()

	state, attnLen, err := s.model.Start(ctx)
	if err != nil {
		return nil, fmt.Errorf("decode %s: start: %w", id, err)
	}

	in := beam.Input{
		InitialState: state,
		AttnLen:      attnLen,
		Step:         s.model.Step,
	}
	if r, ok := s.model.(TokenRemapper); ok {
		in.Remap = r.RemapToken
	}
	if p, ok := s.model.(PointerGenerator); ok {
		in.PointerGen = p.UsesPointerGen()
	}

	res, err := s.searcher.Search(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", id, err)
	}

	out := &Outcome{
		ID:       id,
		Best:     res.Best,
		Score:    res.Score,
		Steps:    res.Steps,
		Duration: time.Since(start),
	}
	out.Words = s.renderWords(res.Best)
	out.Text = strings.Join(out.Words, " ")

	s.mu.Lock()
	s.count++
	s.scores += res.Score
	mean := s.scores / float64(s.count)
	s.mu.Unlock()

	s.log.Info("decoded example",
		"decode", id,
		"score", res.Score,
		"mean_score", mean,
		"steps", res.Steps,
		"duration", out.Duration,
	)
	return out, nil
}

// MeanScore returns the mean best-hypothesis score across all decodes so
// far, and the number of decodes.
func (s *Session) MeanScore() (float64, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.count == 0 {
		return 0, 0
	}
	return s.scores / float64(s.count), s.count
}

// renderWords drops the start token, truncates at the first stop token and
// renders the remainder.
func (s *Session) renderWords(h *beam.Hypothesis) []string {
	tokens := h.Tokens()[1:]
	stop := s.searcher.Config().StopToken
	for i, t := range tokens {
		if t == stop {
			tokens = tokens[:i]
			break
		}
	}
	words := make([]string, len(tokens))
	for i, t := range tokens {
		if s.renderer != nil {
			words[i] = s.renderer.TokenString(t)
		} else {
			words[i] = fmt.Sprintf("%d", t)
		}
	}
	return words
}

// SplitSentences groups words into period-terminated sentences, attaching
// the period to the sentence it closes. Trailing words without a period form
// a final sentence.
func SplitSentences(words []string) []string {
	var sents []string
	rest := words
	for len(rest) > 0 {
		end := len(rest)
		for i, w := range rest {
			if w == "." {
				end = i + 1
				break
			}
		}
		sents = append(sents, strings.Join(rest[:end], " "))
		rest = rest[end:]
	}
	return sents
}
