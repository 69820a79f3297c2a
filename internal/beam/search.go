package beam

import (
	"context"
	"fmt"
)

// StepResult holds one decode step's outputs for the current live set.
// Every per-hypothesis slice must match the number of hypotheses passed to
// the step; each candidate row must carry at least 2*BeamSize entries.
type StepResult struct {
	// TopIDs[i][j] is the j-th best candidate next token for hypothesis i.
	TopIDs [][]int
	// TopLogProbs matches TopIDs with the model's log-probabilities.
	TopLogProbs [][]float64
	// States[i] is the updated decoder state for hypothesis i, shared by all
	// of its expansions.
	States []State
	// AttnDists[i] is the attention distribution produced at this step.
	AttnDists [][]float64
	// PGens[i] is the generation probability, or nil collectively when the
	// model has no copy mechanism.
	PGens []float64
	// Coverage[i] is the updated coverage vector.
	Coverage [][]float64
}

// StepFunc is the single external capability the search depends on: given the
// latest token, decoder state and coverage vector of each live hypothesis,
// produce the top candidate continuations plus updated per-hypothesis state.
// It must be deterministic for reproducible decodes.
type StepFunc func(ctx context.Context, latestTokens []int, states []State, prevCoverage [][]float64) (*StepResult, error)

// Input binds a search invocation to a concrete model.
type Input struct {
	// InitialState is the decoder state shared by every beam slot at step 0.
	InitialState State
	// AttnLen is the fixed length of attention and coverage vectors.
	AttnLen int
	// Step produces candidate continuations; failures abort the search.
	Step StepFunc
	// Remap, when set, maps input-specific placeholder token ids back to a
	// canonical id the model knows before each step.
	Remap func(int) int
	// PointerGen records generation probabilities on every extension.
	PointerGen bool
}

// Result is the winning hypothesis with its score under the active mode.
type Result struct {
	Best  *Hypothesis
	Score float64
	Steps int
}

// Searcher runs beam search decodes under a fixed configuration.
type Searcher struct {
	cfg Config
}

// NewSearcher validates the configuration and returns a Searcher.
func NewSearcher(cfg Config) (*Searcher, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Searcher{cfg: cfg}, nil
}

// Config returns the searcher's configuration.
func (s *Searcher) Config() Config { return s.cfg }

// Search decodes one input. It keeps BeamSize live hypotheses, expands each
// by the top 2*BeamSize candidates per step, and collects hypotheses that
// emit the stop token after MinSteps into the results set. The loop ends at
// MaxSteps or once 4*BeamSize results exist; if no hypothesis ever finished,
// the live set stands in for the results. All beam slots start identical, so
// only the first hypothesis is expanded on step 0.
func (s *Searcher) Search(ctx context.Context, in Input) (*Result, error) {
	if in.Step == nil {
		return nil, fmt.Errorf("decode step capability is required")
	}
	cfg := s.cfg

	hyps := make([]*Hypothesis, cfg.BeamSize)
	for i := range hyps {
		hyps[i] = NewRoot(cfg.StartToken, in.InitialState, in.AttnLen, in.PointerGen)
	}
	var results []*Hypothesis

	steps := 0
	for steps < cfg.MaxSteps && len(results) < 4*cfg.BeamSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		latest := make([]int, len(hyps))
		states := make([]State, len(hyps))
		prevCoverage := make([][]float64, len(hyps))
		for i, h := range hyps {
			t := h.LatestToken()
			if in.Remap != nil {
				t = in.Remap(t)
			}
			latest[i] = t
			states[i] = h.state
			prevCoverage[i] = h.coverage
		}

		res, err := in.Step(ctx, latest, states, prevCoverage)
		if err != nil {
			return nil, fmt.Errorf("decode step %d: %w", steps, err)
		}
		if err := validateStep(res, len(hyps), cfg.BeamSize); err != nil {
			return nil, fmt.Errorf("decode step %d: %w", steps, err)
		}

		// All beam slots are identical at step 0; expanding more than the
		// first would fill the beam with duplicates.
		numOrig := len(hyps)
		if steps == 0 {
			numOrig = 1
		}
		allHyps := make([]*Hypothesis, 0, numOrig*2*cfg.BeamSize)
		for i := 0; i < numOrig; i++ {
			h := hyps[i]
			var pGen float64
			if res.PGens != nil {
				pGen = res.PGens[i]
			}
			for j := 0; j < 2*cfg.BeamSize; j++ {
				allHyps = append(allHyps, h.Extend(
					res.TopIDs[i][j],
					res.TopLogProbs[i][j],
					res.States[i],
					res.AttnDists[i],
					pGen,
					res.Coverage[i],
				))
			}
		}

		ranked, err := SortHyps(allHyps, cfg)
		if err != nil {
			return nil, err
		}

		hyps = hyps[:0]
		for _, h := range ranked {
			if h.LatestToken() == cfg.StopToken {
				// Too-short completions are silently discarded.
				if steps >= cfg.MinSteps {
					results = append(results, h)
				}
			} else if h.LatestToken() >= cfg.UnknownThreshold {
				hyps = append(hyps, h)
			}
			if len(hyps) == cfg.BeamSize || len(results) == 4*cfg.BeamSize {
				break
			}
		}

		steps++

		if len(hyps) == 0 {
			break
		}
	}

	if len(results) == 0 {
		results = hyps
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("search ended with no hypotheses")
	}

	ranked, err := SortHyps(results, cfg)
	if err != nil {
		return nil, err
	}
	best := ranked[0]
	score, err := scoreFor(best, cfg)
	if err != nil {
		return nil, err
	}
	return &Result{Best: best, Score: score, Steps: steps}, nil
}

func validateStep(res *StepResult, numHyps, beamSize int) error {
	if res == nil {
		return fmt.Errorf("%w: nil step result", ErrMalformedHypothesis)
	}
	if len(res.TopIDs) != numHyps || len(res.TopLogProbs) != numHyps {
		return fmt.Errorf("%w: candidates for %d hypotheses, expected %d", ErrMalformedHypothesis, len(res.TopIDs), numHyps)
	}
	if len(res.States) != numHyps || len(res.AttnDists) != numHyps || len(res.Coverage) != numHyps {
		return fmt.Errorf("%w: per-hypothesis outputs do not match %d hypotheses", ErrMalformedHypothesis, numHyps)
	}
	if res.PGens != nil && len(res.PGens) != numHyps {
		return fmt.Errorf("%w: %d p_gens for %d hypotheses", ErrMalformedHypothesis, len(res.PGens), numHyps)
	}
	for i := range res.TopIDs {
		if len(res.TopIDs[i]) < 2*beamSize || len(res.TopLogProbs[i]) != len(res.TopIDs[i]) {
			return fmt.Errorf("%w: hypothesis %d has %d candidates, need %d", ErrMalformedHypothesis, i, len(res.TopIDs[i]), 2*beamSize)
		}
	}
	return nil
}
