package toy

import (
	"context"
	"fmt"

	"github.com/samcharles93/beamdec/internal/beam"
)

// Decoder is a minimal deterministic sequence model used for testing and for
// the CLI demo. It has no weights: candidate tokens and log-probabilities
// are derived arithmetically from the latest token, the step index and a
// seed, so identical inputs always produce identical decodes. From StopStep
// on, the stop token is offered as the top candidate.
type Decoder struct {
	// Vocab is the total vocabulary size, reserved ids included.
	Vocab int
	// AttnLen is the attention/coverage vector length.
	AttnLen int
	// Fanout is the number of candidates returned per hypothesis; it must be
	// at least 2*BeamSize of the search using this model.
	Fanout int
	// StopToken and Threshold mirror the search configuration: ids below
	// Threshold are reserved.
	StopToken int
	Threshold int
	// StopStep is the zero-based step from which the stop token becomes the
	// top candidate. Negative means never.
	StopStep int
	// Seed perturbs the candidate schedule.
	Seed int
	// PointerGen makes the model report generation probabilities.
	PointerGen bool
}

// New returns a toy decoder sized for the given search configuration.
func New(cfg beam.Config, stopStep int, seed int) *Decoder {
	return &Decoder{
		Vocab:     cfg.UnknownThreshold + 64,
		AttnLen:   8,
		Fanout:    2 * cfg.BeamSize,
		StopToken: cfg.StopToken,
		Threshold: cfg.UnknownThreshold,
		StopStep:  stopStep,
		Seed:      seed,
	}
}

type stepState struct {
	step int
}

// Start returns the shared initial decoder state and the attention length.
func (d *Decoder) Start(ctx context.Context) (beam.State, int, error) {
	if d.Vocab-d.Threshold < d.Fanout {
		return nil, 0, fmt.Errorf("toy: free vocabulary %d smaller than fanout %d", d.Vocab-d.Threshold, d.Fanout)
	}
	return stepState{}, d.AttnLen, nil
}

// Step produces Fanout candidates per hypothesis. The best free-vocabulary
// candidate walks the vocabulary as a function of the latest token, so two
// hypotheses with different histories diverge immediately.
func (d *Decoder) Step(ctx context.Context, latestTokens []int, states []beam.State, prevCoverage [][]float64) (*beam.StepResult, error) {
	n := len(latestTokens)
	res := &beam.StepResult{
		TopIDs:      make([][]int, n),
		TopLogProbs: make([][]float64, n),
		States:      make([]beam.State, n),
		AttnDists:   make([][]float64, n),
		Coverage:    make([][]float64, n),
	}
	if d.PointerGen {
		res.PGens = make([]float64, n)
	}

	span := d.Vocab - d.Threshold
	for i, latest := range latestTokens {
		st, ok := states[i].(stepState)
		if !ok {
			return nil, fmt.Errorf("toy: unexpected state %T", states[i])
		}

		ids := make([]int, d.Fanout)
		lps := make([]float64, d.Fanout)
		for j := 0; j < d.Fanout; j++ {
			ids[j] = d.Threshold + (latest*31+st.step*7+d.Seed+j)%span
			lps[j] = -0.1*float64(j+1) - 0.01*float64((latest+j)%5)
		}
		if d.StopStep >= 0 && st.step >= d.StopStep {
			ids[0] = d.StopToken
			lps[0] = -0.05
		}
		res.TopIDs[i] = ids
		res.TopLogProbs[i] = lps

		attn := make([]float64, d.AttnLen)
		peak := (st.step + latest) % d.AttnLen
		rest := 0.3 / float64(d.AttnLen-1)
		for k := range attn {
			attn[k] = rest
		}
		attn[peak] = 0.7
		res.AttnDists[i] = attn

		cov := make([]float64, d.AttnLen)
		copy(cov, prevCoverage[i])
		for k := range cov {
			cov[k] += attn[k]
		}
		res.Coverage[i] = cov

		res.States[i] = stepState{step: st.step + 1}
		if d.PointerGen {
			res.PGens[i] = 0.5 + 0.05*float64(st.step%5)
		}
	}
	return res, nil
}

// UsesPointerGen reports whether the model has a copy mechanism.
func (d *Decoder) UsesPointerGen() bool { return d.PointerGen }
