package beam

import "sort"

// SortHyps returns the hypotheses ordered by descending score under the
// configured mode. The sort is stable: hypotheses with equal scores keep
// their relative input order. The input slice is left untouched. A scoring
// failure (degenerate smart weights) is surfaced instead of feeding NaNs
// into the ordering.
func SortHyps(hyps []*Hypothesis, cfg Config) ([]*Hypothesis, error) {
	scores := make([]float64, len(hyps))
	for i, h := range hyps {
		s, err := scoreFor(h, cfg)
		if err != nil {
			return nil, err
		}
		scores[i] = s
	}

	idx := make([]int, len(hyps))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})

	out := make([]*Hypothesis, len(hyps))
	for i, j := range idx {
		out[i] = hyps[j]
	}
	return out, nil
}
