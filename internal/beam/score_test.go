package beam

import (
	"errors"
	"math"
	"testing"
)

// TestSmartAvgLogProb works through the heuristic by hand:
// token 0 opens a sentence, so positions 1..4 gain weight 1/(dist+5) unless
// they hold stopwords; pronoun positions lose 0.8 log-prob; the result is
// 0.75*mean + 0.25*(weighted average).
func TestSmartAvgLogProb(t *testing.T) {
	cfg := Config{
		StartSentenceIDs: NewIDSet(0),
		StopwordIDs:      NewIDSet(11),
		PronounIDs:       NewIDSet(12),
	}

	h := mustHyp(t,
		[]int{0, 10, 11, 12},
		[]float64{0, -1, -2, -3},
		[][]float64{{1, 0}, {0, 1}, {0.5, 0.5}},
		nil,
		[]float64{1.5, 1.5},
	)

	got, err := h.SmartAvgLogProb(cfg)
	if err != nil {
		t.Fatalf("SmartAvgLogProb: %v", err)
	}

	// weights: w[1]=1/6, w[3]=1/8 (position 2 is a stopword); normalized
	// to 4/7 and 3/7. Pronoun at position 3: -3 becomes -3.8.
	// weighted = 4/7*-1 + 3/7*-3.8 = -2.2; mean = -6.8/4 = -1.7.
	want := 0.75*(-1.7) + 0.25*(-2.2)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// TestSmartAvgLogProbOverlappingWindows: when two sentence starts cover the
// same position, the later one wins.
func TestSmartAvgLogProbOverlappingWindows(t *testing.T) {
	cfg := Config{StartSentenceIDs: NewIDSet(0, 9)}

	// Position 3 is inside both windows: weight from i=0 would be 1/8,
	// but the sentence start at i=2 overwrites it with 1/6.
	h := mustHyp(t,
		[]int{0, 10, 9, 13},
		[]float64{0, -1, -1, -4},
		[][]float64{{1}, {1}, {1}},
		nil,
		[]float64{3},
	)

	got, err := h.SmartAvgLogProb(cfg)
	if err != nil {
		t.Fatalf("SmartAvgLogProb: %v", err)
	}

	// weights: w[1]=1/6, w[2]=1/7 (from i=0), w[3]=1/6 (i=2 overwrites 1/8).
	wSum := 1.0/6 + 1.0/7 + 1.0/6
	weighted := ((1.0/6)*(-1) + (1.0/7)*(-1) + (1.0/6)*(-4)) / wSum
	mean := -6.0 / 4
	want := 0.75*mean + 0.25*weighted
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// TestSmartAvgLogProbDegenerate: a sequence with no sentence-start token has
// zero weight mass, which must surface as an error rather than a NaN.
func TestSmartAvgLogProbDegenerate(t *testing.T) {
	cfg := Config{StartSentenceIDs: NewIDSet(99)}
	h := mustHyp(t, []int{0, 10}, []float64{0, -1}, [][]float64{{1}}, nil, []float64{1})
	if _, err := h.SmartAvgLogProb(cfg); !errors.Is(err, ErrDegenerateScore) {
		t.Fatalf("got %v, want ErrDegenerateScore", err)
	}
}

// TestScoreCombinesPenalties: score = smart average minus n-gram and
// coverage losses, with the unknown-token sentinel short-circuiting first.
func TestScoreCombinesPenalties(t *testing.T) {
	cfg := Config{
		StopToken:        1,
		UnknownThreshold: 2,
		StartSentenceIDs: NewIDSet(0),
	}

	h := mustHyp(t,
		[]int{0, 10, 11},
		[]float64{0, -1, -1},
		[][]float64{{0.6, 0.4}, {0.5, 0.5}},
		nil,
		[]float64{1.1, 0.9},
	)

	smart, err := h.SmartAvgLogProb(cfg)
	if err != nil {
		t.Fatalf("SmartAvgLogProb: %v", err)
	}
	got, err := h.Score(cfg)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	want := smart - 0.45 // no repeated 3-gram; coverage overlap costs 0.45
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("got %v, want %v", got, want)
	}

	unk := mustHyp(t,
		[]int{0, 0, 11},
		[]float64{0, -1, -1},
		[][]float64{{0.6, 0.4}, {0.5, 0.5}},
		nil,
		[]float64{1.1, 0.9},
	)
	got, err = unk.Score(cfg)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if got != DisqualifiedScore {
		t.Fatalf("unknown token: got %v, want sentinel", got)
	}
}

// TestParseMode maps flag strings onto scoring modes.
func TestParseMode(t *testing.T) {
	if m, err := ParseMode("smart"); err != nil || m != ModeSmart {
		t.Fatalf("smart: got %v, %v", m, err)
	}
	if m, err := ParseMode(""); err != nil || m != ModePlain {
		t.Fatalf("empty: got %v, %v", m, err)
	}
	if _, err := ParseMode("greedy"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
