package decode

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/goccy/go-json"
)

// AttnVis is the datafile consumed by the in-browser attention visualizer.
// Probabilities are linear (exp of the hypothesis log-probs); strings are
// HTML-escaped so the visualizer can inline them.
type AttnVis struct {
	ArticleList []string    `json:"article_lst"`
	DecodedList []string    `json:"decoded_lst"`
	AbstractStr string      `json:"abstract_str"`
	AttnDists   [][]float64 `json:"attn_dists"`
	Probs       []float64   `json:"probs"`
	PGens       []float64   `json:"p_gens"`
}

// WriteAttnVis writes the visualization document for a decode outcome.
// articleWords is the tokenized source text and abstract the reference
// summary; either may be empty.
func WriteAttnVis(w io.Writer, articleWords []string, abstract string, out *Outcome) error {
	if out == nil || out.Best == nil {
		return fmt.Errorf("attnvis: missing decode outcome")
	}

	logProbs := out.Best.LogProbs()
	probs := make([]float64, len(logProbs))
	for i, lp := range logProbs {
		probs[i] = math.Exp(lp)
	}

	doc := AttnVis{
		ArticleList: htmlSafeAll(articleWords),
		DecodedList: htmlSafeAll(out.Words),
		AbstractStr: htmlSafe(abstract),
		AttnDists:   out.Best.AttnDists(),
		Probs:       probs,
		PGens:       out.Best.PGens(),
	}

	enc := json.NewEncoder(w)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("attnvis: encode: %w", err)
	}
	return nil
}

// htmlSafe neutralizes angle brackets so token strings cannot interfere with
// the visualizer's markup.
func htmlSafe(s string) string {
	s = strings.ReplaceAll(s, "<", "&lt;")
	return strings.ReplaceAll(s, ">", "&gt;")
}

func htmlSafeAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = htmlSafe(w)
	}
	return out
}
