package toy

// Renderer maps toy token ids onto a small fixed word list so demo decodes
// read as text. Reserved ids below the threshold render as markers.
type Renderer struct {
	Threshold int
	StopToken int
}

var words = []string{
	"the", "court", "ruled", "on", "friday", "that", "officials", "must",
	"release", "records", ".", "lawyers", "said", "they", "would", "appeal",
	"within", "days", "a", "spokesman", "declined", "to", "comment", "on",
	"pending", "cases", ".", "judges", "cited", "earlier", "findings", "in",
	"their", "opinion", "and", "ordered", "a", "new", "review", ".",
}

// TokenString renders one token id.
func (r Renderer) TokenString(id int) string {
	if id < r.Threshold {
		if id == r.StopToken {
			return "[STOP]"
		}
		return "[UNK]"
	}
	return words[(id-r.Threshold)%len(words)]
}

// WordIDs returns the ids in the first vocabulary cycle that render as any of
// the given words.
func (r Renderer) WordIDs(want ...string) []int {
	var ids []int
	for i, w := range words {
		for _, target := range want {
			if w == target {
				ids = append(ids, r.Threshold+i)
				break
			}
		}
	}
	return ids
}
