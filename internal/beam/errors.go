package beam

import "errors"

var (
	// ErrMalformedHypothesis reports a structural violation: mismatched
	// sequence lengths on construction, or a coverage computation requested
	// on a hypothesis with no attention history.
	ErrMalformedHypothesis = errors.New("malformed hypothesis")

	// ErrDegenerateScore reports a zero-sum sentence-start weight vector in
	// the smart scoring heuristic.
	ErrDegenerateScore = errors.New("degenerate scoring input")
)
