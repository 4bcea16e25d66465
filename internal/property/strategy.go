package property

import "strings"

// Strategy scores a normalized query against a normalized catalog name.
// A decisive score replaces every other strategy's score for that pair.
type Strategy interface {
	Name() string
	Score(query, candidate string) (score float64, decisive bool)
}

// DefaultStrategies returns the scoring cascade: series override first, then
// the generic strategies whose maximum is taken.
func DefaultStrategies(series Series) []Strategy {
	return []Strategy{
		SeriesStrategy{Series: series},
		ExactStrategy{},
		ContainmentStrategy{},
		TokenOverlapStrategy{},
	}
}

// ExactStrategy scores identical names 100.
type ExactStrategy struct{}

func (ExactStrategy) Name() string { return "exact" }

func (ExactStrategy) Score(q, c string) (float64, bool) {
	if q != "" && q == c {
		return 100, false
	}
	return 0, false
}

// ContainmentStrategy scores 70 scaled by the length ratio when one name
// contains the other.
type ContainmentStrategy struct{}

func (ContainmentStrategy) Name() string { return "containment" }

func (ContainmentStrategy) Score(q, c string) (float64, bool) {
	if q == "" || c == "" || q == c {
		return 0, false
	}
	short, long := q, c
	if len(short) > len(long) {
		short, long = long, short
	}
	if !strings.Contains(long, short) {
		return 0, false
	}
	return 70 * float64(len(short)) / float64(len(long)), false
}

// TokenOverlapStrategy scores 40 scaled by the share of common words.
type TokenOverlapStrategy struct{}

func (TokenOverlapStrategy) Name() string { return "token_overlap" }

func (TokenOverlapStrategy) Score(q, c string) (float64, bool) {
	qt, ct := tokens(q), tokens(c)
	if len(qt) == 0 || len(ct) == 0 {
		return 0, false
	}
	seen := make(map[string]bool, len(ct))
	for _, t := range ct {
		seen[t] = true
	}
	shared := 0
	counted := make(map[string]bool, len(qt))
	for _, t := range qt {
		if seen[t] && !counted[t] {
			shared++
			counted[t] = true
		}
	}
	return 40 * float64(shared) / float64(max(len(qt), len(ct))), false
}

// SeriesStrategy overrides generic scoring when query and candidate belong to
// the same numbered family: same written suffix 100, same suffix through the
// default 80, different suffix 60.
type SeriesStrategy struct {
	Series Series
}

func (SeriesStrategy) Name() string { return "series" }

func (s SeriesStrategy) Score(q, c string) (float64, bool) {
	qs, ok := s.Series.Parse(q)
	if !ok {
		return 0, false
	}
	cs, ok := s.Series.Parse(c)
	if !ok || cs.Family != qs.Family {
		return 0, false
	}
	switch {
	case qs.Suffix != cs.Suffix:
		return 60, true
	case qs.Explicit && cs.Explicit:
		return 100, true
	default:
		return 80, true
	}
}
