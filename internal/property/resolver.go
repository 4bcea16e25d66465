package property

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/rental-ledger/internal/entity"
)

// DefaultMinScore is the score a candidate must exceed to be accepted.
const DefaultMinScore = 40.0

// Catalog lists the known properties.
type Catalog interface {
	ListProperties(ctx context.Context) ([]*entity.Property, error)
}

// Candidate is the best catalog match for a free-text name.
type Candidate struct {
	PropertyID int     `json:"propertyId"`
	Name       string  `json:"canonicalName"`
	Score      float64 `json:"matchScore"`
	Strategy   string  `json:"strategy"`
	Fallback   bool    `json:"fallback,omitempty"`
}

// Resolver fuzzy-matches property names against the catalog.
type Resolver struct {
	catalog    Catalog
	strategies []Strategy
	series     Series
	minScore   float64
	logger     *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

func WithMinScore(score float64) Option {
	return func(r *Resolver) { r.minScore = score }
}

func WithSeries(s Series) Option {
	return func(r *Resolver) { r.series = s }
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

func NewResolver(catalog Catalog, opts ...Option) *Resolver {
	r := &Resolver{
		catalog:  catalog,
		series:   DefaultSeries,
		minScore: DefaultMinScore,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.strategies = DefaultStrategies(r.series)
	return r
}

// Resolve returns the best candidate for name, or nil when nothing in the
// catalog is close enough.
func (r *Resolver) Resolve(ctx context.Context, name string) (*Candidate, error) {
	props, err := r.catalog.ListProperties(ctx)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}

	best := r.Best(name, props)
	if best == nil {
		r.logger.Info("property.resolve.miss", "query", name, "catalog_size", len(props))
		return nil, nil
	}
	r.logger.Info("property.resolve.ok",
		"query", name,
		"property_id", best.PropertyID,
		"property_name", best.Name,
		"score", best.Score,
		"strategy", best.Strategy,
		"fallback", best.Fallback,
	)
	return best, nil
}

// Best ranks props against name without touching the store.
func (r *Resolver) Best(name string, props []*entity.Property) *Candidate {
	query := NormalizeName(name)
	if query == "" {
		return nil
	}

	var (
		best         *Candidate
		bestExplicit bool
	)
	for _, p := range props {
		if p == nil {
			continue
		}
		cand := NormalizeName(p.Name)
		score, strategy := r.score(query, cand)
		if score <= 0 {
			continue
		}
		sn, inSeries := r.series.Parse(cand)
		explicit := inSeries && sn.Explicit
		if best == nil || score > best.Score || (score == best.Score && explicit && !bestExplicit) {
			best = &Candidate{PropertyID: p.ID, Name: p.Name, Score: score, Strategy: strategy}
			bestExplicit = explicit
		}
	}
	if best != nil && best.Score > r.minScore {
		return best
	}

	// last resort: any catalog entry of the same family
	qs, ok := r.series.Parse(query)
	if !ok {
		return nil
	}
	for _, p := range props {
		if p == nil {
			continue
		}
		if cs, ok := r.series.Parse(NormalizeName(p.Name)); ok && cs.Family == qs.Family {
			score := 0.0
			if best != nil && best.PropertyID == p.ID {
				score = best.Score
			}
			return &Candidate{PropertyID: p.ID, Name: p.Name, Score: score, Strategy: "series_fallback", Fallback: true}
		}
	}
	return nil
}

func (r *Resolver) score(query, cand string) (float64, string) {
	var (
		top     float64
		topName string
	)
	for _, s := range r.strategies {
		score, decisive := s.Score(query, cand)
		if decisive {
			return score, s.Name()
		}
		if score > top {
			top, topName = score, s.Name()
		}
	}
	return top, topName
}
