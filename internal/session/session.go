// Package session holds the dataset loaded for one invocation together with
// the scorer, and recomputes scores every time a filtered view is requested.
package session

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/KaramelBytes/leadscore-cli/internal/company"
	"github.com/KaramelBytes/leadscore-cli/internal/filter"
	"github.com/KaramelBytes/leadscore-cli/internal/scoring"
)

// Session is the explicit context for scoring requests.
type Session struct {
	dataset *company.Dataset
	scorer  *scoring.Scorer
	log     zerolog.Logger
}

// Query describes one filtered, sorted and limited view.
type Query struct {
	Filter filter.Filter
	Sort   filter.SortKey
	// Limit keeps the top N results; 0 keeps all.
	Limit int
}

// View is the outcome of a Query. Matched counts companies that passed the
// filter before Limit was applied; scores are relative to those companies.
type View struct {
	Query   Query
	Matched int
	Results []scoring.Result
}

// New binds a dataset to a scorer.
func New(ds *company.Dataset, sc *scoring.Scorer, log zerolog.Logger) (*Session, error) {
	if ds == nil {
		return nil, errors.New("dataset is nil")
	}
	if sc == nil {
		return nil, errors.New("scorer is nil")
	}
	return &Session{dataset: ds, scorer: sc, log: log}, nil
}

// Dataset returns the loaded dataset.
func (s *Session) Dataset() *company.Dataset { return s.dataset }

// View filters the dataset, scores the filtered companies against each other,
// then sorts and limits the result.
func (s *Session) View(q Query) (*View, error) {
	if q.Sort == "" {
		q.Sort = filter.SortScore
	}
	matched := q.Filter.Apply(s.dataset.Records)
	results, err := s.scorer.Score(matched)
	if err != nil {
		return nil, fmt.Errorf("score %s: %w", s.dataset.Name, err)
	}
	filter.Sort(results, q.Sort)
	v := &View{Query: q, Matched: len(matched), Results: filter.Limit(results, q.Limit)}
	s.log.Debug().
		Str("dataset", s.dataset.Name).
		Str("filter", q.Filter.String()).
		Int("total", len(s.dataset.Records)).
		Int("matched", v.Matched).
		Int("returned", len(v.Results)).
		Msg("scored view")
	return v, nil
}
