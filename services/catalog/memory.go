package catalog

import (
	"context"

	"github.com/sahilchouksey/degreefyd-api/model"
)

// SliceCorpus evaluates queries over an in-memory slice. It is the reference
// implementation the store adapters are tested against.
type SliceCorpus struct {
	colleges []model.College
}

// NewSliceCorpus wraps colleges. The slice is not copied; callers that keep
// mutating it must pass a snapshot.
func NewSliceCorpus(colleges []model.College) *SliceCorpus {
	return &SliceCorpus{colleges: colleges}
}

func (s *SliceCorpus) Count(_ context.Context, filter Filter) (int64, error) {
	var n int64
	for i := range s.colleges {
		if filter.Match(&s.colleges[i]) {
			n++
		}
	}
	return n, nil
}

func (s *SliceCorpus) Find(_ context.Context, filter Filter, key SortKey, window Window) ([]model.College, error) {
	matched := make([]model.College, 0, len(s.colleges))
	for i := range s.colleges {
		if filter.Match(&s.colleges[i]) {
			matched = append(matched, s.colleges[i].Clone())
		}
	}
	Sort(matched, key)
	return window.Apply(matched), nil
}
