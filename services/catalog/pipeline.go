package catalog

import (
	"context"
	"fmt"

	"github.com/sahilchouksey/degreefyd-api/model"
)

// Corpus is a queryable set of colleges. Implementations must return the same
// members, in the same order, that SliceCorpus returns for identical data.
type Corpus interface {
	Count(ctx context.Context, filter Filter) (int64, error)
	Find(ctx context.Context, filter Filter, key SortKey, window Window) ([]model.College, error)
}

// Run executes a listing request against a corpus
func Run(ctx context.Context, corpus Corpus, scope Scope, d Descriptor) (Page, error) {
	filter := scope.Gate(d.Filter())

	total, err := corpus.Count(ctx, filter)
	if err != nil {
		return Page{}, fmt.Errorf("count colleges: %w", err)
	}

	page := Page{
		Data:       []model.College{},
		Total:      total,
		Page:       d.Page,
		TotalPages: TotalPages(total, d.Limit),
	}

	window := d.Window()
	if int64(window.Offset) >= total {
		return page, nil
	}

	data, err := corpus.Find(ctx, filter, d.Sort, window)
	if err != nil {
		return Page{}, fmt.Errorf("find colleges: %w", err)
	}
	if data != nil {
		page.Data = data
	}
	return page, nil
}

// All returns every college visible in the scope, newest first
func All(ctx context.Context, corpus Corpus, scope Scope) ([]model.College, error) {
	data, err := corpus.Find(ctx, scope.Gate(nil), SortNewest, Window{})
	if err != nil {
		return nil, fmt.Errorf("find colleges: %w", err)
	}
	if data == nil {
		data = []model.College{}
	}
	return data, nil
}

// Lookup returns the first college in the scope matching p. ok is false when
// nothing matches.
func Lookup(ctx context.Context, corpus Corpus, scope Scope, p Predicate) (college model.College, ok bool, err error) {
	data, err := corpus.Find(ctx, scope.Gate(Filter{p}), SortRanking, Window{Limit: 1})
	if err != nil {
		return model.College{}, false, fmt.Errorf("lookup college: %w", err)
	}
	if len(data) == 0 {
		return model.College{}, false, nil
	}
	return data[0], true, nil
}
