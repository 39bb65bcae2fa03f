package catalog

import (
	"sort"

	"github.com/sahilchouksey/degreefyd-api/model"
)

// SortKey names an ordering of the listing
type SortKey string

const (
	SortRanking   SortKey = "ranking"
	SortRating    SortKey = "rating"
	SortFeesLow   SortKey = "fees-low"
	SortFeesHigh  SortKey = "fees-high"
	SortPlacement SortKey = "placement"

	// SortNewest is used by the admin list and is not accepted from requests
	SortNewest SortKey = "newest"
)

// ParseSortKey maps a request value to a public sort key, defaulting to
// ranking for anything it does not recognise.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(s); k {
	case SortRanking, SortRating, SortFeesLow, SortFeesHigh, SortPlacement:
		return k
	default:
		return SortRanking
	}
}

// Less orders a before b under the key. Ties fall back to creation order,
// which makes every key a total order. Colleges without courses go last for
// both fee orders.
func (k SortKey) Less(a, b *model.College) bool {
	switch k {
	case SortRating:
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
	case SortFeesLow, SortFeesHigh:
		af, aok := a.MinCourseFee()
		bf, bok := b.MinCourseFee()
		if aok != bok {
			return aok
		}
		if af != bf {
			if k == SortFeesLow {
				return af < bf
			}
			return af > bf
		}
	case SortPlacement:
		if a.Placement.Percentage != b.Placement.Percentage {
			return a.Placement.Percentage > b.Placement.Percentage
		}
	case SortNewest:
		return canonicalLess(b, a)
	default:
		if a.Ranking != b.Ranking {
			return a.Ranking < b.Ranking
		}
	}
	return canonicalLess(a, b)
}

// Sort orders colleges in place
func Sort(colleges []model.College, key SortKey) {
	sort.SliceStable(colleges, func(i, j int) bool {
		return key.Less(&colleges[i], &colleges[j])
	})
}

func canonicalLess(a, b *model.College) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
