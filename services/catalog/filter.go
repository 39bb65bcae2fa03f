package catalog

import (
	"strings"

	"github.com/sahilchouksey/degreefyd-api/model"
)

// Predicate is a single test against a college. Store adapters translate each
// concrete predicate type into their own query language; Match is the
// reference semantics they must agree with.
type Predicate interface {
	Match(c *model.College) bool
}

// Filter is a conjunction of predicates. An empty filter matches everything.
type Filter []Predicate

// Match reports whether c satisfies every predicate
func (f Filter) Match(c *model.College) bool {
	for _, p := range f {
		if !p.Match(c) {
			return false
		}
	}
	return true
}

// StatusIs keeps colleges in one publication state
type StatusIs struct {
	Status model.CollegeStatus
}

func (p StatusIs) Match(c *model.College) bool {
	return c.Status == p.Status
}

// Search is a case-insensitive literal substring match on name, city or state
type Search struct {
	Term string
}

func (p Search) Match(c *model.College) bool {
	term := strings.ToLower(p.Term)
	return strings.Contains(strings.ToLower(c.Name), term) ||
		strings.Contains(strings.ToLower(c.City), term) ||
		strings.Contains(strings.ToLower(c.State), term)
}

// CityIn matches colleges whose city equals any of Cities, ignoring case
type CityIn struct {
	Cities []string
}

func (p CityIn) Match(c *model.College) bool {
	for _, city := range p.Cities {
		if strings.EqualFold(c.City, city) {
			return true
		}
	}
	return false
}

// TypeIn matches colleges whose type is exactly one of Types
type TypeIn struct {
	Types []string
}

func (p TypeIn) Match(c *model.College) bool {
	for _, t := range p.Types {
		if string(c.Type) == t {
			return true
		}
	}
	return false
}

// FeeAtLeast matches colleges with at least one course costing Fee or more
type FeeAtLeast struct {
	Fee float64
}

func (p FeeAtLeast) Match(c *model.College) bool {
	for _, course := range c.Courses {
		if course.Fees >= p.Fee {
			return true
		}
	}
	return false
}

// FeeAtMost matches colleges with at least one course costing Fee or less.
// It is checked independently of FeeAtLeast, so the two bounds may be
// satisfied by different courses.
type FeeAtMost struct {
	Fee float64
}

func (p FeeAtMost) Match(c *model.College) bool {
	for _, course := range c.Courses {
		if course.Fees <= p.Fee {
			return true
		}
	}
	return false
}

// SlugIs matches a single college by slug
type SlugIs struct {
	Slug string
}

func (p SlugIs) Match(c *model.College) bool {
	return c.Slug == p.Slug
}
