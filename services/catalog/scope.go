package catalog

import "github.com/sahilchouksey/degreefyd-api/model"

// Scope decides which statuses a caller may see
type Scope int

const (
	// Public sees published colleges only
	Public Scope = iota
	// Admin sees every status
	Admin
)

// Gate returns f with the scope's status restriction added
func (s Scope) Gate(f Filter) Filter {
	if s == Admin {
		return f
	}
	out := make(Filter, 0, len(f)+1)
	out = append(out, StatusIs{Status: model.CollegeStatusPublished})
	return append(out, f...)
}

func (s Scope) String() string {
	if s == Admin {
		return "admin"
	}
	return "public"
}
