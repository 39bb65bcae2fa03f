package catalog

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 6
)

// Params is the loosely typed listing request as it arrives from a query
// string or a client call. Zero values mean "not supplied".
type Params struct {
	Search string
	City   []string
	Type   []string
	MinFee *float64
	MaxFee *float64
	Sort   string
	Page   int
	Limit  int
}

// ParamsFromValues reads listing parameters from a query string. Lists accept
// repeated keys and comma separated values. Numbers that do not parse are
// treated as absent.
func ParamsFromValues(v url.Values) Params {
	p := Params{
		Search: v.Get("search"),
		City:   splitList(v["city"]),
		Type:   splitList(v["type"]),
		MinFee: parseFee(v.Get("minFee")),
		MaxFee: parseFee(v.Get("maxFee")),
		Sort:   v.Get("sort"),
	}
	p.Page, _ = strconv.Atoi(strings.TrimSpace(v.Get("page")))
	p.Limit, _ = strconv.Atoi(strings.TrimSpace(v.Get("limit")))
	return p
}

// Values encodes the parameters back into a query string
func (p Params) Values() url.Values {
	v := url.Values{}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if len(p.City) > 0 {
		v.Set("city", strings.Join(p.City, ","))
	}
	if len(p.Type) > 0 {
		v.Set("type", strings.Join(p.Type, ","))
	}
	if p.MinFee != nil {
		v.Set("minFee", strconv.FormatFloat(*p.MinFee, 'f', -1, 64))
	}
	if p.MaxFee != nil {
		v.Set("maxFee", strconv.FormatFloat(*p.MaxFee, 'f', -1, 64))
	}
	if p.Sort != "" {
		v.Set("sort", p.Sort)
	}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	return v
}

// Descriptor is the canonical form of a listing request. Build it with
// Normalize; it owns copies of every slice it holds.
type Descriptor struct {
	Search string
	Cities []string
	Types  []string
	MinFee *float64
	MaxFee *float64
	Sort   SortKey
	Page   int
	Limit  int
}

// Normalize turns raw parameters into a Descriptor. It never fails: anything
// unusable falls back to its default.
func Normalize(p Params) Descriptor {
	d := Descriptor{
		Search: strings.TrimSpace(p.Search),
		Cities: splitList(p.City),
		Types:  splitList(p.Type),
		MinFee: finiteCopy(p.MinFee),
		MaxFee: finiteCopy(p.MaxFee),
		Sort:   ParseSortKey(p.Sort),
		Page:   p.Page,
		Limit:  p.Limit,
	}
	if d.Page < 1 {
		d.Page = DefaultPage
	}
	if d.Limit < 1 {
		d.Limit = DefaultLimit
	}
	return d
}

// Filter returns the predicates the descriptor asks for. Status is not
// included; a Scope adds it.
func (d Descriptor) Filter() Filter {
	var f Filter
	if d.Search != "" {
		f = append(f, Search{Term: d.Search})
	}
	if len(d.Cities) > 0 {
		f = append(f, CityIn{Cities: append([]string(nil), d.Cities...)})
	}
	if len(d.Types) > 0 {
		f = append(f, TypeIn{Types: append([]string(nil), d.Types...)})
	}
	if d.MinFee != nil {
		f = append(f, FeeAtLeast{Fee: *d.MinFee})
	}
	if d.MaxFee != nil {
		f = append(f, FeeAtMost{Fee: *d.MaxFee})
	}
	return f
}

// Window returns the slice of the sorted result the descriptor points at
func (d Descriptor) Window() Window {
	return PageWindow(d.Page, d.Limit)
}

// Key is a stable string identifying the descriptor, used for caching
func (d Descriptor) Key() string {
	p := Params{
		Search: d.Search,
		City:   d.Cities,
		Type:   d.Types,
		MinFee: d.MinFee,
		MaxFee: d.MaxFee,
		Sort:   string(d.Sort),
		Page:   d.Page,
		Limit:  d.Limit,
	}
	return p.Values().Encode()
}

func splitList(raw []string) []string {
	var out []string
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseFee(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return finiteCopy(&f)
}

func finiteCopy(f *float64) *float64 {
	if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) {
		return nil
	}
	v := *f
	return &v
}
