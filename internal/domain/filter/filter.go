// Package filter selects records by membership of their categorical labels.
package filter

import (
	"sort"

	"github.com/okian/minat/internal/domain/model"
)

// Set is a set of allowed label values.
type Set map[string]struct{}

// NewSet builds a set from values.
func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Has reports membership. A nil set contains nothing.
func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the members in ascending order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Selection is the user's choice per filter dimension. A nil set means the
// dimension was not specified and defaults to every observed value; a non-nil
// empty set selects nothing.
type Selection struct {
	Brands        Set
	LocationTypes Set
	AgeCategories Set
}

// All returns a selection that leaves every dimension unspecified.
func All() Selection {
	return Selection{}
}

// Resolve replaces unspecified dimensions with the full domain of rs.
func (sel Selection) Resolve(rs *model.RecordSet) (brands, locations, ages Set) {
	brands = sel.Brands
	if brands == nil {
		brands = NewSet(Domain(rs, model.FieldBrand)...)
	}
	locations = sel.LocationTypes
	if locations == nil {
		locations = NewSet(Domain(rs, model.FieldLocationType)...)
	}
	ages = sel.AgeCategories
	if ages == nil {
		ages = NewSet(Domain(rs, model.FieldAgeCategory)...)
	}
	return brands, locations, ages
}

// Apply resolves the selection against rs and filters it.
func (sel Selection) Apply(rs *model.RecordSet) *model.RecordSet {
	brands, locations, ages := sel.Resolve(rs)
	return Apply(rs, brands, locations, ages)
}

// Apply keeps the records whose brand, location type and age category are all
// members of the respective sets. Input order is preserved; an empty set for
// any dimension yields an empty result.
func Apply(rs *model.RecordSet, brands, locations, ages Set) *model.RecordSet {
	idx := make([]int, 0, rs.Len())
	for i := 0; i < rs.Len(); i++ {
		r := rs.Record(i)
		if brands.Has(r.Brand) && locations.Has(r.LocationType) && ages.Has(r.AgeCategory) {
			idx = append(idx, i)
		}
	}
	return rs.Subset(idx)
}

// Domain returns the distinct values of a label field in first-seen order.
func Domain(rs *model.RecordSet, field model.Field) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for i := 0; i < rs.Len(); i++ {
		v := rs.Record(i).Text(field)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
