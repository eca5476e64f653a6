package api

import (
	"net/url"

	"github.com/okian/minat/internal/domain/filter"
)

// Query parameters carrying the filter selection.
const (
	paramBrand    = "brand"
	paramLocation = "location"
	paramAge      = "age"
	paramApplied  = "applied"
)

// parseSelection reads repeated brand, location and age parameters. A form
// submission carries applied=1, and then an absent dimension means nothing is
// selected; without it an absent dimension keeps every value.
func parseSelection(q url.Values) filter.Selection {
	applied := q.Has(paramApplied)
	dim := func(key string) filter.Set {
		values, ok := q[key]
		if !ok {
			if applied {
				return filter.NewSet()
			}
			return nil
		}
		return filter.NewSet(values...)
	}
	return filter.Selection{
		Brands:        dim(paramBrand),
		LocationTypes: dim(paramLocation),
		AgeCategories: dim(paramAge),
	}
}

// encodeSelection is the query string that reproduces a selection.
func encodeSelection(brands, locations, ages []string) string {
	q := url.Values{}
	q.Set(paramApplied, "1")
	for _, v := range brands {
		q.Add(paramBrand, v)
	}
	for _, v := range locations {
		q.Add(paramLocation, v)
	}
	for _, v := range ages {
		q.Add(paramAge, v)
	}
	return q.Encode()
}
