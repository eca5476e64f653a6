package service_test

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/okian/minat/internal/adapters/source"
	service "github.com/okian/minat/internal/app"
	"github.com/okian/minat/internal/domain/filter"
	"github.com/okian/minat/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func columns() []model.Column {
	return []model.Column{
		{Name: "Merk HP", Field: model.FieldBrand, Kind: model.KindText},
		{Name: "Tipe Lokasi", Field: model.FieldLocationType, Kind: model.KindText},
		{Name: "Kategori Usia", Field: model.FieldAgeCategory, Kind: model.KindText},
		{Name: "Jam Login", Field: model.FieldLoginTime, Kind: model.KindTimestamp},
		{Name: "Minat Digital", Field: model.FieldInterest, Kind: model.KindFloat},
		{Name: "Jam", Field: model.FieldHour, Kind: model.KindInteger},
		{Name: "Hari", Field: model.FieldDay, Kind: model.KindText},
	}
}

func record(brand, loc, age string, hour int, interest float64) model.Record {
	ts := time.Date(2024, 3, 4, hour, 0, 0, 0, time.UTC)
	return model.Record{
		Brand: brand, LocationType: loc, AgeCategory: age,
		LoginTime: ts, Hour: hour, Day: ts.Weekday().String(), Interest: interest,
	}
}

func sampleState() *service.AppState {
	rs := model.NewRecordSet(columns(), []model.Record{
		record("Samsung", "Perkotaan", "Dewasa", 8, 4),
		record("Xiaomi", "Pedesaan", "Remaja", 9, 5),
		record("Samsung", "Pedesaan", "Dewasa", 8, 6),
		record("Oppo", "Perkotaan", "Lansia", 20, 7),
		record("Samsung", "Perkotaan", "Remaja", 22, 8),
		record("Xiaomi", "Perkotaan", "Dewasa", 9, 3),
		record("Apple", "Pedesaan", "Lansia", 13, 9),
	})
	return service.NewAppState(rs, nil, service.StateConfig{Source: "data.csv", PreviewRows: 5, HistogramBins: 20})
}

func TestRecompute(t *testing.T) {
	Convey("Given a loaded state", t, func() {
		state := sampleState()

		Convey("When nothing is selected explicitly", func() {
			d, err := service.Recompute(state, filter.All())

			Convey("Then every row passes and all options are selected", func() {
				So(err, ShouldBeNil)
				So(d.Available, ShouldBeTrue)
				So(d.Total, ShouldEqual, 7)
				So(d.Filtered, ShouldEqual, 7)
				So(d.Options.Brands, ShouldResemble, []string{"Samsung", "Xiaomi", "Oppo", "Apple"})
				So(d.Selected.Brands, ShouldResemble, d.Options.Brands)
			})

			Convey("And the preview holds the first five rows", func() {
				So(len(d.Preview.Rows), ShouldEqual, 5)
				So(d.Preview.Columns[0], ShouldEqual, "Merk HP")
				So(d.Preview.Rows[0][0], ShouldEqual, "Samsung")
			})

			Convey("And the histogram counts every row", func() {
				So(len(d.Histogram), ShouldEqual, 20)
				total := 0
				for _, b := range d.Histogram {
					total += b.Count
				}
				So(total, ShouldEqual, 7)
			})

			Convey("And grouped means are sorted by key", func() {
				So(len(d.ByBrand), ShouldEqual, 4)
				So(d.ByBrand[0].Key, ShouldEqual, "Apple")
				So(d.ByBrand[2].Key, ShouldEqual, "Samsung")
				So(d.ByBrand[2].Mean, ShouldAlmostEqual, 6.0)
				So(len(d.ByLocation), ShouldEqual, 2)
				keys := make([]string, len(d.ByHour))
				for i, g := range d.ByHour {
					keys[i] = g.Key
				}
				So(keys, ShouldResemble, []string{"8", "9", "13", "20", "22"})
			})
		})

		Convey("When a brand subset is chosen", func() {
			sel := filter.Selection{Brands: filter.NewSet("Samsung")}
			d, err := service.Recompute(state, sel)

			Convey("Then only those rows remain and options stay complete", func() {
				So(err, ShouldBeNil)
				So(d.Filtered, ShouldEqual, 3)
				So(d.Total, ShouldEqual, 7)
				So(len(d.Options.Brands), ShouldEqual, 4)
				So(d.Selected.Brands, ShouldResemble, []string{"Samsung"})
				So(len(d.ByBrand), ShouldEqual, 1)
			})
		})

		Convey("When a dimension is explicitly empty", func() {
			d, err := service.Recompute(state, filter.Selection{AgeCategories: filter.NewSet()})

			Convey("Then the view is empty but the page is still available", func() {
				So(err, ShouldBeNil)
				So(d.Available, ShouldBeTrue)
				So(d.Filtered, ShouldEqual, 0)
				So(d.Histogram, ShouldBeNil)
				So(d.ByHour, ShouldBeEmpty)
				So(d.Summary.Numeric[0].Count, ShouldEqual, 0)
			})
		})

		Convey("When recomputing twice", func() {
			before := state.Records().Len()
			_, _ = service.Recompute(state, filter.Selection{Brands: filter.NewSet("Oppo")})
			d, _ := service.Recompute(state, filter.All())

			Convey("Then the full set is untouched", func() {
				So(state.Records().Len(), ShouldEqual, before)
				So(d.Filtered, ShouldEqual, before)
			})
		})
	})

	Convey("Given a state whose source was missing", t, func() {
		loadErr := fmt.Errorf("%w: data.csv", source.ErrMissingSource)
		state := service.NewAppState(model.Empty(), loadErr, service.StateConfig{Source: "data.csv"})

		Convey("Then only the warning is produced", func() {
			d, err := service.Recompute(state, filter.All())
			So(err, ShouldBeNil)
			So(d.Available, ShouldBeFalse)
			So(d.Warning, ShouldEqual, "Tidak ada data untuk ditampilkan. Pastikan 'data.csv' tersedia dan berisi data.")
			So(d.Error, ShouldContainSubstring, "not found")
			So(d.Preview.Rows, ShouldBeEmpty)
			So(d.ByBrand, ShouldBeNil)
			So(errors.Is(state.LoadErr(), source.ErrMissingSource), ShouldBeTrue)
		})
	})

	Convey("Given a header-only data set", t, func() {
		state := service.NewAppState(model.NewRecordSet(columns(), nil), nil, service.StateConfig{Source: "data.csv"})

		Convey("Then the warning replaces the dashboard without an error text", func() {
			d, err := service.Recompute(state, filter.All())
			So(err, ShouldBeNil)
			So(d.Available, ShouldBeFalse)
			So(d.Error, ShouldBeEmpty)
			So(d.Warning, ShouldNotBeEmpty)
		})
	})

	Convey("Given missing interest values", t, func() {
		rs := model.NewRecordSet(columns(), []model.Record{
			record("Samsung", "Perkotaan", "Dewasa", 1, math.NaN()),
			record("Xiaomi", "Perkotaan", "Dewasa", 2, 5),
		})
		state := service.NewAppState(rs, nil, service.StateConfig{})

		Convey("Then the group mean is NaN and defaults fill the config", func() {
			d, err := service.Recompute(state, filter.All())
			So(err, ShouldBeNil)
			So(math.IsNaN(d.ByBrand[0].Mean), ShouldBeTrue)
			So(len(d.Histogram), ShouldEqual, 20)
		})
	})
}
