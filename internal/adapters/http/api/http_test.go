package api_test

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/minat/internal/adapters/http/api"
	"github.com/okian/minat/internal/adapters/source"
	service "github.com/okian/minat/internal/app"
	"github.com/okian/minat/internal/domain/filter"
	"github.com/okian/minat/internal/domain/model"
	"github.com/okian/minat/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// stateDeps serves recomputes from a fixed state.
type stateDeps struct {
	state *service.AppState
	err   error
}

func (d *stateDeps) Dashboard(_ context.Context, sel filter.Selection) (types.Dashboard, error) {
	if d.err != nil {
		return types.Dashboard{}, d.err
	}
	return service.Recompute(d.state, sel)
}

func (d *stateDeps) Options(context.Context) types.Options {
	return d.state.Options()
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

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

func loadedDeps() *stateDeps {
	rs := model.NewRecordSet(columns(), []model.Record{
		record("Samsung", "Perkotaan", "Dewasa", 8, 4),
		record("Xiaomi", "Pedesaan", "Remaja", 9, 5),
		record("Samsung", "Pedesaan", "Dewasa", 8, 6),
		record("Oppo", "Perkotaan", "Lansia", 20, 7),
		record("Samsung", "Perkotaan", "Remaja", 22, 8),
		record("Xiaomi", "Perkotaan", "Dewasa", 9, 3),
		record("Apple", "Pedesaan", "Lansia", 13, 9),
	})
	return &stateDeps{state: service.NewAppState(rs, nil, service.StateConfig{Source: "data.csv"})}
}

func missingDeps() *stateDeps {
	err := fmt.Errorf("open data.csv: %w", source.ErrMissingSource)
	return &stateDeps{state: service.NewAppState(model.Empty(), err, service.StateConfig{Source: "data.csv"})}
}

func serve(mux *http.ServeMux, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func newMux(deps api.Dependencies) *http.ServeMux {
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"rows": 7}}, api.WithChartSize(640, 320))
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server over loaded data", t, func() {
		mux := newMux(loadedDeps())

		Convey("Then the health endpoint exposes metrics", func() {
			w := serve(mux, "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then the stats endpoint is accessible", func() {
			w := serve(mux, "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then unknown paths are not found", func() {
			w := serve(mux, "/unknown")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then the page renders every section", func() {
			w := serve(mux, "/")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "text/html")
			body := w.Body.String()
			So(body, ShouldContainSubstring, "Simple Dashboard Presentasi Data Simulasi")
			So(body, ShouldContainSubstring, "Filter Data")
			So(body, ShouldContainSubstring, "Pilih Merk HP:")
			So(body, ShouldContainSubstring, "Pilih Tipe Lokasi:")
			So(body, ShouldContainSubstring, "Pilih Kategori Usia:")
			So(body, ShouldContainSubstring, "Jumlah baris setelah filter: 7 dari 7")
			So(body, ShouldContainSubstring, "Sekilas Data (Filtered)")
			So(body, ShouldContainSubstring, "Statistik Numerik:")
			So(body, ShouldContainSubstring, "Statistik Kategorikal:")
			So(body, ShouldContainSubstring, "Data Type")
			So(body, ShouldContainSubstring, "Distribusi Minat Digital")
			So(body, ShouldContainSubstring, "Minat Digital Berdasarkan Waktu Login (Jam)")
			So(body, ShouldContainSubstring, `<option value="Samsung" selected>`)
			So(body, ShouldContainSubstring, "<svg")
		})

		Convey("Then a submitted selection filters the page", func() {
			w := serve(mux, "/?applied=1&brand=Samsung&location=Perkotaan&location=Pedesaan&age=Dewasa&age=Remaja&age=Lansia")
			So(w.Code, ShouldEqual, http.StatusOK)
			body := w.Body.String()
			So(body, ShouldContainSubstring, "Jumlah baris setelah filter: 3 dari 7")
			So(body, ShouldContainSubstring, `<option value="Samsung" selected>`)
			So(body, ShouldContainSubstring, `<option value="Xiaomi">`)
		})

		Convey("Then an emptied selection shows no rows", func() {
			w := serve(mux, "/?applied=1")
			So(w.Code, ShouldEqual, http.StatusOK)
			body := w.Body.String()
			So(body, ShouldContainSubstring, "Jumlah baris setelah filter: 0 dari 7")
			So(body, ShouldContainSubstring, "Tidak ada data")
		})

		Convey("Then the JSON dashboard reflects the query", func() {
			w := serve(mux, "/api/dashboard?applied=1&brand=Apple&location=Pedesaan&age=Lansia")
			So(w.Code, ShouldEqual, http.StatusOK)
			var d struct {
				Available bool `json:"available"`
				Total     int  `json:"total"`
				Filtered  int  `json:"filtered"`
				ByBrand   []struct {
					Key  string  `json:"key"`
					Mean float64 `json:"mean"`
				} `json:"by_brand"`
			}
			So(json.NewDecoder(w.Body).Decode(&d), ShouldBeNil)
			So(d.Available, ShouldBeTrue)
			So(d.Total, ShouldEqual, 7)
			So(d.Filtered, ShouldEqual, 1)
			So(len(d.ByBrand), ShouldEqual, 1)
			So(d.ByBrand[0].Key, ShouldEqual, "Apple")
			So(d.ByBrand[0].Mean, ShouldEqual, 9.0)
		})

		Convey("Then the options endpoint lists first-seen values", func() {
			w := serve(mux, "/api/options")
			So(w.Code, ShouldEqual, http.StatusOK)
			var o types.Options
			So(json.NewDecoder(w.Body).Decode(&o), ShouldBeNil)
			So(o.Brands, ShouldResemble, []string{"Samsung", "Xiaomi", "Oppo", "Apple"})
			So(o.LocationTypes, ShouldResemble, []string{"Perkotaan", "Pedesaan"})
		})

		Convey("Then each chart is served as SVG", func() {
			for _, name := range api.ChartNames {
				w := serve(mux, "/charts/"+name+".svg")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "image/svg+xml")
				So(w.Body.String(), ShouldContainSubstring, "<svg")
			}
		})

		Convey("Then an unknown chart is not found", func() {
			w := serve(mux, "/charts/pie.svg")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			var e struct {
				Code string `json:"code"`
			}
			So(json.NewDecoder(w.Body).Decode(&e), ShouldBeNil)
			So(e.Code, ShouldEqual, "not_found")
		})

		Convey("Then a nil mux panics", func() {
			server := api.NewServer(loadedDeps(), &mockStatsProvider{})
			So(func() { server.Register(context.Background(), nil) }, ShouldPanic)
		})
	})

	Convey("Given a server whose source is missing", t, func() {
		mux := newMux(missingDeps())

		Convey("Then the page shows only the error and the warning", func() {
			w := serve(mux, "/")
			So(w.Code, ShouldEqual, http.StatusOK)
			body := w.Body.String()
			So(body, ShouldContainSubstring, "not found. Please make sure the file is in the same directory.")
			So(body, ShouldContainSubstring, "Tidak ada data untuk ditampilkan.")
			So(body, ShouldNotContainSubstring, "Filter Data")
			So(body, ShouldNotContainSubstring, "<svg")
		})

		Convey("Then charts are unavailable", func() {
			w := serve(mux, "/charts/histogram.svg")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("Then the JSON dashboard carries the warning", func() {
			w := serve(mux, "/api/dashboard")
			So(w.Code, ShouldEqual, http.StatusOK)
			var d types.Dashboard
			So(json.NewDecoder(w.Body).Decode(&d), ShouldBeNil)
			So(d.Available, ShouldBeFalse)
			So(d.Warning, ShouldContainSubstring, "data.csv")
		})
	})

	Convey("Given dependencies that fail to recompute", t, func() {
		deps := loadedDeps()
		deps.err = errors.New("boom")
		mux := newMux(deps)

		Convey("Then the JSON endpoint reports a server error", func() {
			w := serve(mux, "/api/dashboard")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(w.Body.String(), ShouldContainSubstring, "recompute_failed")
		})

		Convey("Then the page reports a server error", func() {
			w := serve(mux, "/")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

// decodeXML reads every token of doc and returns the first syntax error.
func decodeXML(doc string) error {
	dec := xml.NewDecoder(strings.NewReader(doc))
	for {
		if _, err := dec.Token(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func TestServer_MarkupInLabels(t *testing.T) {
	Convey("Given data whose brands contain markup characters", t, func() {
		rs := model.NewRecordSet(columns(), []model.Record{
			record("AT&T", "Perkotaan", "Dewasa", 8, 4),
			record(`<img src=x onerror="alert(1)">`, "Pedesaan", "Remaja", 9, 6),
			record("Samsung", "Perkotaan", "Lansia", 10, 5),
		})
		deps := &stateDeps{state: service.NewAppState(rs, nil, service.StateConfig{Source: "data.csv"})}
		mux := newMux(deps)

		Convey("Then the page carries no raw tag from the data", func() {
			w := serve(mux, "/")
			So(w.Code, ShouldEqual, http.StatusOK)
			body := w.Body.String()
			So(body, ShouldNotContainSubstring, "<img src=x")
			So(body, ShouldContainSubstring, "&lt;img src=x")
			So(body, ShouldNotContainSubstring, "AT&T<")
			So(body, ShouldContainSubstring, "AT&amp;T")
		})

		Convey("Then every chart is well-formed XML", func() {
			for _, name := range api.ChartNames {
				w := serve(mux, "/charts/"+name+".svg")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decodeXML(w.Body.String()), ShouldBeNil)
			}
		})

		Convey("Then the brand chart keeps the labels as text", func() {
			w := serve(mux, "/charts/brand.svg")
			So(w.Code, ShouldEqual, http.StatusOK)
			svg := w.Body.String()
			So(svg, ShouldNotContainSubstring, "<img")
			So(svg, ShouldContainSubstring, "AT&amp;T")
		})
	})
}

func TestHealthHandler_HandleHealth(t *testing.T) {
	Convey("Given a health handler", t, func() {
		handler := api.NewHealthHandler()

		Convey("When handling health check request", func() {
			req := httptest.NewRequest("GET", "/healthz", nil)
			w := httptest.NewRecorder()

			Convey("Then it should return OK status", func() {
				handler.HandleHealth(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
			})
		})
	})
}

func TestStatsHandler_HandleStats(t *testing.T) {
	Convey("Given a stats handler", t, func() {
		mockStats := &mockStatsProvider{
			stats: map[string]interface{}{
				"rows":      1000,
				"available": true,
			},
		}
		handler := api.NewStatsHandler(mockStats)

		Convey("When handling stats request", func() {
			req := httptest.NewRequest("GET", "/stats", nil)
			w := httptest.NewRecorder()

			Convey("Then it should return stats", func() {
				handler.HandleStats(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)

				var response map[string]interface{}
				err := json.NewDecoder(w.Body).Decode(&response)
				So(err, ShouldBeNil)
				So(response["rows"], ShouldEqual, float64(1000))
				So(response["available"], ShouldEqual, true)
			})
		})

		Convey("When the method is not GET", func() {
			req := httptest.NewRequest("POST", "/stats", nil)
			w := httptest.NewRecorder()
			handler.HandleStats(w, req)

			Convey("Then it should return not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}
