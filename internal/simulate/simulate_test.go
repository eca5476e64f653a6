package simulate_test

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/minat/internal/adapters/source"
	"github.com/okian/minat/internal/simulate"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerate(t *testing.T) {
	Convey("Given the default config", t, func() {
		cfg := simulate.DefaultConfig()
		cfg.Rows = 200

		Convey("When generating twice with the same seed", func() {
			a, err := simulate.Generate(cfg)
			So(err, ShouldBeNil)
			b, err := simulate.Generate(cfg)
			So(err, ShouldBeNil)

			Convey("Then the rows are identical", func() {
				So(len(a), ShouldEqual, 200)
				So(a, ShouldResemble, b)
			})

			Convey("And every row is in range", func() {
				end := cfg.Start.AddDate(0, 0, cfg.Days)
				for _, r := range a {
					So(r.Interest, ShouldBeBetweenOrEqual, 0, 100)
					So(r.LoginTime.Before(cfg.Start), ShouldBeFalse)
					So(r.LoginTime.Before(end), ShouldBeTrue)
					So(r.Brand, ShouldNotBeEmpty)
				}
			})
		})

		Convey("When the seed changes", func() {
			a, _ := simulate.Generate(cfg)
			cfg.Seed++
			b, _ := simulate.Generate(cfg)

			Convey("Then the rows differ", func() {
				So(a[0].UserID, ShouldNotEqual, b[0].UserID)
			})
		})

		Convey("When every interest cell is missing", func() {
			cfg.MissingRate = 1
			rows, err := simulate.Generate(cfg)

			Convey("Then every interest is NaN and renders blank", func() {
				So(err, ShouldBeNil)
				for _, r := range rows {
					So(math.IsNaN(r.Interest), ShouldBeTrue)
				}
				So(rows[0].Cells(false)[5], ShouldEqual, "")
			})
		})

		Convey("When the config is invalid", func() {
			cfg.Rows = -1
			_, err := simulate.Generate(cfg)

			Convey("Then ErrInvalidConfig is returned", func() {
				So(errors.Is(err, simulate.ErrInvalidConfig), ShouldBeTrue)
			})
		})
	})
}

func TestWrite(t *testing.T) {
	Convey("Given generated rows", t, func() {
		cfg := simulate.DefaultConfig()
		cfg.Rows = 50
		rows, err := simulate.Generate(cfg)
		So(err, ShouldBeNil)
		dir := t.TempDir()

		Convey("When written as CSV", func() {
			var buf bytes.Buffer
			So(simulate.WriteCSV(&buf, rows, true), ShouldBeNil)

			Convey("Then the header carries the derived columns", func() {
				first := strings.SplitN(buf.String(), "\n", 2)[0]
				So(first, ShouldEqual, "ID Pengguna,Merk HP,Tipe Lokasi,Kategori Usia,Jam Login,Minat Digital,Jam,Hari")
			})
		})

		Convey("When a CSV file is loaded back", func() {
			path := filepath.Join(dir, "data.csv")
			So(simulate.WriteFile(path, rows, false), ShouldBeNil)
			rs, err := source.NewLoader(path).Load(context.Background())

			Convey("Then every row is read with derived hour and day", func() {
				So(err, ShouldBeNil)
				So(rs.Len(), ShouldEqual, 50)
				r := rs.Record(0)
				So(r.Brand, ShouldEqual, rows[0].Brand)
				So(r.Hour, ShouldEqual, rows[0].LoginTime.Hour())
				So(r.Day, ShouldEqual, rows[0].LoginTime.Weekday().String())
				So(r.Interest, ShouldEqual, rows[0].Interest)
			})
		})

		Convey("When an XLSX file is loaded back", func() {
			path := filepath.Join(dir, "data.xlsx")
			So(simulate.WriteFile(path, rows, true), ShouldBeNil)
			rs, err := source.NewLoader(path).Load(context.Background())

			Convey("Then the source hour and day are kept", func() {
				So(err, ShouldBeNil)
				So(rs.Len(), ShouldEqual, 50)
				So(rs.Record(49).Hour, ShouldEqual, rows[49].LoginTime.Hour())
				So(rs.Record(49).AgeCategory, ShouldEqual, rows[49].AgeCategory)
			})
		})

		Convey("When the target directory does not exist", func() {
			err := simulate.WriteFile(filepath.Join(dir, "missing", "data.csv"), rows, false)

			Convey("Then ErrWrite is returned", func() {
				So(errors.Is(err, simulate.ErrWrite), ShouldBeTrue)
				_, statErr := os.Stat(filepath.Join(dir, "missing"))
				So(os.IsNotExist(statErr), ShouldBeTrue)
			})
		})
	})
}
