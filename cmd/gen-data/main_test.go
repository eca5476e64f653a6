package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/minat/internal/simulate"
	"github.com/smartystreets/goconvey/convey"
)

func TestRun(t *testing.T) {
	convey.Convey("Given a small config", t, func() {
		cfg := simulate.DefaultConfig()
		cfg.Rows = 10
		out := filepath.Join(t.TempDir(), "out.csv")

		convey.Convey("When run writes a CSV", func() {
			convey.So(run(cfg, out), convey.ShouldBeNil)

			convey.Convey("Then it holds a header and one line per row", func() {
				b, err := os.ReadFile(out)
				convey.So(err, convey.ShouldBeNil)
				lines := strings.Split(strings.TrimSpace(string(b)), "\n")
				convey.So(len(lines), convey.ShouldEqual, 11)
			})
		})

		convey.Convey("When the config is invalid", func() {
			cfg.Days = 0

			convey.Convey("Then run fails", func() {
				convey.So(run(cfg, out), convey.ShouldNotBeNil)
			})
		})
	})
}
