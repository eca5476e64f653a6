// Command gen-data writes a simulated data set for the dashboard.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/okian/minat/internal/simulate"
	"github.com/okian/minat/pkg/logger"
)

func main() {
	def := simulate.DefaultConfig()
	var (
		rows        = flag.Int("rows", def.Rows, "number of records to generate")
		output      = flag.String("output", "data_simulasi.csv", "output file; .xlsx writes a workbook")
		seed        = flag.Uint64("seed", def.Seed, "random seed")
		days        = flag.Int("days", def.Days, "number of days logins spread over")
		withDerived = flag.Bool("with-derived", false, "also write the Jam and Hari columns")
		missing     = flag.Float64("missing", 0, "share of interest cells left blank")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	ctx := context.Background()
	log := logger.Get()

	cfg := def
	cfg.Rows, cfg.Seed, cfg.Days = *rows, *seed, *days
	cfg.WithDerived, cfg.MissingRate = *withDerived, *missing

	if err := run(cfg, *output); err != nil {
		log.Error(ctx, "generate data failed", logger.Error(err))
		os.Exit(1)
	}
	log.Info(ctx, "data written",
		logger.String("output", *output),
		logger.Int("rows", cfg.Rows),
		logger.Bool("with_derived", cfg.WithDerived),
	)
}

func run(cfg simulate.Config, output string) error {
	rows, err := simulate.Generate(cfg)
	if err != nil {
		return err
	}
	return simulate.WriteFile(output, rows, cfg.WithDerived)
}
