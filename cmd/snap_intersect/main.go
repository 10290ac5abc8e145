// Command snap_intersect intersects two tables of 64 byte records with the hash join engine, generates test tables
// and runs batches of intersections.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/gostonefire/snapintersect/internal/tablegen"
	"go.uber.org/zap"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	app        = kingpin.New("snap_intersect", "Hash join intersection of two record tables.")
	configFile = app.Flag("config", "YAML config file").Short('c').String()
	logLevel   = app.Flag("log-level", "Log level, overrides the config file").Enum("debug", "info", "warn", "error")
	verbose    = app.Flag("verbose", "Human readable development logging").Short('v').Bool()

	runCmd      = app.Command("run", "Intersect two tables.")
	runTable1   = runCmd.Flag("table1", "Table1 file, the build side").Required().String()
	runTable2   = runCmd.Flag("table2", "Table2 file, the probe side").Required().String()
	runOutput   = runCmd.Flag("output", "Result file").Short('o').String()
	runTimeout  = runCmd.Flag("timeout", "Timeout per step, overrides the config file").Duration()
	runVerify   = runCmd.Flag("verify", "Check the result against the software reference").Bool()
	runCardFile = runCmd.Flag("card-file", "Keep card memory in this file instead of on the heap").String()

	genCmd     = app.Command("gen", "Generate two tables.")
	genRecords = genCmd.Flag("records", "Records per table").Default("1000").Int64()
	genOverlap = genCmd.Flag("overlap", "Table2 records copied from table1").Default("100").Int64()
	genSeed    = genCmd.Flag("seed", "Generator seed").Default("1").Uint64()
	genOut1    = genCmd.Flag("out1", "Table1 file").Default("table1.bin").String()
	genOut2    = genCmd.Flag("out2", "Table2 file").Default("table2.bin").String()

	batchCmd  = app.Command("batch", "Run several intersections in parallel.")
	batchJobs = batchCmd.Flag("jobs", "YAML jobs file").Required().String()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	config, err := LoadConfig(*configFile)
	app.FatalIfError(err, "config")
	if *logLevel != "" {
		config.LogLevel = *logLevel
	}
	if *runTimeout > 0 {
		config.stepTimeout = *runTimeout
	}

	logger, err := newLogger(config.LogLevel, *verbose)
	app.FatalIfError(err, "logger")
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch command {
	case runCmd.FullCommand():
		report, err := runIntersect(ctx, logger, config, RunArgs{
			Name:     "run",
			Table1:   *runTable1,
			Table2:   *runTable2,
			Output:   *runOutput,
			CardFile: *runCardFile,
			Verify:   *runVerify,
		})
		app.FatalIfError(err, "run")
		fmt.Printf("%d records %s\n", report.ResultRecords, report.Digest)

	case genCmd.FullCommand():
		table1, table2, err := tablegen.Generate(tablegen.GenConf{
			Table1Records: *genRecords,
			Table2Records: *genRecords,
			Overlap:       *genOverlap,
			Seed:          *genSeed,
		})
		app.FatalIfError(err, "gen")
		app.FatalIfError(writeTable(*genOut1, table1), "gen")
		app.FatalIfError(writeTable(*genOut2, table2), "gen")

	case batchCmd.FullCommand():
		batchFile, err := loadBatchFile(*batchJobs)
		app.FatalIfError(err, "batch")
		report, err := runBatch(ctx, logger, config, batchFile)
		for i, r := range report.Reports {
			if r.RunID != "" {
				fmt.Printf("%s: %d records %s\n", batchFile.Jobs[i].Name, r.ResultRecords, r.Digest)
			}
		}
		fmt.Printf("%d succeeded, %d failed\n", report.Succeeded, report.Failed)
		app.FatalIfError(err, "batch")
	}
}

// newLogger - Returns a production logger at the given level, or a development logger if verbose
func newLogger(level string, verbose bool) (logger *zap.Logger, err error) {
	zapConfig := zap.NewProductionConfig()
	if verbose {
		zapConfig = zap.NewDevelopmentConfig()
	}

	zapConfig.Level, err = zap.ParseAtomicLevel(level)
	if err != nil {
		return
	}

	return zapConfig.Build()
}
