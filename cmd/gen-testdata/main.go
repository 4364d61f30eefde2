package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rallyrank/rallyrank/internal/testdata"
	"github.com/rallyrank/rallyrank/pkg/logger"
)

const verifyTimeout = 2 * time.Minute

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	defaults := testdata.DefaultConfig()

	var (
		players   = flag.Int("players", defaults.Players, "Number of roster players")
		matches   = flag.Int("matches", defaults.Matches, "Number of matches across the archive")
		years     = flag.Int("years", defaults.Years, "Number of yearly match files")
		firstYear = flag.Int("first-year", defaults.FirstYear, "Year of the first match file")
		seed      = flag.Int64("seed", defaults.Seed, "RNG seed; same seed, same archive")
		out       = flag.String("out", defaults.OutDir, "Output directory for CSV files")
		verify    = flag.Bool("verify", false, "Replay the archive and check determinism before writing")
	)
	flag.Parse()

	cfg := defaults
	cfg.Players = *players
	cfg.Matches = *matches
	cfg.Years = *years
	cfg.FirstYear = *firstYear
	cfg.Seed = *seed
	cfg.OutDir = *out

	archive := testdata.Generate(cfg)

	if *verify {
		ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
		defer cancel()
		if err := testdata.Verify(ctx, archive); err != nil {
			os.Stderr.WriteString("Verification failed: " + err.Error() + "\n")
			os.Exit(1)
		}
	}

	if err := testdata.Write(archive, cfg.OutDir); err != nil {
		os.Stderr.WriteString("Write failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
