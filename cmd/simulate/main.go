package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/Ishita-2210/teamforge-recommender/internal/simulation"
	"github.com/Ishita-2210/teamforge-recommender/pkg/logger"
)

const defaultRunTimeout = 10 * time.Minute

func main() {
	var (
		users  = flag.Int("users", 200, "Number of synthetic users")
		teams  = flag.Int("teams", 20, "Number of synthetic teams")
		events = flag.Int("events", 5, "Number of synthetic events")
		topK   = flag.Int("top", 10, "Candidates to request per team")
		seed   = flag.Int64("seed", 1, "Random seed for reproducible runs")
		outDir = flag.String("out", "", "Write the generated snapshot CSVs to this directory")
		noRun  = flag.Bool("generate-only", false, "Generate the snapshot without ranking it")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	snap := simulation.Generate(
		simulation.WithUsers(*users),
		simulation.WithTeams(*teams),
		simulation.WithEvents(*events),
		simulation.WithSeed(*seed),
	)

	if *outDir != "" {
		if err := simulation.WriteCSV(ctx, snap, *outDir); err != nil {
			os.Stderr.WriteString("failed to write snapshot: " + err.Error() + "\n")
			os.Exit(1)
		}
	}

	if *noRun {
		return
	}

	if _, err := simulation.Run(ctx, snap, *topK, *seed); err != nil {
		os.Stderr.WriteString("simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
