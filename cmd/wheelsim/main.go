// Command wheelsim spins the configured wheel many times and prints how
// often each prize came up, to sanity check a prize file before deploying.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"prizewheel/internal/config"
	"prizewheel/internal/logger/sl"
	"prizewheel/internal/wheel"
)

func main() {
	prizesFile := flag.String("prizes", os.Getenv("PRIZES_FILE"), "prize file (empty for the bundled catalog)")
	spins := flag.Int("n", 10000, "number of spins")
	unblock := flag.Bool("unblock", false, "include the default-blocked prize")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	pf, err := config.LoadPrizes(*prizesFile)
	if err != nil {
		log.Error("failed to load prizes", sl.Err(err))
		os.Exit(1)
	}
	if *spins < 1 {
		log.Error("n must be positive", slog.Int("n", *spins))
		os.Exit(1)
	}

	opts := wheel.Options{
		Spin:           pf.SpinOptions(0),
		DefaultBlocked: pf.DefaultBlocked,
		Surfaces:       pf.SurfacesOrDefault(),
		Renderer:       wheel.TimerRenderer{},
	}
	report, err := simulate(pf.WheelPrizes(), opts, *spins, *unblock)
	if err != nil {
		log.Error("simulation failed", sl.Err(err))
		os.Exit(1)
	}
	report.print(os.Stdout)
}

type row struct {
	prize    wheel.Prize
	eligible bool
	count    int
}

type report struct {
	rows       []row
	fallback   int
	mislanded  int
	spins      int
	blocked    string
	eligible   int
	minTurns   int
	maxTurns   int
	lastResult wheel.SpinResult
}

// simulate spins a fresh widget per trial, as every visitor gets one spin.
func simulate(prizes []wheel.Prize, opts wheel.Options, spins int, unblock bool) (report, error) {
	rep := report{spins: spins, minTurns: -1}
	index := make(map[string]int, len(prizes))
	for i, p := range prizes {
		index[p.Name] = i
		rep.rows = append(rep.rows, row{prize: p})
	}

	for i := 0; i < spins; i++ {
		w, err := wheel.NewWidget(fmt.Sprintf("sim-%d", i), prizes, opts)
		if err != nil {
			return report{}, err
		}
		if unblock {
			w.Include(w.Blocked())
		}
		if i == 0 {
			rep.blocked = w.Blocked()
			rep.eligible = len(w.Catalog().Eligible())
			for j := range rep.rows {
				rep.rows[j].eligible = w.Catalog().IsEligible(rep.rows[j].prize.Name)
			}
		}

		var res wheel.SpinResult
		pending, err := w.Spin(func(r wheel.SpinResult) { res = r })
		if err != nil {
			return report{}, err
		}
		w.Close()

		if rep.minTurns < 0 || pending.FullRotations < rep.minTurns {
			rep.minTurns = pending.FullRotations
		}
		if pending.FullRotations > rep.maxTurns {
			rep.maxTurns = pending.FullRotations
		}
		rep.lastResult = res

		if wheel.IsFallback(res.Prize) {
			rep.fallback++
			continue
		}
		idx := index[res.Prize.Name]
		rep.rows[idx].count++
		if wheel.SegmentUnderPointer(res.FinalAngle, len(prizes)) != idx {
			rep.mislanded++
		}
	}
	return rep, nil
}

func (r report) print(out *os.File) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "#\tprize\teligible\tcount\tshare\texpected\n")
	for i, row := range r.rows {
		expected := 0.0
		if row.eligible && r.eligible > 0 {
			expected = 100 / float64(r.eligible)
		}
		fmt.Fprintf(tw, "%d\t%s %s\t%t\t%d\t%.2f%%\t%.2f%%\n",
			i, row.prize.Icon, row.prize.Name, row.eligible, row.count,
			100*float64(row.count)/float64(r.spins), expected)
	}
	_ = tw.Flush()

	fmt.Fprintf(out, "\nspins: %d  blocked: %q  fallback: %d  mislanded: %d\n", r.spins, r.blocked, r.fallback, r.mislanded)
	fmt.Fprintf(out, "full rotations: %d..%d  last final angle: %.2f\n", r.minTurns, r.maxTurns, r.lastResult.FinalAngle)
}
