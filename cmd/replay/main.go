package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"glassbox/internal/persistence/indexdb"
	ticklog "glassbox/internal/persistence/log"
	"glassbox/internal/sim/scenario"
	"glassbox/internal/sim/script"
	"glassbox/internal/sim/world"
)

// replay re-simulates a recorded run from its script and seed, verifying
// the state digest of every logged tick. A mismatch means either the log is
// corrupt or determinism broke.
func main() {
	var (
		ticksDir   = flag.String("ticks", "", "ticks dir containing ticks-*.jsonl.zst")
		scriptPath = flag.String("script", "configs/TestCity.txt", "simulation script of the run")
		seed       = flag.Int64("seed", 0, "seed of the run")
		gridU      = flag.Uint("grid_u", 32, "grid width of the run")
		gridV      = flag.Uint("grid_v", 32, "grid height of the run")
		indexPath  = flag.String("index", "", "cross-check digests against this index db (optional)")
		toTick     = flag.Uint64("to_tick", 0, "stop at tick (inclusive, optional)")
	)
	flag.Parse()

	if *ticksDir == "" {
		fmt.Fprintln(os.Stderr, "missing -ticks")
		os.Exit(2)
	}

	cat, err := script.ParseFile(*scriptPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	sim := world.NewSimulation(uint32(*gridU), uint32(*gridV), *seed)
	sim.SetCatalog(cat)
	if err := scenario.BuildDemoCities(sim); err != nil {
		fmt.Fprintln(os.Stderr, "setup:", err)
		os.Exit(1)
	}

	var index *indexdb.SQLiteIndex
	var runID int64
	if *indexPath != "" {
		index, err = indexdb.OpenSQLite(*indexPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "indexdb:", err)
			os.Exit(1)
		}
		defer index.Close()
		runID, _, err = index.LatestRun()
		if err != nil {
			fmt.Fprintln(os.Stderr, "indexdb:", err)
			os.Exit(1)
		}
	}

	files, err := listTickFiles(*ticksDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list ticks:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no tick files found in", *ticksDir)
		os.Exit(1)
	}

	var checked uint64
	for _, path := range files {
		stop, err := replayFile(sim, index, runID, path, *toTick, &checked)
		if err != nil {
			fmt.Fprintln(os.Stderr, "replay:", err)
			os.Exit(1)
		}
		if stop {
			break
		}
	}
	fmt.Printf("replay ok: checked=%d ticks\n", checked)
}

func listTickFiles(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "ticks-") && strings.HasSuffix(name, ".jsonl.zst") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}

func replayFile(sim *world.Simulation, index *indexdb.SQLiteIndex, runID int64, path string, toTick uint64, checked *uint64) (stop bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return false, err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)

	for sc.Scan() {
		line := sc.Bytes()
		var entry ticklog.TickLogEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return false, fmt.Errorf("%s: unmarshal: %w", filepath.Base(path), err)
		}
		if toTick != 0 && entry.Tick > toTick {
			return true, nil
		}

		for sim.Tick() < entry.Tick {
			sim.Step()
		}
		if sim.Tick() != entry.Tick {
			return false, fmt.Errorf("tick mismatch: want=%d got=%d (file=%s)", entry.Tick, sim.Tick(), filepath.Base(path))
		}

		*checked++
		got := sim.StateDigest()
		if got != entry.Digest {
			return false, fmt.Errorf("digest mismatch at tick %d: got=%s want=%s", entry.Tick, got, entry.Digest)
		}

		if index != nil {
			want, ok, err := index.Digest(runID, entry.Tick)
			if err != nil {
				return false, fmt.Errorf("indexdb at tick %d: %w", entry.Tick, err)
			}
			if ok && want != got {
				return false, fmt.Errorf("index digest mismatch at tick %d: got=%s want=%s", entry.Tick, got, want)
			}
		}
	}
	return false, sc.Err()
}
