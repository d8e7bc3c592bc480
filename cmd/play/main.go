package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"glassbox/internal/persistence/indexdb"
	ticklog "glassbox/internal/persistence/log"
	"glassbox/internal/protocol"
	"glassbox/internal/sim/scenario"
	"glassbox/internal/sim/script"
	"glassbox/internal/sim/tuning"
	"glassbox/internal/sim/world"
	"glassbox/internal/transport/observer"
)

func main() {
	var (
		scriptPath = flag.String("script", "configs/TestCity.txt", "simulation script")
		tuningPath = flag.String("tuning", "", "tuning.yaml (optional)")
		seed       = flag.Int64("seed", -1, "override RNG seed (-1 keeps tuning value)")
		duration   = flag.Float64("duration", -1, "override simulated seconds (-1 keeps tuning value)")
	)
	flag.Parse()

	tun := tuning.Default()
	if *tuningPath != "" {
		var err error
		tun, err = tuning.Load(*tuningPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "tuning:", err)
			os.Exit(1)
		}
	}
	if *seed >= 0 {
		tun.Seed = *seed
	}
	if *duration >= 0 {
		tun.DurationSeconds = *duration
	}

	cat, err := script.ParseFile(*scriptPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	sim := world.NewSimulation(tun.GridU, tun.GridV, tun.Seed)
	sim.SetCatalog(cat)

	listeners := []world.Listener{}

	recorder := ticklog.NewRecorder()
	listeners = append(listeners, recorder)

	runDir := filepath.Join(tun.DataDir, time.Now().UTC().Format("run-20060102-150405"))
	logger := ticklog.NewTickLogger(runDir)
	defer logger.Close()

	var index *indexdb.SQLiteIndex
	var runID int64
	if tun.IndexDB != "" {
		index, err = indexdb.OpenSQLite(tun.IndexDB)
		if err != nil {
			fmt.Fprintln(os.Stderr, "indexdb:", err)
			os.Exit(1)
		}
		defer index.Close()
		runID, err = index.BeginRun(indexdb.RunMeta{
			Scenario: filepath.Base(*scriptPath),
			Seed:     tun.Seed,
			GridU:    tun.GridU,
			GridV:    tun.GridV,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "indexdb:", err)
			os.Exit(1)
		}
	}

	var obs *observer.Server
	if tun.ObserverAddr != "" {
		obs = observer.NewServer(func() protocol.BootstrapResponse {
			resp := protocol.BootstrapResponse{
				ProtocolVersion: protocol.Version,
				ScenarioName:    filepath.Base(*scriptPath),
				Tick:            sim.Tick(),
				GridU:           tun.GridU,
				GridV:           tun.GridV,
				Seed:            tun.Seed,
				TickRateHz:      world.TicksPerSecond,
			}
			for _, c := range sim.Cities() {
				resp.Cities = append(resp.Cities, c.Name())
			}
			return resp
		})
		listeners = append(listeners, observer.NewEventListener(sim, obs))

		mux := http.NewServeMux()
		mux.HandleFunc("/bootstrap", obs.BootstrapHandler())
		mux.HandleFunc("/ws", obs.WSHandler())
		go func() {
			if err := http.ListenAndServe(tun.ObserverAddr, mux); err != nil {
				log.Println("observer:", err)
			}
		}()
	}

	sim.SetListener(fanListener(listeners))

	if err := scenario.BuildDemoCities(sim); err != nil {
		fmt.Fprintln(os.Stderr, "setup:", err)
		os.Exit(1)
	}

	totalTicks := uint64(tun.DurationSeconds * world.TicksPerSecond)
	logEvery := uint64(tun.TickLogEveryTicks)
	if logEvery == 0 {
		logEvery = 1
	}

	for i := uint64(0); i < totalTicks; i++ {
		sim.Step()
		tick := sim.Tick()

		events := recorder.Drain()
		digest := sim.StateDigest()
		agents := 0
		for _, c := range sim.Cities() {
			agents += len(c.Agents())
		}

		if tick%logEvery == 0 {
			if err := logger.WriteTick(ticklog.TickLogEntry{
				Tick:   tick,
				Events: events,
				Digest: digest,
				Agents: agents,
			}); err != nil {
				fmt.Fprintln(os.Stderr, "tick log:", err)
				os.Exit(1)
			}
		}
		if index != nil {
			index.RecordTick(runID, tick, digest, agents, len(events))
		}
		if obs != nil {
			obs.PublishTick(protocol.TickMsg{
				Type:            protocol.TypeTick,
				ProtocolVersion: protocol.Version,
				Tick:            tick,
				Digest:          digest,
				Agents:          agents,
			})
		}
	}

	fmt.Printf("ran %d ticks (%.1fs simulated), final digest %s\n",
		totalTicks, tun.DurationSeconds, sim.StateDigest())
	fmt.Println("tick log:", runDir)
}

// fanListener forwards every callback to each sink in order.
type fanListener []world.Listener

func (f fanListener) OnCityAdded(c *world.City) {
	for _, l := range f {
		l.OnCityAdded(c)
	}
}

func (f fanListener) OnUnitAdded(u *world.Unit) {
	for _, l := range f {
		l.OnUnitAdded(u)
	}
}

func (f fanListener) OnAgentAdded(a *world.Agent) {
	for _, l := range f {
		l.OnAgentAdded(a)
	}
}

func (f fanListener) OnAgentRemoved(a *world.Agent) {
	for _, l := range f {
		l.OnAgentRemoved(a)
	}
}

func (f fanListener) OnWarning(c *world.City, msg string) {
	for _, l := range f {
		l.OnWarning(c, msg)
	}
}
