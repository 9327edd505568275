package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"go.sazak.io/tictoc/cmd/tictoc/api"
	"go.sazak.io/tictoc/cmd/tictoc/storage"
	"go.sazak.io/tictoc/stopwatch"
	"go.sazak.io/tictoc/timespec"
)

var (
	runs    = flag.Int("n", 1, "Number of timed runs (laps)")
	warmup  = flag.Int("warmup", 0, "Number of untimed warmup runs")
	unitStr = flag.String("unit", "all", "Output unit: all, s, ms, us, or ns")

	// Web mode flags
	webMode       = flag.Bool("web", false, "Enable web mode with API server and WebSocket")
	webPort       = flag.Int("web-port", 8080, "Port for web API server")
	record        = flag.Bool("record", false, "Record laps to session storage (implied by -web)")
	storageFormat = flag.String("storage-format", "jsonl", "Storage format: jsonl, binary or sqlite")
	storageDir    = flag.String("storage-dir", "./sessions", "Directory for storing session data")

	silent                 = flag.Bool("s", false, "Enable silent mode")
	summaryFilePrefix      = flag.String("sfp", "", "Prefix for summary file name")
	summaryFileNoTimestamp = flag.Bool("sft", false, "Do not include timestamp in summary file name")
	noSummary              = flag.Bool("no-summary", false, "Do not write a summary file")
)

var (
	// Global storage and API server for web mode
	lapStore  storage.LapStore
	apiServer *api.Server
	session   *storage.Session
)

func main() {
	log.SetPrefix("tictoc: ")
	log.SetFlags(log.Ltime)

	flag.Parse()
	validateFlags()

	unit, err := parseUnit(*unitStr)
	if err != nil {
		log.Fatalf("Failed to parse unit: %v", err)
	}

	command := flag.Args()

	// Initialize recording if enabled
	if *webMode || *record {
		manager, err := storage.NewManager(*storageDir)
		must(err, "creating storage manager")

		session = &storage.Session{
			ID:        uuid.New().String(),
			StartTime: time.Now(),
			Command:   command[0],
			Args:      command[1:],
		}

		lapStore, err = manager.CreateSession(context.Background(), session, *storageFormat)
		must(err, "creating lap store")
		defer lapStore.Close()

		if *webMode {
			apiServer = api.NewServer(manager, *webPort)
			go func() {
				if err := apiServer.Start(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("API server error: %v", err)
				}
			}()
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := apiServer.Stop(ctx); err != nil {
					log.Printf("Error stopping API server: %v", err)
				}
			}()

			log.Printf("Web mode enabled: http://localhost:%d", *webPort)
		}

		// Update session on exit
		defer func() {
			endTime := time.Now()
			session.EndTime = &endTime
			if err := lapStore.UpdateSession(session); err != nil {
				log.Printf("Error updating session: %v", err)
			}
		}()

		log.Printf("Session ID: %s", session.ID)
		log.Printf("Storage format: %s", *storageFormat)
	}

	// Subscribe to signals for terminating the run early.
	stopper := make(chan os.Signal, 1)
	signal.Notify(stopper, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-stopper
		log.Printf("[Main] Received stop signal, finishing current run")
		cancel()
	}()

	for i := 0; i < *warmup; i++ {
		if ctx.Err() != nil {
			break
		}
		if !*silent {
			log.Printf("[Warmup %d/%d] %s", i+1, *warmup, command[0])
		}
		if err := runCommand(ctx, command); err != nil {
			log.Printf("[Warmup %d/%d] Command failed: %v", i+1, *warmup, err)
		}
	}

	var sw stopwatch.Stopwatch
	sw.Reset()

	lapDurationsNs := make([]int64, 0, *runs)
	failed := 0

	for i := 0; i < *runs; i++ {
		if ctx.Err() != nil {
			log.Printf("[Main] Stopping after %d of %d runs", i, *runs)
			break
		}

		sw.Start()
		runErr := runCommand(ctx, command)
		sw.Stop()
		sw.Lap()

		start, stop := sw.Interval()
		duration := stop.Sub(start)
		lapDurationsNs = append(lapDurationsNs, duration.Nanoseconds())

		if runErr != nil {
			failed++
			log.Printf("[Lap %d/%d] Command failed: %v", i+1, *runs, runErr)
		}

		if !*silent {
			log.Printf("[Lap %d/%d] %f s", i+1, *runs, duration.Seconds())
		}

		recordLap(uint64(i), start, stop, duration)
		publishStats(&sw, len(lapDurationsNs), duration, i+1 < *runs)
	}

	if !*silent {
		elapsed := sw.Elapsed()
		log.Printf("[Summary] %d runs, %d failed", len(lapDurationsNs), failed)
		for _, line := range formatElapsed(elapsed, unit) {
			log.Printf("[Summary] total: %s", line)
		}
		if n := len(lapDurationsNs); n > 0 {
			log.Printf("[Summary] mean: %f s", elapsed.Seconds()/float64(n))
		}
	}

	if !*noSummary {
		saveSummary(command, lapDurationsNs, sw.Elapsed(), *warmup, failed)
	}

	if *webMode && ctx.Err() == nil {
		log.Printf("[Main] Run complete, serving API until interrupted")
		<-ctx.Done()
	}
}

func must(err error, op string) {
	if err != nil {
		log.Fatalf("%s: %v", op, err)
	}
}

// runCommand executes one iteration of the timed command with inherited
// stdio. The returned error covers start failures and non-zero exits.
func runCommand(ctx context.Context, command []string) error {
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Stdin = os.Stdin
	if !*silent {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}
	return cmd.Run()
}

func recordLap(index uint64, start, stop, duration timespec.Timespec) {
	if lapStore == nil {
		return
	}

	lap := &storage.Lap{
		Index:    index,
		Start:    start,
		Stop:     stop,
		Duration: duration,
	}

	if err := lapStore.WriteLap(lap); err != nil {
		log.Printf("Failed to write lap to storage: %v", err)
	}

	session.LapCount++

	if apiServer != nil {
		apiServer.BroadcastLap(lap)
	}
}

func publishStats(sw *stopwatch.Stopwatch, laps int, lastLap timespec.Timespec, running bool) {
	if apiServer == nil {
		return
	}

	total := sw.Elapsed().Seconds()
	mean := 0.0
	if laps > 0 {
		mean = total / float64(laps)
	}

	apiServer.UpdateStats(&api.Stats{
		Laps:       int64(laps),
		LastLapSec: lastLap.Seconds(),
		TotalSec:   total,
		MeanSec:    mean,
		Running:    running,
	})
}

func validateFlags() {
	if *runs <= 0 {
		log.Fatal("-n must be positive")
	}

	if *warmup < 0 {
		log.Fatal("-warmup must not be negative")
	}

	if len(flag.Args()) == 0 {
		log.Fatal("a command to time must be provided, e.g. tictoc -n 5 sleep 1")
	}

	if *webMode && (*webPort <= 0 || *webPort > 65535) {
		log.Fatal("-web-port must be a valid port number")
	}
}
