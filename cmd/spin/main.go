// Command spin is a small deterministic workload for exercising tictoc:
// it sleeps or busy-loops for the requested duration and exits.
package main

import (
	"flag"
	"log"
	"time"

	"go.sazak.io/tictoc/stopwatch"
	"go.sazak.io/tictoc/timespec"
)

var (
	duration = flag.Duration("d", time.Second, "How long to run")
	busy     = flag.Bool("busy", false, "Busy-loop instead of sleeping")
	quiet    = flag.Bool("q", false, "Do not print the measured duration on exit")
)

func main() {
	log.SetPrefix("spin: ")
	log.SetFlags(log.Ltime)

	flag.Parse()
	if *duration <= 0 {
		log.Fatal("-d must be positive")
	}

	var sw stopwatch.Stopwatch
	sw.Start()

	if *busy {
		target := duration.Nanoseconds()
		start := timespec.Now()
		for timespec.Now().Sub(start).Nanoseconds() < target {
		}
	} else {
		time.Sleep(*duration)
	}

	sw.StopMeasure()

	if !*quiet {
		log.Printf("ran for %f s (%d ns)", sw.Elapsed().Seconds(), sw.Elapsed().Nanoseconds())
	}
}
