package main

import (
	"encoding/json"
	"os"
	"time"

	"go.sazak.io/tictoc/timespec"
)

func saveSummary(
	command []string,
	lapDurationsNs []int64,
	total timespec.Timespec,
	warmupRuns int,
	failedRuns int,
) {
	var meanNs int64
	if len(lapDurationsNs) > 0 {
		meanNs = total.Nanoseconds() / int64(len(lapDurationsNs))
	}

	summary := struct {
		Command    []string `json:"command"`
		Runs       int      `json:"runs"`
		Warmup     int      `json:"warmup"`
		Failed     int      `json:"failed"`
		LapsNs     []int64  `json:"laps_ns"`
		TotalSec   float64  `json:"total_s"`
		TotalMs    int64    `json:"total_ms"`
		TotalUs    int64    `json:"total_us"`
		TotalNs    int64    `json:"total_ns"`
		MeanNs     int64    `json:"mean_ns"`
		FinishedAt string   `json:"finished_at"`
	}{
		Command:    command,
		Runs:       len(lapDurationsNs),
		Warmup:     warmupRuns,
		Failed:     failedRuns,
		LapsNs:     lapDurationsNs,
		TotalSec:   total.Seconds(),
		TotalMs:    total.Milliseconds(),
		TotalUs:    total.Microseconds(),
		TotalNs:    total.Nanoseconds(),
		MeanNs:     meanNs,
		FinishedAt: time.Now().UTC().Format(time.RFC3339),
	}

	b, err := json.MarshalIndent(summary, "", "  ")
	must(err, "marshaling summary data")

	prefix := *summaryFilePrefix
	if prefix != "" {
		prefix = "_" + prefix
	}
	filename := "summary"
	if !*summaryFileNoTimestamp {
		filename += "_" + time.Now().UTC().Format("2006-01-02-15-04-05")
	}
	filename += prefix
	filename += ".json"

	err = os.WriteFile(filename, b, 0666)
	must(err, "writing summary")
}
