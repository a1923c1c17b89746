package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

var maxDevices int = 1000
var logsPerDevice int = 500
var httpHostPort string = "127.0.0.1:1080"
var rawDir string = "data/raw"

var rnd *rand.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))

type rawRecord struct {
	Code                  string `json:"code"`
	Value                 any    `json:"value"`
	EventTime             int64  `json:"event_time"`
	DeviceID              string `json:"device_id"`
	IngestionTimestampUTC string `json:"ingestion_timestamp_utc"`
	IngestedBy            string `json:"ingested_by"`
}

func main() {
	deviceIDs := make([]string, maxDevices)
	for i := range maxDevices {
		deviceIDs[i] = uuid.NewString()
	}
	fmt.Printf("generated %v device IDs\n", maxDevices)

	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", httpHostPort))
	if err != nil {
		log.Fatal("Failed to connect to HTTP server:", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatal("HTTP server not available")
	}

	fmt.Printf("http server verified\n")

	var startTime time.Time
	var usedTime time.Duration

	startTime = time.Now()
	wg := sync.WaitGroup{}
	for i := range maxDevices {
		wg.Add(1)
		go func() {
			writeDeviceBatch(deviceIDs[i])
			fmt.Printf("\rwrote raw batch for device %v", i)
			wg.Done()
		}()
	}
	wg.Wait()
	usedTime = time.Since(startTime)

	fmt.Printf(
		"\rwrote raw batches for %v devices (%v logs each): used time=%v seconds, throughput=%v batch/second\n",
		maxDevices, logsPerDevice, usedTime.Seconds(), float64(maxDevices)/usedTime.Seconds(),
	)

	startTime = time.Now()
	triggerCompact()
	usedTime = time.Since(startTime)

	totalLogs := maxDevices * logsPerDevice
	fmt.Printf(
		"compacted %v logs across %v devices: used time=%v seconds, throughput=%v log/second\n",
		totalLogs, maxDevices, usedTime.Seconds(), float64(totalLogs)/usedTime.Seconds(),
	)
}

func rndFloat64(min, max float64, decimal int) float64 {
	val := min + rnd.Float64()*(max-min)
	multiplier := float64(math.Pow10(decimal))
	return float64(math.Round(float64(val)*float64(multiplier))) / multiplier
}

func writeDeviceBatch(deviceID string) {
	fetchedAt := time.Now().UTC()
	// spread event times over the last hour
	baseMs := fetchedAt.Add(-time.Hour).UnixMilli()

	records := make([]rawRecord, logsPerDevice)
	for i := range logsPerDevice {
		records[i] = rawRecord{
			Code:                  "cur_power",
			Value:                 fmt.Sprintf("%.2f", rndFloat64(0.0, 3000.0, 2)),
			EventTime:             baseMs + int64(rnd.Int31n(3600*1000)),
			DeviceID:              deviceID,
			IngestionTimestampUTC: fetchedAt.Format(time.RFC3339),
			IngestedBy:            "fleet1k_benchmark",
		}
	}

	eventDate := time.UnixMilli(records[0].EventTime).UTC().Format("2006-01-02")
	dir := filepath.Join(rawDir, deviceID, eventDate)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		panic(err)
	}

	raw, err := json.Marshal(records)
	if err != nil {
		panic(err)
	}

	name := fmt.Sprintf("%s_%s_logs.json", deviceID, fetchedAt.Format("20060102150405"))
	if err := os.WriteFile(filepath.Join(dir, name), raw, 0o644); err != nil {
		panic(err)
	}
}

func triggerCompact() {
	resp, err := http.Post(fmt.Sprintf("http://%s/pipeline/compact", httpHostPort), "application/json", bytes.NewBufferString("{}"))
	if err != nil {
		log.Fatal("Failed to trigger compaction:", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("compaction trigger failed with status %v", resp.StatusCode)
	}

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Fatal("Failed to decode compaction response:", err)
	}
	fmt.Printf("compaction response: %v\n", result)
}
