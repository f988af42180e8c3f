package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/showdown-ml/battle-features/internal/models"
	"github.com/showdown-ml/battle-features/internal/testutils"
)

func main() {
	apiURL := flag.String("url", "http://localhost:8080/api/v1/ingest/battles", "ingest endpoint")
	in := flag.String("in", "", "JSONL battle log to post (default: built-in sample battles)")
	flag.Parse()

	payload, err := loadPayload(*in)
	if err != nil {
		log.Fatalf("Failed to build payload: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, *apiURL, bytes.NewReader(payload))
	if err != nil {
		log.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-ndjson")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("Failed to send request: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("Status: %s\n", resp.Status)

	var result models.IngestResponse
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Response: %s\n", string(body))
	} else {
		fmt.Printf("Processed: %d  Duplicates: %d  Invalid: %d  (%s)\n",
			result.Processed, result.Duplicates, result.Invalid, result.Status)
	}

	if resp.StatusCode != http.StatusAccepted {
		os.Exit(1)
	}
}

// loadPayload reads the log file as is, or encodes the sample battles one
// JSON object per line.
func loadPayload(path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, b := range testutils.SampleBattles() {
		if err := enc.Encode(b); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
