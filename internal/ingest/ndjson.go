// Package ingest loads upstream capture data — NDJSON files, the native
// Polymarket-CLOB wire shape, or a live WebSocket tail — and normalizes it
// into the BookSnapshot sequences the replay engine consumes.
package ingest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dapdevsoftware/phantomfill/pkg/types"
)

// LoadNDJSON reads a newline-delimited JSON capture file, one RawTick per
// line, and returns them in file order (not yet sorted or normalized).
func LoadNDJSON(path string) ([]types.RawTick, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ndjson capture %s: %w", path, err)
	}
	defer f.Close()

	var ticks []types.RawTick
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var tick types.RawTick
		if err := json.Unmarshal(line, &tick); err != nil {
			return nil, fmt.Errorf("parse ndjson line %d of %s: %w", lineNum, path, err)
		}
		ticks = append(ticks, tick)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ndjson capture %s: %w", path, err)
	}

	return ticks, nil
}
