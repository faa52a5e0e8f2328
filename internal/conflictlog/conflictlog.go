// Package conflictlog appends conflict records to the append-only
// conflicts.log in the state directory. The engine only ever writes the
// log; it is read by humans and the conflicts CLI command.
package conflictlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileName is the conflict log's name inside the state directory.
const FileName = "conflicts.log"

// Record is one conflicting field in one cycle, JSON-lines encoded.
type Record struct {
	At          time.Time `json:"at"`
	CanonicalID string    `json:"canonicalId"`
	Field       string    `json:"field"`
	Providers   []string  `json:"providers"`
	Winner      string    `json:"winner"`
	Overwritten []string  `json:"overwritten"`
}

// Append writes records to the log, one JSON object per line. Best-effort
// by contract: callers log failures and carry on with the cycle.
func Append(dir string, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	path := filepath.Join(dir, FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600) // #nosec G304 -- path inside the state dir
	if err != nil {
		return fmt.Errorf("opening conflict log: %w", err)
	}
	defer func() { _ = f.Close() }()

	for _, r := range records {
		line, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshaling conflict record: %w", err)
		}
		if _, err := fmt.Fprintln(f, string(line)); err != nil {
			return fmt.Errorf("writing conflict record: %w", err)
		}
	}
	return nil
}

// Tail reads the last n records from the log. A missing log yields no
// records, matching a state dir that never saw a conflict.
func Tail(dir string, n int) ([]Record, error) {
	path := filepath.Join(dir, FileName)
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening conflict log: %w", err)
	}
	defer func() { _ = f.Close() }()

	var records []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var r Record
		if err := json.Unmarshal(line, &r); err != nil {
			// A torn trailing line from a crashed writer is not fatal.
			continue
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading conflict log: %w", err)
	}

	if n > 0 && len(records) > n {
		records = records[len(records)-n:]
	}
	return records, nil
}
