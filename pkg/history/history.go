// Copyright 2020 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package history

import (
	"bufio"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pingcap/errors"
)

// Record is the outcome of one executed statement.
type Record struct {
	RunID        string        `json:"run_id"`
	Round        int           `json:"round"`
	TaskID       int           `json:"task_id"`
	Index        int           `json:"index"`
	ClientID     int           `json:"client_id"`
	SQL          string        `json:"sql"`
	Success      bool          `json:"success"`
	RowsAffected int64         `json:"rows_affected"`
	Error        string        `json:"error,omitempty"`
	ErrorClass   string        `json:"error_class,omitempty"`
	Duration     time.Duration `json:"duration"`
}

// Recorder appends records to a history file, one JSON object per line.
type Recorder struct {
	sync.Mutex
	runID string
	f     *os.File
	w     *bufio.Writer
}

// NewRecorder creates a recorder writing to name. Every recorder has its own run id.
func NewRecorder(name string) (*Recorder, error) {
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.Trace(err)
	}

	return &Recorder{
		runID: uuid.New().String(),
		f:     f,
		w:     bufio.NewWriter(f),
	}, nil
}

// RunID returns the id stamped on every record.
func (r *Recorder) RunID() string {
	return r.runID
}

// Record writes rec. A nil recorder drops it.
func (r *Recorder) Record(rec Record) error {
	if r == nil {
		return nil
	}
	r.Lock()
	defer r.Unlock()

	rec.RunID = r.runID
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Trace(err)
	}
	if _, err = r.w.Write(data); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(r.w.WriteByte('\n'))
}

// Close flushes and closes the history file.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	r.Lock()
	defer r.Unlock()

	if err := r.w.Flush(); err != nil {
		r.f.Close()
		return errors.Trace(err)
	}
	return errors.Trace(r.f.Close())
}

// ReadHistory reads all records from the history file.
func ReadHistory(name string) ([]Record, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	// statements in scripts may be long
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, errors.Annotatef(err, "decode history line %d", len(records)+1)
		}
		records = append(records, rec)
	}
	return records, errors.Trace(scanner.Err())
}
