/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// The file sink stays open inside lumberjack after the test, so the file
// lives in the system temp dir rather than t.TempDir (Windows cannot remove
// a directory holding an open handle).
func TestInitWithFileSinkWritesJSON(t *testing.T) {
	fpath := filepath.Join(os.TempDir(), fmt.Sprintf("threads_log_%d.json", time.Now().UnixNano()))
	t.Cleanup(func() { os.Remove(fpath) })

	Init(Options{Level: "debug", Format: "json", File: fpath})

	l := WithOperation(WithComponent("storage"), "open")
	l.Info("database ready", slog.String("path", "threads.db"))

	var data []byte
	deadline := time.Now().Add(2 * time.Second)
	for {
		data, _ = os.ReadFile(fpath)
		if len(data) > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if len(data) == 0 {
		t.Fatalf("log file %s is still empty", fpath)
	}

	// Keep the last record; Init's With attrs and the contextual ones must
	// all be present on it.
	var rec map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		rec = nil
		if err := dec.Decode(&rec); err != nil {
			t.Fatalf("decode log record: %v", err)
		}
	}
	if rec == nil {
		t.Fatalf("no records decoded from %s", fpath)
	}

	want := map[string]string{
		"app":       "threads",
		"component": "storage",
		"op":        "open",
		"msg":       "database ready",
		"path":      "threads.db",
	}
	for k, v := range want {
		if rec[k] != v {
			t.Errorf("record[%q] = %v, want %q", k, rec[k], v)
		}
	}
	if _, ok := rec["ver"].(string); !ok {
		t.Errorf("record missing ver attr: %v", rec)
	}
}
