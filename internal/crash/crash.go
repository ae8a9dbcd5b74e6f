/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns an uncaught panic into a written report file plus a
// short stderr notice.
package crash

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	applog "threads/internal/log"
	"threads/internal/version"
)

// exitFn is swapped in tests so Recover can run without killing the process.
var exitFn = os.Exit

// Recover captures a panic, logs it with the stack, writes a crash report
// into the data directory, and exits with code 2. It must be deferred
// directly (defer crash.Recover(dir)); recover does not fire from a nested
// call.
func Recover(dataDir string) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()

	path, err := writeReport(dataDir, r, stack)
	if err != nil {
		l.Error("crash report not written", slog.Any("err", err), slog.String("path", path))
	}
	l.Error("panic recovered", slog.Any("panic", r), slog.String("report", path), slog.String("stack", string(stack)))

	notice := fmt.Sprintf("A fatal error occurred. A crash report was saved to: %s\nVersion: %s\nOS/Arch: %s/%s\n",
		path, version.String(), runtime.GOOS, runtime.GOARCH)
	if _, err := io.WriteString(os.Stderr, notice); err != nil {
		l.Error("crash notice not written to stderr", slog.Any("err", err))
	}
	exitFn(2)
}

// writeReport drops the report beside the database; before the data dir
// exists it falls back to the system temp dir.
func writeReport(dataDir string, panicVal any, stack []byte) (string, error) {
	dir := os.TempDir()
	if dataDir != "" {
		dir = dataDir
		_ = os.MkdirAll(dir, 0o755)
	}
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", time.Now().Format("20060102-150405")))

	var b strings.Builder
	fmt.Fprintf(&b, "Threads Crash Report\n")
	fmt.Fprintf(&b, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&b, "Version: %s\n", version.String())
	fmt.Fprintf(&b, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if dataDir != "" {
		fmt.Fprintf(&b, "DataDir: %s\n", dataDir)
	}
	fmt.Fprintf(&b, "\nPanic: %v\n\nStack:\n%s\n", panicVal, stack)

	return path, os.WriteFile(path, []byte(b.String()), 0o644)
}
