/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"log/slog"
	"os"

	"threads/internal/config"
	"threads/internal/crash"
	applog "threads/internal/log"
	"threads/internal/version"
)

func usage() {
	fmt.Println("threads - keep track of what you are trying to figure out")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  thread new <question...> [--deep] [--<tag>]   Start a thread; extra --flags become tags")
	fmt.Println("  thread attach [content...] [--<tag>]          Attach text/URL (clipboard when empty), pick the thread")
	fmt.Println("  thread ls [--all]                             List threads, most recently active first")
	fmt.Println("  thread view <id>                              Show one thread and mark it active")
	fmt.Println("  thread current [--all]                        Show the most recently active thread")
	fmt.Println("  thread archive <id>                           Hide a finished thread from listings")
	fmt.Println("  thread unarchive <id>                         Bring an archived thread back")
	fmt.Println("  thread export <id> [--pdf <file>]             Render a thread to clipboard/stdout, or to a PDF")
	fmt.Println("  thread dump [file]                            Write a JSON archive of every thread")
	fmt.Println("  thread restore <file>                         Merge a JSON archive back in")
	fmt.Println("  thread version|-v|--version                   Show version")
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")

	cfg, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
	}
	applyColorMode(cfg.Display.Color)

	dataDir, err := cfg.DataDir()
	if err != nil {
		l.Error("resolve data dir failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	// recover only works when Recover itself is the deferred frame
	defer crash.Recover(dataDir)

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage()
		return
	}

	a := &app{cfg: cfg, dataDir: dataDir, log: l}
	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println(version.String())
	case "help", "--help", "-h":
		usage()
	case "new":
		a.cmdNew(args[2:])
	case "attach":
		a.cmdAttach(args[2:])
	case "ls":
		a.cmdLs(args[2:])
	case "view":
		a.cmdView(args[2:])
	case "current":
		a.cmdCurrent(args[2:])
	case "archive":
		a.cmdArchive(args[2:])
	case "unarchive":
		a.cmdUnarchive(args[2:])
	case "export":
		a.cmdExport(args[2:])
	case "dump":
		a.cmdDump(args[2:])
	case "restore":
		a.cmdRestore(args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[1])
		usage()
		os.Exit(2)
	}
}

// applyColorMode wires the display.color setting through the env conventions
// lipgloss already honors.
func applyColorMode(mode string) {
	switch mode {
	case "never":
		_ = os.Setenv("NO_COLOR", "1")
	case "always":
		_ = os.Setenv("CLICOLOR_FORCE", "1")
	}
}
