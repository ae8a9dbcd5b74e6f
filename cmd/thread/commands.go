/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"threads/internal/clipboard"
	"threads/internal/config"
	"threads/internal/domain"
	"threads/internal/export"
	"threads/internal/picker"
	"threads/internal/storage"
)

type app struct {
	cfg     config.Config
	dataDir string
	log     *slog.Logger
}

// pickThread is swapped out in tests; picker.Run needs a TTY.
var pickThread = picker.Run

func (a *app) fatal(err error) {
	a.log.Error("command failed", slog.Any("err", err))
	fmt.Println("Error:", err)
	os.Exit(1)
}

func (a *app) usageError(msg string) {
	fmt.Println(msg)
	usage()
	os.Exit(2)
}

func (a *app) mustOpen(ctx context.Context) *storage.Store {
	st, err := storage.Open(ctx, storage.Options{
		Dir:        a.dataDir,
		BackupKeep: a.cfg.Storage.BackupKeep,
	})
	if err != nil {
		a.fatal(err)
	}
	return st
}

// maybeBackup runs before record-mutating commands. Failure never blocks the
// command itself.
func (a *app) maybeBackup(ctx context.Context, st *storage.Store) {
	if !a.cfg.Storage.Backups {
		return
	}
	if _, err := st.Backup(ctx); err != nil {
		a.log.Warn("backup before write failed", slog.Any("err", err))
	}
}

func (a *app) parseID(arg string) int64 {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		a.usageError(fmt.Sprintf("invalid thread id %q", arg))
	}
	return id
}

func (a *app) cmdNew(args []string) {
	words, tags, _ := splitArgs(args)
	if len(words) == 0 {
		a.usageError("new requires a question")
	}
	question := strings.Join(words, " ")

	ctx := context.Background()
	st := a.mustOpen(ctx)
	defer func() { _ = st.Close() }()
	a.maybeBackup(ctx, st)

	th, err := st.CreateThread(ctx, question)
	if err != nil {
		a.fatal(err)
	}
	if len(tags) > 0 {
		if err := st.TagThread(ctx, th.ID, tags...); err != nil {
			a.fatal(err)
		}
	}
	fmt.Printf("Started thread #%d: %s\n", th.ID, th.Question)
	if stored, err := st.Tags(ctx, th.ID); err == nil && len(stored) > 0 {
		fmt.Printf("Tags: %s\n", strings.Join(stored, ", "))
	}
}

func (a *app) cmdAttach(args []string) {
	words, tags, _ := splitArgs(args)
	content := strings.Join(words, " ")
	if strings.TrimSpace(content) == "" {
		clip, err := clipboard.Read()
		if err != nil {
			a.log.Warn("clipboard read failed", slog.Any("err", err))
		}
		content = clip
	}
	if strings.TrimSpace(content) == "" {
		fmt.Println("Error: no content given and the clipboard is empty")
		os.Exit(1)
	}

	ctx := context.Background()
	st := a.mustOpen(ctx)
	defer func() { _ = st.Close() }()
	a.maybeBackup(ctx, st)

	recent, err := st.RecentThreads(ctx, a.cfg.Display.Recent)
	if err != nil {
		a.fatal(err)
	}
	target, created, proceed := a.chooseThread(ctx, st, recent)
	if !proceed {
		fmt.Println("Cancelled.")
		return
	}

	res, err := st.AttachResource(ctx, target.ID, content)
	if err != nil {
		a.fatal(err)
	}
	if len(tags) > 0 {
		if err := st.TagThread(ctx, target.ID, tags...); err != nil {
			a.fatal(err)
		}
	}
	if created {
		fmt.Printf("Started thread #%d: %s\n", target.ID, target.Question)
	}
	kind := "text"
	if domain.ClassifyContent(content) == domain.ResourceURL {
		kind = "URL"
	}
	fmt.Printf("Attached %s resource #%d to thread #%d: %s\n", kind, res.ID, target.ID, target.Question)
}

// chooseThread runs the picker over the recent threads. When no TTY is
// available it falls back to the current thread.
func (a *app) chooseThread(ctx context.Context, st *storage.Store, recent []domain.ThreadSummary) (domain.Thread, bool, bool) {
	outcome, err := pickThread(recent)
	if err != nil {
		a.log.Warn("picker unavailable, falling back to current thread", slog.Any("err", err))
		cur, cerr := st.CurrentThread(ctx, false)
		if cerr != nil {
			a.fatal(fmt.Errorf("no thread to attach to: %w", cerr))
		}
		return cur, false, true
	}

	switch outcome.Action {
	case picker.ActionPick:
		th, err := st.GetThread(ctx, outcome.ThreadID)
		if err != nil {
			a.fatal(err)
		}
		return th, false, true
	case picker.ActionNew:
		th, err := st.CreateThread(ctx, outcome.Question)
		if err != nil {
			a.fatal(err)
		}
		return th, true, true
	default:
		return domain.Thread{}, false, false
	}
}

func (a *app) cmdLs(args []string) {
	_, _, all := splitArgs(args)

	ctx := context.Background()
	st := a.mustOpen(ctx)
	defer func() { _ = st.Close() }()

	list, err := st.ListThreads(ctx, all, 50)
	if err != nil {
		a.fatal(err)
	}
	if len(list) == 0 {
		if all {
			fmt.Println("No threads yet. Start one with: thread new <question>")
		} else {
			fmt.Println("No active threads. Start one with: thread new <question>")
		}
		return
	}
	fmt.Print(renderTable(list))
}

func (a *app) cmdView(args []string) {
	if len(args) < 1 {
		a.usageError("view requires <id>")
	}
	id := a.parseID(args[0])

	ctx := context.Background()
	st := a.mustOpen(ctx)
	defer func() { _ = st.Close() }()

	if err := st.TouchThread(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fmt.Printf("Thread #%d not found\n", id)
			os.Exit(1)
		}
		a.fatal(err)
	}
	th, err := st.GetThread(ctx, id)
	if err != nil {
		a.fatal(err)
	}
	fmt.Print(renderThread(th, true))
}

func (a *app) cmdCurrent(args []string) {
	_, _, all := splitArgs(args)

	ctx := context.Background()
	st := a.mustOpen(ctx)
	defer func() { _ = st.Close() }()

	th, err := st.CurrentThread(ctx, all)
	if errors.Is(err, storage.ErrNotFound) {
		if all {
			fmt.Println("No threads yet. Start one with: thread new <question>")
		} else {
			fmt.Println("No active threads. Start one with: thread new <question>")
		}
		return
	}
	if err != nil {
		a.fatal(err)
	}
	if err := st.TouchThread(ctx, th.ID); err != nil {
		a.fatal(err)
	}
	th, err = st.GetThread(ctx, th.ID)
	if err != nil {
		a.fatal(err)
	}
	fmt.Print(renderThread(th, true))
}

func (a *app) cmdArchive(args []string) {
	a.setArchived(args, true)
}

func (a *app) cmdUnarchive(args []string) {
	a.setArchived(args, false)
}

func (a *app) setArchived(args []string, archived bool) {
	verb := "archive"
	if !archived {
		verb = "unarchive"
	}
	if len(args) < 1 {
		a.usageError(verb + " requires <id>")
	}
	id := a.parseID(args[0])

	ctx := context.Background()
	st := a.mustOpen(ctx)
	defer func() { _ = st.Close() }()
	a.maybeBackup(ctx, st)

	th, err := st.GetThread(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		fmt.Printf("Thread #%d not found\n", id)
		os.Exit(1)
	}
	if err != nil {
		a.fatal(err)
	}
	if th.Archived == archived {
		if archived {
			fmt.Printf("Thread #%d is already archived.\n", id)
		} else {
			fmt.Printf("Thread #%d is not archived.\n", id)
		}
		return
	}

	if archived {
		err = st.ArchiveThread(ctx, id)
	} else {
		err = st.UnarchiveThread(ctx, id)
	}
	if err != nil {
		a.fatal(err)
	}
	if archived {
		fmt.Printf("Archived thread #%d: %s\n", id, th.Question)
	} else {
		fmt.Printf("Unarchived thread #%d: %s\n", id, th.Question)
	}
}

func (a *app) cmdExport(args []string) {
	var idArg, pdfPath string
	for i := 0; i < len(args); i++ {
		if args[i] == "--pdf" {
			if i+1 >= len(args) {
				a.usageError("--pdf requires a file path")
			}
			pdfPath = args[i+1]
			i++
			continue
		}
		if idArg == "" {
			idArg = args[i]
		}
	}
	if idArg == "" {
		a.usageError("export requires <id>")
	}
	id := a.parseID(idArg)

	ctx := context.Background()
	st := a.mustOpen(ctx)
	defer func() { _ = st.Close() }()

	th, err := st.GetThread(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		fmt.Printf("Thread #%d not found\n", id)
		os.Exit(1)
	}
	if err != nil {
		a.fatal(err)
	}

	if pdfPath != "" {
		if err := export.WritePDF(th, pdfPath); err != nil {
			a.fatal(err)
		}
		fmt.Printf("Wrote %s\n", pdfPath)
		return
	}

	doc := export.Document(th)
	fmt.Print(doc)
	if !strings.HasSuffix(doc, "\n") {
		fmt.Println()
	}
	fmt.Println()
	if err := clipboard.Write(doc); err != nil {
		a.log.Warn("clipboard write failed", slog.Any("err", err))
		fmt.Println("(could not copy to clipboard)")
	} else {
		fmt.Println("Copied to clipboard.")
	}
}

func (a *app) cmdDump(args []string) {
	outFile := "threads-dump.json"
	if len(args) > 0 && !strings.HasPrefix(args[0], "--") {
		outFile = args[0]
	}

	ctx := context.Background()
	st := a.mustOpen(ctx)
	defer func() { _ = st.Close() }()

	arch, err := st.Dump(ctx)
	if err != nil {
		a.fatal(err)
	}
	out, err := json.MarshalIndent(arch, "", "  ")
	if err != nil {
		a.fatal(err)
	}
	if err := os.WriteFile(outFile, out, 0o644); err != nil {
		a.fatal(err)
	}

	resources, tags := 0, 0
	for _, th := range arch.Threads {
		resources += len(th.Resources)
		tags += len(th.Tags)
	}
	fmt.Printf("Dumped to %s\n", outFile)
	fmt.Printf("  Threads:   %d\n", len(arch.Threads))
	fmt.Printf("  Resources: %d\n", resources)
	fmt.Printf("  Tags:      %d\n", tags)
}

func (a *app) cmdRestore(args []string) {
	if len(args) < 1 {
		a.usageError("restore requires <file>")
	}
	inFile := args[0]

	raw, err := os.ReadFile(inFile)
	if err != nil {
		a.fatal(fmt.Errorf("read %s: %w", inFile, err))
	}
	var arch domain.Archive
	if err := json.Unmarshal(raw, &arch); err != nil {
		a.fatal(fmt.Errorf("parse %s: %w", inFile, err))
	}

	ctx := context.Background()
	st := a.mustOpen(ctx)
	defer func() { _ = st.Close() }()
	a.maybeBackup(ctx, st)

	res, err := st.Restore(ctx, arch)
	if err != nil {
		a.fatal(err)
	}
	fmt.Printf("Restored from %s\n", inFile)
	fmt.Printf("  Threads:   %d\n", res.Threads)
	fmt.Printf("  Resources: %d\n", res.Resources)
	fmt.Printf("  Tags:      %d\n", res.Tags)
}
