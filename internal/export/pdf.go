/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"threads/internal/domain"
)

// WritePDF renders the thread as an A4 portrait PDF at outPath: title,
// status/created/tags metadata, then one block per resource mirroring the
// text document. Built-in Helvetica keeps text vector without embedding.
func WritePDF(th domain.Thread, outPath string) error {
	if strings.TrimSpace(outPath) == "" {
		return fmt.Errorf("output path is required")
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Thread #%d: %s", th.ID, th.Question), false)
	pdf.SetAuthor("threads", false)
	pdf.SetMargins(54, 54, 54)
	pdf.SetAutoPageBreak(true, 54)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 20, fmt.Sprintf("Thread #%d: %s", th.ID, th.Question), "", "L", false)
	pdf.Ln(4)

	status := "ACTIVE"
	if th.Archived {
		status = "ARCHIVED"
	}
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 14, fmt.Sprintf("Status: %s", status), "", "L", false)
	pdf.MultiCell(0, 14, fmt.Sprintf("Created: %s", th.CreatedAt.Format(timeStamp)), "", "L", false)
	if len(th.Tags) > 0 {
		pdf.MultiCell(0, 14, fmt.Sprintf("Tags: %s", strings.Join(th.Tags, ", ")), "", "L", false)
	}
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.MultiCell(0, 16, "Resources", "", "L", false)
	pdf.Ln(2)
	for i, r := range th.Resources {
		label := "TEXT"
		if r.Kind() == domain.ResourceURL {
			label = "URL"
		}
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 14, fmt.Sprintf("%d. [%s] - %s", i+1, label, r.CreatedAt.Format(timeStamp)), "", "L", false)
		if label == "TEXT" && looksLikeCode(r.Content) {
			pdf.SetFont("Courier", "", 10)
		} else {
			pdf.SetFont("Helvetica", "", 11)
		}
		pdf.MultiCell(0, 14, r.Content, "", "L", false)
		pdf.Ln(8)
	}

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure out dir: %w", err)
		}
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
