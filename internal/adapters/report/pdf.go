// Package report renders assessment and journal documents to PDF files.
// Layout follows the emailed report structure: title banner, confidentiality
// notice, prioritized info sections, and severity-ranked metric boxes.
package report

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/go-pdf/fpdf"

	"github.com/soulscript/persona-api/internal/domain"
)

// PDFRenderer implements domain.ReportRenderer.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// sectionPriority controls the order info sections appear in; everything
// else renders after these, alphabetically.
var sectionPriority = map[string]int{
	"personalInformation":    1,
	"mentalHealthHistory":    2,
	"traumaHistory":          3,
	"behavioralPatterns":     4,
	"employmentAndLifestyle": 5,
	"supportSystem":          6,
}

// RenderAssessment implements domain.ReportRenderer.
func (r *PDFRenderer) RenderAssessment(doc domain.AssessmentDocument, path string) error {
	pdf := newDocument(doc.Title, doc.GeneratedAt.Format("January 2, 2006"))

	writeNotice(pdf,
		"This report contains sensitive psychological information intended solely for therapeutic purposes.")

	for _, section := range orderedSections(doc.Info) {
		fields := presentableFields(doc.Info[section])
		if len(fields) == 0 {
			continue
		}

		writeSectionHeader(pdf, sectionTitle(section))
		for _, f := range fields {
			writeSubsection(pdf, f.Label)
			writeBody(pdf, f.Value)
		}
		pdf.Ln(4)
	}

	if len(doc.Graph) > 0 {
		pdf.AddPage()
		writeSectionHeader(pdf, "Psychological Metrics")
		writeSubsection(pdf, "Assessment Scores (Ranked by Severity)")

		ranked := (&domain.PersonaProfile{Graph: doc.Graph}).RankedEntries()
		for _, entry := range ranked {
			writeMetricBox(pdf, entry)
		}

		pdf.Ln(6)
		writeSubsection(pdf, "Score Interpretation Guide")
		writeBody(pdf, "Low (0-3): minimal concern, within normal range")
		writeBody(pdf, "Moderate (4-6): some attention needed, monitor progress")
		writeBody(pdf, "High (7-10): significant concern, priority for intervention")
	}

	writeFooter(pdf)
	return outputTo(pdf, path)
}

// RenderJournal implements domain.ReportRenderer.
func (r *PDFRenderer) RenderJournal(doc domain.JournalDocument, path string) error {
	pdf := newDocument(doc.Title, doc.GeneratedAt.Format("January 2, 2006"))

	if doc.ExecutiveSummary != "" {
		writeSectionHeader(pdf, "Executive Summary")
		writeMarkdownish(pdf, doc.ExecutiveSummary)
		pdf.Ln(4)
	}

	writeSectionHeader(pdf, "Detailed Entry Analysis")
	for i, entry := range doc.Entries {
		writeSubsection(pdf, fmt.Sprintf("Entry #%d: %s", i+1, entry.Title))
		writeBody(pdf, entry.Timestamp.Format("Monday, January 2, 2006"))
		pdf.Ln(1)

		writeMarkdownish(pdf, entry.Summary)
		pdf.Ln(2)

		if entry.Degraded {
			writeBody(pdf, "Emotion analysis unavailable for this entry.")
		} else {
			writeEmotionTable(pdf, entry.Emotions)
		}
		pdf.Ln(4)
	}

	writeFooter(pdf)
	return outputTo(pdf, path)
}

// ─────────────────────────────────────────
// Drawing helpers
// ─────────────────────────────────────────

func newDocument(title, generated string) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// title banner
	pdf.SetFillColor(44, 62, 80)
	pdf.Rect(0, 0, 216, 40, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetY(12)
	pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 6, "Generated by SoulScript System | "+generated, "", 1, "C", false, 0, "")

	pdf.SetY(48)
	pdf.SetTextColor(44, 62, 80)
	return pdf
}

func writeNotice(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, "CONFIDENTIALITY NOTICE", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.MultiCell(0, 5, text, "", "L", false)
	pdf.Ln(4)
}

func writeSectionHeader(pdf *fpdf.Fpdf, title string) {
	pdf.SetFillColor(52, 73, 94)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 9, " "+title, "", 1, "L", true, 0, "")
	pdf.SetTextColor(44, 62, 80)
	pdf.Ln(2)
}

func writeSubsection(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(41, 128, 185)
	pdf.CellFormat(0, 7, title, "", 1, "L", false, 0, "")
	pdf.SetTextColor(44, 62, 80)
}

func writeBody(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, text, "", "L", false)
}

// writeMarkdownish renders model-produced markdown as headers and bullets,
// without a full markdown engine.
func writeMarkdownish(pdf *fpdf.Fpdf, text string) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "###"):
			writeSubsection(pdf, strings.TrimSpace(strings.TrimPrefix(line, "###")))
		case strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*"):
			writeBody(pdf, "  • "+stripInlineMarkup(strings.TrimSpace(line[1:])))
		default:
			writeBody(pdf, stripInlineMarkup(line))
		}
	}
}

func writeMetricBox(pdf *fpdf.Fpdf, entry domain.ScoredEntry) {
	switch {
	case entry.Score >= 7:
		pdf.SetFillColor(231, 76, 60)
	case entry.Score >= 5:
		pdf.SetFillColor(243, 156, 18)
	default:
		pdf.SetFillColor(39, 174, 96)
	}

	status := "LOW"
	if entry.Score >= 7 {
		status = "HIGH"
	} else if entry.Score >= 5 {
		status = "MODERATE"
	}

	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 10)
	label := fmt.Sprintf(" %s (%s)", entry.Name, sectionTitle(entry.Category))
	value := fmt.Sprintf("%d/10 (%s) ", entry.Score, status)
	pdf.CellFormat(130, 9, label, "", 0, "L", true, 0, "")
	pdf.CellFormat(0, 9, value, "", 1, "R", true, 0, "")
	pdf.SetTextColor(44, 62, 80)
	pdf.Ln(1)
}

func writeEmotionTable(pdf *fpdf.Fpdf, scores map[domain.EmotionLabel]float64) {
	pdf.SetFont("Helvetica", "", 9)
	for _, label := range domain.Emotions {
		pdf.CellFormat(40, 5, string(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 5, fmt.Sprintf("%.2f", scores[label]), "", 1, "L", false, 0, "")
	}
}

func writeFooter(pdf *fpdf.Fpdf) {
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(127, 140, 141)
	pdf.MultiCell(0, 4,
		"End of report. All information is confidential and for therapeutic use only. "+
			"This analysis should be interpreted by a qualified mental health professional.",
		"", "L", false)
}

func outputTo(pdf *fpdf.Fpdf, path string) error {
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("writing pdf %s: %w", path, err)
	}
	return nil
}

// ─────────────────────────────────────────
// Content helpers
// ─────────────────────────────────────────

func orderedSections(info map[string][]domain.InfoField) []string {
	sections := make([]string, 0, len(info))
	for s := range info {
		sections = append(sections, s)
	}
	sort.Slice(sections, func(i, j int) bool {
		pi, pj := priorityOf(sections[i]), priorityOf(sections[j])
		if pi != pj {
			return pi < pj
		}
		return sections[i] < sections[j]
	})
	return sections
}

func priorityOf(section string) int {
	if p, ok := sectionPriority[section]; ok {
		return p
	}
	return 99
}

// presentableFields drops placeholder values so empty answers do not pad the
// report.
func presentableFields(fields []domain.InfoField) []domain.InfoField {
	var out []domain.InfoField
	for _, f := range fields {
		v := strings.ToLower(strings.TrimSpace(f.Value))
		if v == "" || v == "unclear" || v == "not provided" || v == "none" {
			continue
		}
		out = append(out, f)
	}
	return out
}

// sectionTitle turns a camelCase key like "behavioralPatterns" into
// "Behavioral Patterns".
func sectionTitle(key string) string {
	if key == "" {
		return ""
	}
	var b strings.Builder
	for i, r := range key {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return strings.ReplaceAll(b.String(), "_", " ")
}

// stripInlineMarkup removes the bold/italic markers models sprinkle into
// plain sections.
func stripInlineMarkup(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	return s
}
