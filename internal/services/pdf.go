package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf/v2"

	"github.com/maheshsundaram/gemini-voice-input/internal/domain"
)

type PDFService struct{}

func NewPDFService() *PDFService {
	return &PDFService{}
}

// GeneratePDF renders the transcript log to a PDF file, one timestamped
// line per entry.
func (s *PDFService) GeneratePDF(entries []domain.TranscriptEntry, title, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure pdf directory: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, false)
	pdf.SetAuthor("gemini-voice-input", false)
	pdf.AddPage()

	if strings.TrimSpace(title) == "" {
		title = "Transcript"
	}

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 6, fmt.Sprintf("Exported: %s", time.Now().Local().Format("02/01/2006 15:04")))
	pdf.Ln(12)

	if len(entries) == 0 {
		pdf.MultiCell(0, 6, "(no entries)", "", "L", false)
	}

	for _, entry := range entries {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 6, entry.Timestamp.Local().Format(domain.TimeLayout))
		pdf.Ln(7)

		pdf.SetFont("Helvetica", "", 12)
		pdf.MultiCell(0, 6, entry.Text, "", "L", false)
		pdf.Ln(4)
	}

	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}

	return nil
}
