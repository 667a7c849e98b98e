package leave

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"staffleave/internal/domain/auth"
)

// Statement is a rendered leave statement for one leave year.
type Statement struct {
	Year int
	PDF  []byte
}

// RenderStatement builds a PDF with the actor's balance and submission history.
func (s *Service) RenderStatement(ctx context.Context, actor auth.Actor) (Statement, error) {
	balance, err := s.Balance(ctx, actor)
	if err != nil {
		return Statement{}, err
	}
	history, err := s.ListMine(ctx, actor)
	if err != nil {
		return Statement{}, err
	}
	pdf, err := renderStatementPDF(actor, balance, history, s.now())
	if err != nil {
		return Statement{}, err
	}
	return Statement{Year: balance.Year, PDF: pdf}, nil
}

func renderStatementPDF(actor auth.Actor, balance Balance, history []Submission, generated time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Leave statement %d", balance.Year), true)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Leave statement %d", balance.Year))
	pdf.Ln(12)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "", 11)
	lines := []string{
		fmt.Sprintf("Staff: %s <%s>", actor.Name, actor.Email),
		fmt.Sprintf("Employment: %s", balance.EmploymentType),
		fmt.Sprintf("Accrued: %d days", balance.AccruedDays),
		fmt.Sprintf("Consumed: %d days", balance.ConsumedDays),
		fmt.Sprintf("Remaining: %d days", balance.RemainingDays),
		fmt.Sprintf("Medical certificate days: %d", balance.MedicalCertDays),
	}
	if balance.Overdrawn {
		lines = append(lines, "Balance is overdrawn.")
	}
	for _, line := range lines {
		pdf.Cell(0, 7, tr(line))
		pdf.Ln(7)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	widths := []float64{34, 28, 28, 14, 28, 58}
	for i, h := range []string{"Type", "Start", "End", "Days", "Status", "Note"} {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, sub := range history {
		note := ""
		if sub.DecisionNote != nil {
			note = truncate(*sub.DecisionNote, 40)
		}
		cells := []string{
			string(sub.Type),
			sub.StartDate.Format(time.DateOnly),
			sub.EndDate.Format(time.DateOnly),
			fmt.Sprintf("%d", sub.Days),
			string(sub.Status),
			tr(note),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 7, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.Cell(0, 5, "Generated "+generated.UTC().Format(time.RFC3339))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render statement: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
