package documents

import (
	"bytes"
	"fmt"
	"tanker-dispatch-service/internal/domain"
	"time"

	"github.com/phpdave11/gofpdf"
)

// RosterPDF renders the weekly driver roster as an A4 PDF.
type RosterPDF struct {
	// Title heads the first page. Empty uses "Weekly Driver Roster".
	Title string
}

func NewRosterPDF(title string) *RosterPDF {
	return &RosterPDF{Title: title}
}

func (r *RosterPDF) ContentType() string { return "application/pdf" }

var rosterColumns = []struct {
	header string
	width  float64
}{
	{"#", 10},
	{"Trip group", 62},
	{"Driver", 52},
	{"Assigned", 30},
	{"Notes", 36},
}

func (r *RosterPDF) RenderRoster(weekStart time.Time, assignments []*domain.WeeklyDriverAssignment) ([]byte, error) {
	title := r.Title
	if title == "" {
		title = "Weekly Driver Roster"
	}

	weekStart = domain.DateOf(weekStart)
	weekEnd := weekStart.AddDate(0, 0, domain.DaysPerWeek-1)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Week: %s (%s) to %s (%s)",
		weekStart.Format(time.DateOnly), domain.DayName(0),
		weekEnd.Format(time.DateOnly), domain.DayName(domain.DaysPerWeek-1)))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Assignments: %d", len(assignments)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range rosterColumns {
		pdf.CellFormat(col.width, 8, col.header, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	if len(assignments) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(190, 8, "No drivers assigned for this week.", "1", 1, "C", false, 0, "")
	}
	for i, a := range assignments {
		cells := []string{
			fmt.Sprintf("%d", i+1),
			orDash(a.GroupName, fmt.Sprintf("Group %d", a.TripGroupID)),
			orDash(a.DriverName, fmt.Sprintf("Driver %d", a.DriverID)),
			a.AssignedAt.Format("2006-01-02"),
			orDash(a.Notes, "-"),
		}
		for j, col := range rosterColumns {
			pdf.CellFormat(col.width, 7, truncate(pdf, cells[j], col.width-2), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render roster: %w", err)
	}
	return buf.Bytes(), nil
}

func orDash(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// truncate shortens s with an ellipsis until it fits width at the current font.
func truncate(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
