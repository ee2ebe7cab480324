package report

import (
	"fmt"
	"io"
	"time"

	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/payroll"
	"github.com/jung-kurt/gofpdf"
)

var registerColumns = []struct {
	title string
	width float64
}{
	{"Employee", 77},
	{"Present", 38},
	{"Absent", 38},
	{"Leave", 38},
	{"LOP", 38},
	{"Working days", 48},
}

// RegisterFilename is the download name of the register for a period.
func RegisterFilename(year, month int) string {
	return fmt.Sprintf("attendance-register-%04d-%02d.pdf", year, month)
}

// WriteRegister renders the frozen attendance register of one period as a PDF.
func WriteRegister(w io.Writer, reg payroll.RegisterResponse) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Attendance register %04d-%02d", reg.Year, reg.Month), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Attendance Register")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	period := time.Date(reg.Year, time.Month(reg.Month), 1, 0, 0, 0, 0, time.UTC)
	pdf.Cell(0, 7, "Period: "+period.Format("January 2006"))
	pdf.Ln(6)
	if reg.FrozenAt != nil {
		frozen := "Frozen at: " + *reg.FrozenAt
		if reg.FrozenBy != nil {
			frozen += " by " + *reg.FrozenBy
		}
		pdf.Cell(0, 7, frozen)
		pdf.Ln(6)
	}
	pdf.Cell(0, 7, fmt.Sprintf("Employees: %d", len(reg.Snapshots)))
	pdf.Ln(10)

	header := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for _, col := range registerColumns {
			pdf.CellFormat(col.width, 8, col.title, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 10)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, snap := range reg.Snapshots {
		if pdf.GetY()+7 > pageHeight-bottom-10 {
			pdf.AddPage()
			header()
		}
		cells := []string{
			snap.EmployeeID,
			snap.PresentDays.StringFixed(1),
			snap.AbsentDays.StringFixed(1),
			snap.LeaveDays.StringFixed(1),
			snap.LOPDays.StringFixed(1),
			snap.TotalWorkingDays.String(),
		}
		for i, col := range registerColumns {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(col.width, 7, cells[i], "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}
