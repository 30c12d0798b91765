package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// ReceiptLine is one purchased course on a receipt.
type ReceiptLine struct {
	CourseName string
	Instructor string
	Price      string
}

// Receipt captures everything rendered onto a payment receipt.
type Receipt struct {
	PaymentID     string
	BuyerEmail    string
	TransactionID string
	Amount        string
	PaidAt        time.Time
	Lines         []ReceiptLine
}

// ReceiptExporter renders payment receipts as PDF documents.
type ReceiptExporter struct{}

// NewReceiptExporter constructs a receipt exporter.
func NewReceiptExporter() *ReceiptExporter {
	return &ReceiptExporter{}
}

// Render produces the PDF bytes for a receipt.
func (e *ReceiptExporter) Render(r Receipt) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "SCUOLA PAYMENT RECEIPT", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Receipt: %s", r.PaymentID), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Buyer: %s", r.BuyerEmail), "", 1, "", false, 0, "")
	if r.TransactionID != "" {
		pdf.CellFormat(0, 6, fmt.Sprintf("Transaction: %s", r.TransactionID), "", 1, "", false, 0, "")
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("Date: %s", r.PaidAt.UTC().Format("2006-01-02 15:04 MST")), "", 1, "", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(90, 8, "Course", "1", 0, "", false, 0, "")
	pdf.CellFormat(60, 8, "Instructor", "1", 0, "", false, 0, "")
	pdf.CellFormat(30, 8, "Price", "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, line := range r.Lines {
		pdf.CellFormat(90, 7, line.CourseName, "1", 0, "", false, 0, "")
		pdf.CellFormat(60, 7, line.Instructor, "1", 0, "", false, 0, "")
		pdf.CellFormat(30, 7, line.Price, "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(150, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, r.Amount, "1", 1, "R", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
