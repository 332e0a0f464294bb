package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"orderdesk/internal/domain/models"
	"orderdesk/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// InvoiceService renders order invoices as PDF documents.
type InvoiceService struct {
	Company string
	Now     func() time.Time
}

func (s InvoiceService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

// Render returns the PDF bytes and a download file name.
func (s InvoiceService) Render(o models.Order) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(12)

	if company := strings.TrimSpace(s.Company); company != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.Cell(0, 6, company)
		pdf.Ln(8)
	}

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Invoice No : "+invoiceNumber(o))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Order date : "+utils.FormatDateTime(o.CreatedAt))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Issued     : "+utils.FormatDateTime(s.now()))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Status     : "+string(o.Status))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Bill to:")
	pdf.Ln(7)

	pdf.SetFont("Helvetica", "", 12)
	customer := "-"
	email := "-"
	if o.Owner != nil {
		customer = safe(o.Owner.Name, "-")
		email = safe(o.Owner.Email, "-")
	}
	pdf.Cell(0, 7, "Name    : "+customer)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Email   : "+email)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Phone   : "+safe(o.PhoneNumber, "-"))
	pdf.Ln(7)
	pdf.MultiCell(0, 7, "Address : "+safe(o.Address, "-"), "", "", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Details:")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, "1) "+safe(o.Name, "-")+": "+safe(o.Details, "-"), "", "", false)
	pdf.Ln(2)
	if method := strings.TrimSpace(o.PaymentMethod); method != "" {
		pdf.Cell(0, 6, "Payment method: "+method)
		pdf.Ln(8)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total: "+formatMoney(o.Price))
	pdf.Ln(12)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("INVOICE_%s_%s.pdf", invoiceNumber(o), safeFilenamePart(o.Name))
	return buf.Bytes(), filename, nil
}

func invoiceNumber(o models.Order) string {
	return fmt.Sprintf("INV-%06d", o.InvoiceNo)
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}

// formatMoney renders a price with two decimals and thousands separators.
func formatMoney(v float64) string {
	if v <= 0 {
		return "0.00"
	}
	s := fmt.Sprintf("%.2f", v)
	intPart, frac := s[:len(s)-3], s[len(s)-3:]
	var out []byte
	n := len(intPart)
	for i := 0; i < n; i++ {
		out = append(out, intPart[i])
		pos := n - i - 1
		if pos > 0 && pos%3 == 0 {
			out = append(out, ',')
		}
	}
	return string(out) + frac
}
