package confirmation

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"selambus/internal/domain/models"
	"selambus/internal/utils"
)

// TicketPDF renders the e-ticket of the stored booking.
func (s Service) TicketPDF(ctx context.Context) ([]byte, string, error) {
	data, err := s.load(ctx)
	if err != nil {
		return nil, "", err
	}
	pdfBytes, name, err := buildTicketPDF(data)
	if err != nil {
		utils.LogEvent(s.RequestID, "confirmation", "ticket_pdf", err.Error())
		return nil, "", err
	}
	return pdfBytes, name, nil
}

// ReceiptPDF renders a one page payment receipt of the stored booking.
func (s Service) ReceiptPDF(ctx context.Context) ([]byte, string, error) {
	data, err := s.load(ctx)
	if err != nil {
		return nil, "", err
	}
	return buildReceiptPDF(data, s.Clock.Now())
}

func TicketFilename(reference string) string {
	return fmt.Sprintf("SelamBus_Ticket_%s.pdf", safeFilenamePart(reference))
}

func buildTicketPDF(d models.PaymentData) ([]byte, string, error) {
	var route models.RouteInfo
	if d.Route != nil {
		route = *d.Route
	}
	var bus models.BusInfo
	if d.Bus != nil {
		bus = *d.Bus
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("SelamBus E-Ticket", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(59, 130, 246)
	pdf.CellFormat(0, 10, "SelamBus E-Ticket", "", 1, "C", false, 0, "")
	pdf.SetDrawColor(59, 130, 246)
	pdf.Line(20, 25, 190, 25)
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(0, 0, 0)
	line(pdf, "Booking Reference: "+safe(d.Reference, "-"))
	line(pdf, "Booking Date: "+safe(dateOnly(d.Timestamp), "-"))
	pdf.Ln(4)

	heading(pdf, "Trip Details")
	for _, s := range []string{
		"From: " + safe(route.From, "-"),
		"To: " + safe(route.To, "-"),
		"Date: " + safe(route.DepartureDate, "-"),
		"Departure: " + safe(route.DepartureTime, "-"),
		"Arrival: " + safe(route.ArrivalTime, "-"),
		"Bus Company: " + safe(bus.Company, "-"),
		"Bus Type: " + safe(bus.Type, "-"),
	} {
		line(pdf, s)
	}
	pdf.Ln(4)

	heading(pdf, "Passengers")
	for i, p := range d.Passengers {
		line(pdf, fmt.Sprintf("%d. %s - Seat %s", i+1, safe(p.Name, "-"), p.SeatNumber))
	}
	pdf.Ln(4)

	heading(pdf, "Payment Details")
	line(pdf, "Base Fare: "+utils.FormatBirr(d.Pricing.BaseFare))
	line(pdf, "Taxes: "+utils.FormatBirr(d.Pricing.Tax))
	line(pdf, "Convenience Fee: "+utils.FormatBirr(d.Pricing.ConvenienceFee))
	line(pdf, "Total: "+utils.FormatBirr(d.Pricing.Total))
	line(pdf, "Payment Method: "+d.Method.Label())

	pdf.SetY(262)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(107, 114, 128)
	pdf.MultiCell(0, 5, "Important: Please arrive at the terminal 30 minutes before departure time.\n"+
		"Carry a valid ID for verification. Contact support@selambus.com for assistance.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), TicketFilename(d.Reference), nil
}

func buildReceiptPDF(d models.PaymentData, now time.Time) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Payment Receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "PAYMENT RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	line(pdf, "Reference    : "+safe(d.Reference, "-"))
	line(pdf, "Payment ID   : "+safe(d.PaymentID, "-"))
	line(pdf, "Transaction  : "+safe(d.TransactionID, "-"))
	line(pdf, "Issued       : "+now.Format("2006-01-02 15:04"))
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	line(pdf, "Details:")
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, fmt.Sprintf("%d x %s seat (%s)", d.Pricing.Passengers, safe(string(d.BusType), "-"),
		strings.Join(d.SelectedSeats, ", ")), "", "", false)
	line(pdf, "Subtotal: "+utils.FormatBirr(d.Pricing.Subtotal))
	line(pdf, "Tax (15%): "+utils.FormatBirr(d.Pricing.Tax))
	line(pdf, "Convenience Fee: "+utils.FormatBirr(d.Pricing.ConvenienceFee))

	pdf.SetFont("Helvetica", "B", 12)
	line(pdf, "Total: "+utils.FormatBirr(d.Pricing.Total))
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "I", 10)
	status := "Paid via " + d.Method.Label()
	if d.RequiresVerification {
		status += ". Pending manual verification."
	}
	pdf.MultiCell(0, 6, status, "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("SelamBus_Receipt_%s.pdf", safeFilenamePart(d.Reference)), nil
}

func heading(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(31, 41, 55)
	pdf.Cell(0, 9, s)
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(0, 0, 0)
}

func line(pdf *gofpdf.Fpdf, s string) {
	pdf.Cell(0, 7, s)
	pdf.Ln(7)
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func dateOnly(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 10 {
		return v[:10]
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
