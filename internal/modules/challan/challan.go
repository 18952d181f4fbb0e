// Package challan renders the delivery challan that travels with a parcel.
package challan

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/content"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/orders"
	"github.com/HelloCrackers/hellocrackers-2-sub001/pkg/view"
)

type Data struct {
	Site     content.Site
	Tracking orders.Tracking
}

// Filename is the download name for an order's challan.
func Filename(number string) string { return "challan-" + number + ".pdf" }

func rs(paise int) string { return "Rs. " + view.Amount(paise) }

// Render writes an A4 challan PDF to w.
func Render(w io.Writer, d Data) error {
	o := d.Tracking.Order
	store := d.Site.StoreName
	if store == "" {
		store = "Hello Crackers"
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Delivery challan "+o.Number, true)
	pdf.SetAuthor(store, true)
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// letterhead
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 9, tr(store), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	if d.Site.Address != "" {
		pdf.MultiCell(0, 4.5, tr(d.Site.Address), "", "L", false)
	}
	contact := d.Site.ContactPhone
	if d.Site.ContactEmail != "" {
		if contact != "" {
			contact += "  |  "
		}
		contact += d.Site.ContactEmail
	}
	if contact != "" {
		pdf.CellFormat(0, 4.5, tr(contact), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "DELIVERY CHALLAN", "TB", 1, "C", false, 0, "")
	pdf.Ln(3)

	// order and consignee blocks side by side
	y := pdf.GetY()
	pdf.SetFont("Helvetica", "", 10)
	left := []string{
		"Order no: " + o.Number,
		"Date: " + o.CreatedAt.Format("02 Jan 2006"),
		"Status: " + view.StatusLabel(o.Status),
		"Payment: " + view.PaymentLabel(o.PaymentMethod, o.ManualMode),
	}
	for _, line := range left {
		pdf.CellFormat(90, 5.5, tr(line), "", 2, "L", false, 0, "")
	}
	pdf.SetXY(110, y)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(85, 5.5, "Deliver to", "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(85, 5, tr(fmt.Sprintf("%s\n%s\n%s, %s - %s\nPhone: %s",
		o.CustomerName, o.AddressLine, o.City, o.State, o.Pincode, o.Phone)), "", "L", false)
	pdf.SetX(15)
	if pdf.GetY() < y+24 {
		pdf.SetY(y + 24)
	}
	pdf.Ln(4)

	// items
	cols := []struct {
		title string
		w     float64
		align string
	}{
		{"#", 10, "C"}, {"Item", 90, "L"}, {"Qty", 15, "C"}, {"Rate", 32, "R"}, {"Amount", 33, "R"},
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	for _, c := range cols {
		pdf.CellFormat(c.w, 7, c.title, "1", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	units := 0
	for i, it := range d.Tracking.Items {
		units += it.Quantity
		cells := []string{
			strconv.Itoa(i + 1),
			tr(it.Name),
			strconv.Itoa(it.Quantity),
			rs(it.UnitPriceCents),
			rs(it.LineTotalCents),
		}
		for j, c := range cols {
			pdf.CellFormat(c.w, 7, cells[j], "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	totals := [][2]string{
		{"Subtotal", rs(o.SubtotalCents)},
		{"Delivery", rs(o.DeliveryCents)},
		{"Total", rs(o.TotalCents)},
	}
	if o.RefundedCents > 0 {
		totals = append(totals, [2]string{"Refunded", rs(o.RefundedCents)})
	}
	for i, t := range totals {
		style := ""
		if i == 2 {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(147, 7, t[0], "1", 0, "R", false, 0, "")
		pdf.CellFormat(33, 7, t[1], "1", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total units: %d", units), "", 1, "L", false, 0, "")

	if len(d.Tracking.Shipments) > 0 {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 6, "Shipment", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for _, s := range d.Tracking.Shipments {
			line := fmt.Sprintf("%s  %s  (%s)", s.Courier, s.TrackingNo, s.ShippedAt.Format("02 Jan 2006"))
			pdf.CellFormat(0, 5.5, tr(line), "", 1, "L", false, 0, "")
		}
	}
	if o.Notes != "" {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 4.5, tr("Notes: "+o.Notes), "", "L", false)
	}

	// crackers ship with a safety line on the parcel paperwork
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 8)
	pdf.MultiCell(0, 4, "Contains fireworks. Keep away from fire and heat. Store in a cool dry place. "+
		"Use under adult supervision as per the instructions on each pack.", "", "L", false)
	pdf.Ln(10)
	pdf.CellFormat(90, 5, "Receiver's signature", "T", 0, "C", false, 0, "")
	pdf.CellFormat(0, 5, "For "+tr(store), "", 1, "R", false, 0, "")

	return pdf.Output(w)
}
