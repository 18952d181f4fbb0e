// Package exports builds the admin spreadsheets.
package exports

import (
	"context"
	"io"
	"time"

	"github.com/tealeg/xlsx"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/catalog"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/orders"
	"github.com/HelloCrackers/hellocrackers-2-sub001/pkg/view"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	timeLayout  = "2006-01-02 15:04:05"
)

type Exporter struct {
	catalog *catalog.Repo
	orders  *orders.Repo
}

func New(cat *catalog.Repo, ord *orders.Repo) *Exporter {
	return &Exporter{catalog: cat, orders: ord}
}

func header(sheet *xlsx.Sheet, titles ...string) {
	row := sheet.AddRow()
	for _, h := range titles {
		c := row.AddCell()
		c.SetString(h)
		st := xlsx.NewStyle()
		st.Font.Bold = true
		st.ApplyFont = true
		c.SetStyle(st)
	}
}

func money(row *xlsx.Row, paise int) {
	f, _ := view.Decimal(paise).Float64()
	row.AddCell().SetFloatWithFormat(f, "#,##0.00")
}

// Products writes every product with its category, prices and stock.
func (e *Exporter) Products(ctx context.Context, w io.Writer) error {
	products, err := e.catalog.AllProducts(ctx)
	if err != nil {
		return err
	}
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return err
	}
	header(sheet, "ID", "Name", "Slug", "Category", "Unit", "Price (INR)", "MRP (INR)", "Discount %", "Stock", "Active", "Featured", "Image", "Updated")
	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetString(p.ID)
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Slug)
		cat := ""
		if p.Category != nil {
			cat = p.Category.Name
		}
		row.AddCell().SetString(cat)
		row.AddCell().SetString(p.Unit)
		money(row, p.PriceCents)
		money(row, p.MRPCents)
		row.AddCell().SetInt(catalog.DiscountPercent(p.PriceCents, p.MRPCents))
		row.AddCell().SetInt(p.Stock)
		row.AddCell().SetBool(p.Active)
		row.AddCell().SetBool(p.Featured)
		row.AddCell().SetString(p.ImageURL)
		row.AddCell().SetString(p.UpdatedAt.Format(timeLayout))
	}
	return file.Write(w)
}

// Orders writes the orders created in [from, to).
func (e *Exporter) Orders(ctx context.Context, w io.Writer, from, to time.Time) error {
	list, err := e.orders.ListForExport(ctx, from, to)
	if err != nil {
		return err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return err
	}
	header(sheet, "Number", "Placed", "Status", "Customer", "Phone", "Email", "City", "State", "Pincode",
		"Payment", "Subtotal (INR)", "Delivery (INR)", "Total (INR)", "Refunded (INR)", "Paid at")
	for _, o := range list {
		row := sheet.AddRow()
		row.AddCell().SetString(o.Number)
		row.AddCell().SetString(o.CreatedAt.Format(timeLayout))
		row.AddCell().SetString(o.Status)
		row.AddCell().SetString(o.CustomerName)
		row.AddCell().SetString(o.Phone)
		row.AddCell().SetString(o.Email)
		row.AddCell().SetString(o.City)
		row.AddCell().SetString(o.State)
		row.AddCell().SetString(o.Pincode)
		row.AddCell().SetString(view.PaymentLabel(o.PaymentMethod, o.ManualMode))
		money(row, o.SubtotalCents)
		money(row, o.DeliveryCents)
		money(row, o.TotalCents)
		money(row, o.RefundedCents)
		paid := ""
		if o.PaidAt != nil {
			paid = o.PaidAt.Format(timeLayout)
		}
		row.AddCell().SetString(paid)
	}
	return file.Write(w)
}

// Range resolves optional from/to dates (YYYY-MM-DD, to inclusive). The
// default is the last 30 days.
func Range(fromStr, toStr string, now time.Time) (time.Time, time.Time, error) {
	loc := now.Location()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	if toStr != "" {
		t, err := time.ParseInLocation("2006-01-02", toStr, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = t.AddDate(0, 0, 1)
	}
	from := to.AddDate(0, 0, -30)
	if fromStr != "" {
		f, err := time.ParseInLocation("2006-01-02", fromStr, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = f
	}
	return from, to, nil
}
