package checkout

import (
	"context"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/catalog"
)

type StockLine struct {
	Ref catalog.ItemRef
	Qty int
}

// aggregate folds duplicate refs and orders them by table then id, so
// concurrent checkouts always lock rows in the same order.
func aggregate(lines []StockLine) []StockLine {
	want := make(map[catalog.ItemRef]int, len(lines))
	for _, ln := range lines {
		q := ln.Qty
		if q < 1 {
			q = 1
		}
		want[ln.Ref] += q
	}
	out := make([]StockLine, 0, len(want))
	for ref, q := range want {
		out = append(out, StockLine{Ref: ref, Qty: q})
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].Ref.Kind.Table(), out[j].Ref.Kind.Table()
		if ti != tj {
			return ti < tj
		}
		return out[i].Ref.ID < out[j].Ref.ID
	})
	return out
}

// DeductStockInTx runs inside the caller's transaction (no nested tx).
// Rows are locked FOR UPDATE; if any line is short nothing is deducted.
func DeductStockInTx(ctx context.Context, tx *gorm.DB, lines []StockLine) error {
	if len(lines) == 0 {
		return nil
	}
	agg := aggregate(lines)

	type stockRow struct {
		ID     string `gorm:"column:id"`
		Stock  int    `gorm:"column:stock"`
		Active bool   `gorm:"column:active"`
	}

	avail := make(map[catalog.ItemRef]stockRow, len(agg))
	for _, kind := range []catalog.Kind{catalog.KindGiftBox, catalog.KindProduct} {
		var ids []string
		for _, ln := range agg {
			if ln.Ref.Kind == kind {
				ids = append(ids, ln.Ref.ID)
			}
		}
		if len(ids) == 0 {
			continue
		}
		var rows []stockRow
		if err := tx.WithContext(ctx).
			Table(kind.Table()).
			Select("id, stock, active").
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", ids).
			Order("id ASC").
			Find(&rows).Error; err != nil {
			return err
		}
		for _, r := range rows {
			avail[catalog.ItemRef{Kind: kind, ID: r.ID}] = r
		}
	}

	var oos []OutOfStockItem
	for _, ln := range agg {
		row, ok := avail[ln.Ref]
		if !ok || !row.Active || row.Stock < ln.Qty {
			oos = append(oos, OutOfStockItem{Ref: ln.Ref, Requested: ln.Qty, Available: row.Stock})
		}
	}
	if len(oos) > 0 {
		return &OutOfStockError{Items: oos}
	}

	for _, ln := range agg {
		res := tx.WithContext(ctx).
			Table(ln.Ref.Kind.Table()).
			Where("id = ? AND stock >= ?", ln.Ref.ID, ln.Qty).
			UpdateColumn("stock", gorm.Expr("stock - ?", ln.Qty))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return &OutOfStockError{Items: []OutOfStockItem{{Ref: ln.Ref, Requested: ln.Qty}}}
		}
	}
	return nil
}

// RestockInTx returns quantities to stock, e.g. when an order is cancelled.
// Items deleted from the catalog since are skipped.
func RestockInTx(ctx context.Context, tx *gorm.DB, lines []StockLine) error {
	for _, ln := range aggregate(lines) {
		if err := tx.WithContext(ctx).
			Table(ln.Ref.Kind.Table()).
			Where("id = ?", ln.Ref.ID).
			UpdateColumn("stock", gorm.Expr("stock + ?", ln.Qty)).Error; err != nil {
			return err
		}
	}
	return nil
}
