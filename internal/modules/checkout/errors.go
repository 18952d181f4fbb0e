package checkout

import (
	"fmt"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/catalog"
)

type OutOfStockItem struct {
	Ref       catalog.ItemRef
	Requested int
	Available int
}

type OutOfStockError struct {
	Items []OutOfStockItem
}

func (e *OutOfStockError) Error() string {
	if len(e.Items) == 0 {
		return "out of stock"
	}
	it := e.Items[0]
	return fmt.Sprintf("out of stock: %s requested=%d available=%d", it.Ref.Key(), it.Requested, it.Available)
}
