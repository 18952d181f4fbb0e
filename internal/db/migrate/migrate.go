// Package migrate brings the schema up to date for every module.
package migrate

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/auth"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/cart"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/catalog"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/content"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/customers"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/feedback"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/orders"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/payments"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/settings"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/shipping"
)

// Models lists every persisted type, parents before children.
func Models() []any {
	var all []any
	for _, group := range [][]any{
		auth.Models(),
		catalog.Models(),
		customers.Models(),
		cart.Models(),
		orders.Models(),
		payments.Models(),
		shipping.Models(),
		content.Models(),
		feedback.Models(),
		settings.Models(),
	} {
		all = append(all, group...)
	}
	return all
}

// Up runs AutoMigrate for all models. It is additive: columns are never
// dropped.
func Up(ctx context.Context, gdb *gorm.DB, log logrus.FieldLogger) error {
	models := Models()
	if err := gdb.WithContext(ctx).AutoMigrate(models...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	log.WithField("tables", len(models)).Info("schema up to date")
	return nil
}
