// Package dbtest opens isolated in-memory sqlite databases for package tests.
package dbtest

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/db"
)

var seq atomic.Int64

// Open returns a fresh database with models migrated. It is closed when the
// test ends.
func Open(t testing.TB, models ...any) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=1", name, seq.Add(1))

	gdb, err := db.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if len(models) > 0 {
		if err := gdb.AutoMigrate(models...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

// FailedStatements counts statements run through gdb that end in an error
// other than gorm.ErrRecordNotFound. Postgres aborts the surrounding
// transaction on any such error, so paths that must commit should keep the
// count at zero.
func FailedStatements(t testing.TB, gdb *gorm.DB) func() int {
	t.Helper()

	var n atomic.Int64
	count := func(d *gorm.DB) {
		if d.Error != nil && !errors.Is(d.Error, gorm.ErrRecordNotFound) {
			n.Add(1)
		}
	}
	const name = "dbtest:failed_statements"
	cb := gdb.Callback()
	for _, err := range []error{
		cb.Create().After("gorm:create").Register(name, count),
		cb.Query().After("gorm:query").Register(name, count),
		cb.Update().After("gorm:update").Register(name, count),
		cb.Delete().After("gorm:delete").Register(name, count),
		cb.Raw().After("gorm:raw").Register(name, count),
	} {
		if err != nil {
			t.Fatalf("register callback: %v", err)
		}
	}
	return func() int { return int(n.Load()) }
}
