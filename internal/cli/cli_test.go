package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/config"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/db/dbtest"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/logging"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/auth"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/catalog"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/payments"
)

func useTestEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		cfg: config.Config{JWTSecret: "test-secret-0123456789", TokenTTL: time.Hour, SessionTTL: time.Hour},
		log: logging.Discard(),
		db:  dbtest.Open(t),
	}
	e.close = func() {} // dbtest closes it
	prev := openEnv
	openEnv = func() (*env, error) { return e, nil }
	t.Cleanup(func() { openEnv = prev })
	return e
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestMigrateSeedAndExport(t *testing.T) {
	e := useTestEnv(t)
	dir := t.TempDir()

	_, err := run(t, "migrate")
	require.NoError(t, err)

	seedPath := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(seedPath, []byte(`
categories:
  - name: Chakkars
    products:
      - name: Ground Chakkar Big
        price_cents: 8000
        mrp_cents: 32000
        stock: 40
`), 0o600))

	out, err := run(t, "seed", "--file", seedPath)
	require.NoError(t, err)
	assert.Contains(t, out, "products: 1")

	ps, err := catalog.NewRepo(e.db).AllProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, ps, 1)

	xlsxPath := filepath.Join(dir, "products.xlsx")
	out, err = run(t, "export", "products", "--out", xlsxPath)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+xlsxPath)
	st, err := os.Stat(xlsxPath)
	require.NoError(t, err)
	assert.Positive(t, st.Size())

	_, err = run(t, "export", "invoices")
	assert.Error(t, err)
}

func TestAdminCreate(t *testing.T) {
	e := useTestEnv(t)
	_, err := run(t, "migrate")
	require.NoError(t, err)

	t.Setenv("ADMIN_PASSWORD", "")
	_, err = run(t, "admin", "create", "--email", "owner@hellocrackers.in")
	assert.Error(t, err)

	t.Setenv("ADMIN_PASSWORD", "sparkle-2025")
	out, err := run(t, "admin", "create", "--email", "owner@hellocrackers.in")
	require.NoError(t, err)
	assert.Contains(t, out, "admin created")

	var u auth.User
	require.NoError(t, e.db.First(&u, "email = ?", "owner@hellocrackers.in").Error)
	assert.True(t, u.IsAdmin())
}

func TestWebhookSignsBody(t *testing.T) {
	var got struct {
		sig  string
		body []byte
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.sig = r.Header.Get("X-Razorpay-Signature")
		got.body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := run(t, "webhook", payments.EventPaymentCaptured,
		"--url", srv.URL, "--secret", "whsec_test", "--order-ref", "order_abc", "--payment-ref", "pay_abc")
	require.NoError(t, err)

	assert.Equal(t, payments.SignWebhook("whsec_test", got.body), got.sig)
	assert.Contains(t, string(got.body), `"order_id":"order_abc"`)
	assert.Contains(t, string(got.body), `"event":"payment.captured"`)
}
