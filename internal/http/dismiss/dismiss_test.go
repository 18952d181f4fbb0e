package dismiss

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndRead(t *testing.T) {
	gin.SetMode(gin.TestMode)
	codec := New([]byte("0123456789abcdef"), "", false)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	ids, err := codec.Add(c, "n1")
	require.NoError(t, err)
	assert.Equal(t, []string{"n1"}, ids)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, DefaultName, cookies[0].Name)
	assert.Equal(t, 365*24*3600, cookies[0].MaxAge)

	c2, _ := gin.CreateTestContext(httptest.NewRecorder())
	c2.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c2.Request.AddCookie(cookies[0])
	assert.Equal(t, []string{"n1"}, codec.Read(c2))
}

func TestTamperedCookieReadsEmpty(t *testing.T) {
	codec := New([]byte("0123456789abcdef"), "", false)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.AddCookie(&http.Cookie{Name: DefaultName, Value: "W10.forged"})
	assert.Empty(t, codec.Read(c))
}

func TestAppendIDCapsAndDedupes(t *testing.T) {
	var ids []string
	for i := 0; i < MaxIDs+5; i++ {
		ids = appendID(ids, fmt.Sprint(i))
	}
	assert.Len(t, ids, MaxIDs)
	assert.Equal(t, "5", ids[0])

	ids = appendID(ids, "5")
	assert.Len(t, ids, MaxIDs)
	assert.Equal(t, "5", ids[len(ids)-1])
}
