package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/middleware"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/present"
)

func randHex(nBytes int) string {
	b := make([]byte, nBytes)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// fail maps a domain error and hands it to the error middleware.
func fail(c *gin.Context, err error) {
	middleware.Fail(c, present.Error(err))
}

func parseInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func pageParams(c *gin.Context, defSize int) (int, int) {
	page := parseInt(c.Query("page"), 1)
	if page < 1 {
		page = 1
	}
	size := parseInt(c.Query("page_size"), defSize)
	if size < 1 || size > 100 {
		size = defSize
	}
	return page, size
}
