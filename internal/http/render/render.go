// Package render writes JSON and file responses for handlers.
package render

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/flash"
	"github.com/HelloCrackers/hellocrackers-2-sub001/pkg/view"
)

func JSON(c *gin.Context, status int, v any) { c.JSON(status, v) }

func OK(c *gin.Context, v any) { c.JSON(http.StatusOK, v) }

func Created(c *gin.Context, v any) { c.JSON(http.StatusCreated, v) }

func NoContent(c *gin.Context) { c.Status(http.StatusNoContent) }

// WithFlash sets a one-shot notification for the next page load and
// renders v.
func WithFlash(c *gin.Context, codec *flash.Codec, kind view.FlashKind, msg string, status int, v any) {
	codec.Set(c, kind, msg)
	c.JSON(status, v)
}

// Attachment buffers write before sending so a failed render still
// produces a clean error response.
func Attachment(c *gin.Context, filename, contentType string, write func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Length", strconv.Itoa(buf.Len()))
	c.Data(http.StatusOK, contentType, buf.Bytes())
	return nil
}
