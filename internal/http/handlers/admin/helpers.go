package admin

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/middleware"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/present"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/catalog"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/shared/apperr"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/storage"
)

func fail(c *gin.Context, err error) {
	middleware.Fail(c, present.Error(err))
}

func parseInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func pageParams(c *gin.Context, defSize int) (int, int) {
	size := parseInt(c.Query("page_size"), defSize)
	if size > 200 {
		size = defSize
	}
	return parseInt(c.Query("page"), 1), size
}

// adminID is the signed-in admin; routes sit behind RequireAdmin.
func adminID(c *gin.Context) string {
	u, _ := middleware.CurrentUser(c)
	return u.ID
}

// imageUpload reads the multipart "image" field. The caller must close the
// returned body.
func imageUpload(c *gin.Context) (catalog.Upload, func(), error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return catalog.Upload{}, nil, apperr.InvalidErr("Choose an image to upload.", map[string]string{"image": "This field is required."})
	}
	if _, err := storage.ValidateImage(fh.Filename, fh.Size); err != nil {
		return catalog.Upload{}, nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return catalog.Upload{}, nil, err
	}
	return catalog.Upload{
		Body:        f,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	}, func() { _ = f.Close() }, nil
}
