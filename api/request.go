package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Domenick1991/flightdesk/internal/access"
	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// tokenRequest is embedded in every privileged request. GET requests carry
// the token in the query string, every other method in the body.
type tokenRequest struct {
	Token string `json:"token" form:"token"`
}

func (r tokenRequest) credentials(c *gin.Context) access.Credentials {
	return access.Credentials{Method: c.Request.Method, Token: r.Token}
}

// bind decodes the query for GET requests and the JSON or form body otherwise.
// Query parameters of non-GET requests are ignored.
func bind(c *gin.Context, dst any) error {
	var err error
	switch {
	case c.Request.Method == http.MethodGet:
		err = c.ShouldBindQuery(dst)
	case c.Request.Body == nil || c.Request.Body == http.NoBody || c.Request.ContentLength == 0:
		return nil
	default:
		b := binding.Default(c.Request.Method, c.ContentType())
		if b == binding.Form {
			b = binding.FormPost
		}
		err = c.ShouldBindWith(dst, b)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	return nil
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id", domain.ErrInvalidRequest)
	}
	return id, nil
}
