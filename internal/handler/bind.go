package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// bindFlexible normalizes a request body into a typed struct regardless of
// wire format: JSON bodies bind through the JSON tags, anything else (form
// posts included) through the form tags. An empty body binds to the zero
// value so operations with fully optional inputs stay callable.
func bindFlexible(c *gin.Context, obj any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	contentType := c.GetHeader("Content-Type")
	if strings.Contains(contentType, "json") {
		return c.ShouldBindJSON(obj)
	}
	return c.ShouldBind(obj)
}
