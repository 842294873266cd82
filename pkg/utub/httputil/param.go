package httputil

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParamUint parses a numeric path parameter. On failure it writes a 400
// response and reports false; the handler should just return.
func ParamUint(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(v), true
}
