package server

import (
	"strconv"

	"github.com/gin-gonic/gin"

	errs "github.com/TechbyAbrar/match-making-app/internal/errors"
)

// abortWithError maps a domain error to its HTTP status and caller-safe
// message. Internal detail never reaches the response body.
func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(errs.HTTPStatus(err), gin.H{"error": errs.Message(err)})
}

// pathUserID parses a numeric user id path parameter.
func pathUserID(c *gin.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errs.Validationf("invalid %s", name)
	}
	return id, nil
}

// queryPage reads the page/page_size query parameters. Absent values come
// back zero; the services normalize them.
func queryPage(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ = strconv.Atoi(c.DefaultQuery("page_size", "0"))
	return page, size
}

// queryFloat reads an optional float query parameter. A present but
// malformed value is a validation error, not a silent default.
func queryFloat(c *gin.Context, name string) (*float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errs.Validationf("invalid %s", name)
	}
	return &v, nil
}

// queryInt reads an optional integer query parameter.
func queryInt(c *gin.Context, name string) (*int, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errs.Validationf("invalid %s", name)
	}
	return &v, nil
}
