package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/timetracker-api/internal/constants"
)

// PageRequest is the page a list call asks for. A zero value means unpaged.
type PageRequest struct {
	Page     int
	PageSize int
}

// PageFromQuery reads ?page and ?page_size (or the shorter ?limit) from the
// request. Missing or out of range values fall back to the defaults.
func PageFromQuery(c *gin.Context) PageRequest {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(constants.MinPageSize)))

	sizeParam := c.Query("page_size")
	if sizeParam == "" {
		sizeParam = c.DefaultQuery("limit", strconv.Itoa(constants.DefaultPageSize))
	}
	size, _ := strconv.Atoi(sizeParam)

	if page < constants.MinPageSize {
		page = constants.MinPageSize
	}
	if size < constants.MinPageSize || size > constants.MaxPageSize {
		size = constants.DefaultPageSize
	}

	return PageRequest{Page: page, PageSize: size}
}

// TotalPages is the number of pages needed for total rows, or zero when unpaged.
func (p PageRequest) TotalPages(total int64) int {
	if p.PageSize <= 0 {
		return 0
	}
	return int((total + int64(p.PageSize) - 1) / int64(p.PageSize))
}
