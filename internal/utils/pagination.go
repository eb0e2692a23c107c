package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kbsvc/kanban-board-api/internal/constants"
)

// PaginationParams holds the pagination window for a listing request.
type PaginationParams struct {
	Limit  int
	Offset int
}

// GetPaginationParams extracts and validates limit/offset from the request.
// Out-of-range values fall back to the defaults.
func GetPaginationParams(c *gin.Context) PaginationParams {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultPageSize)))
	if err != nil || limit < constants.MinLimit || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < constants.MinOffset {
		offset = 0
	}

	return PaginationParams{
		Limit:  limit,
		Offset: offset,
	}
}
