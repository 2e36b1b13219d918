package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/artschool-api/internal/models"
	appErrors "github.com/noah-isme/artschool-api/pkg/errors"
	"github.com/noah-isme/artschool-api/pkg/response"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid "+name))
		return 0, false
	}
	return id, true
}

func queryID(c *gin.Context, name string) (int64, bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false, appErrors.Clone(appErrors.ErrValidation, "invalid "+name)
	}
	return id, true, nil
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}

// paginate slices items by the page and limit query parameters.
func paginate[T any](c *gin.Context, items []T) ([]T, *models.Pagination) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	total := len(items)
	start := total
	// compare before multiplying so a huge page cannot overflow
	if page-1 <= total/size {
		start = min((page-1)*size, total)
	}
	end := min(start+size, total)
	return items[start:end], &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}

func listResponse[T any](c *gin.Context, items []T, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	pageItems, pagination := paginate(c, items)
	response.JSON(c, http.StatusOK, pageItems, pagination)
}

// deleted maps a repository "existed" flag onto 204 or 404.
func deleted(c *gin.Context, ok bool, err error, what string) {
	if err != nil {
		response.Error(c, err)
		return
	}
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, what+" not found"))
		return
	}
	response.NoContent(c)
}
