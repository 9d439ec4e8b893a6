package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// parseIDParam reads a positive integer path parameter, responding with
// a validation error when it is malformed.
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	raw := ctx.Param(name)

	id, err := strconv.ParseInt(raw, 10, 64)

	if err != nil || id <= 0 {
		RespondBadRequest(ctx, name+" must be a positive integer", nil)
		return 0, false
	}

	return id, true
}
