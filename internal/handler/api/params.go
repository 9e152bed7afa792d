package api

import (
	"net/http"

	"coach-booking/internal/domain/access"
	"coach-booking/internal/handler/httperr"
	"coach-booking/internal/handler/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// actorAndID aborts the request itself when either is missing.
func actorAndID(c *gin.Context, param string) (access.Actor, uuid.UUID, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return access.Actor{}, uuid.Nil, false
	}
	id, ok := pathUUID(c, param)
	if !ok {
		return access.Actor{}, uuid.Nil, false
	}
	return actor, id, true
}

func pathUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return uuid.Nil, false
	}
	return id, true
}
