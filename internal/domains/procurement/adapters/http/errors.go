package procurementhttp

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/application"
	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/ports"
	apierrors "github.com/Apurer/go-gin-p2p-server/internal/shared/errors"
)

var responder = apierrors.NewChainedResponder("", mapProcurementError)

// mapProcurementError translates service sentinels into problem responses.
func mapProcurementError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrAuthorization):
		return apierrors.ErrForbidden.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrState):
		return apierrors.ErrStateConflict.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrConflict):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrDocumentGeneration):
		return apierrors.ErrBadGateway.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrInvalidRole):
		return apierrors.ErrInternal.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	responder.RespondError(c, err)
}

func respondBadRequest(c *gin.Context, err error) {
	responder.BadRequest(c, err.Error())
}
