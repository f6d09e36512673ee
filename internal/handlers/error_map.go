package handlers

import (
	"net/http"

	"grocery-analytics/internal/apperror"
	"grocery-analytics/internal/logger"
)

func writeServiceError(w http.ResponseWriter, log *logger.Logger, err error, internalMessage string) {
	switch apperror.KindOf(err) {
	case apperror.KindNotFound:
		writeErrorResponse(w, http.StatusNotFound, err.Error())
	case apperror.KindValidation:
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
	case apperror.KindConflict:
		writeErrorResponse(w, http.StatusConflict, err.Error())
	case apperror.KindUnavailable:
		if log != nil {
			log.WithError(err).Warn(internalMessage)
		}
		writeErrorResponse(w, http.StatusServiceUnavailable, err.Error())
	default:
		if log != nil {
			log.WithError(err).Error(internalMessage)
		}
		writeErrorResponse(w, http.StatusInternalServerError, internalMessage)
	}
}
