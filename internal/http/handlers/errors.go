package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hongminglow/fincontrol-be/internal/http/respond"
	"github.com/hongminglow/fincontrol-be/internal/models"
	"github.com/hongminglow/fincontrol-be/internal/storage"
)

// requestError carries the status and public message for a failed request.
type requestError struct {
	status  int
	message string
	cause   error
}

func (e *requestError) Error() string { return e.message }
func (e *requestError) Unwrap() error { return e.cause }

func badRequest(message string) error {
	return &requestError{status: http.StatusBadRequest, message: message}
}

func internal(message string, cause error) error {
	return &requestError{status: http.StatusInternalServerError, message: message, cause: cause}
}

// writeError maps err to a response. Storage and validation sentinels are
// translated here; anything else is a 500 and is logged with kv.
func writeError(w http.ResponseWriter, log *zap.SugaredLogger, err error, kv ...any) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
	case errors.Is(err, models.ErrInvalid):
		reqErr = &requestError{status: http.StatusBadRequest, message: err.Error(), cause: err}
	case errors.Is(err, storage.ErrNotFound):
		reqErr = &requestError{status: http.StatusNotFound, message: "not found", cause: err}
	case errors.Is(err, storage.ErrAlreadyExists):
		reqErr = &requestError{status: http.StatusConflict, message: "already exists", cause: err}
	default:
		reqErr = &requestError{status: http.StatusInternalServerError, message: "internal error", cause: err}
	}
	if reqErr.status >= http.StatusInternalServerError {
		cause := err
		if reqErr.cause != nil {
			cause = reqErr.cause
		}
		log.Errorw(reqErr.message, append(kv, "error", cause)...)
	}
	respond.Error(w, reqErr.status, reqErr.message)
}

func orNop(log *zap.SugaredLogger) *zap.SugaredLogger {
	if log == nil {
		return zap.NewNop().Sugar()
	}
	return log
}
