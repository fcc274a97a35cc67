package http

import (
	"context"
	stdhttp "net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/sirupsen/logrus"

	"eduvista/site/internal/domain/apperr"
)

const internalErrorMessage = "internal server error"

// dataBody is the success envelope every JSON route returns.
type dataBody[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

type dataOutput[T any] struct {
	Status int
	Body   dataBody[T]
}

// listData is a page of rows with the unpaginated total.
type listData[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}

type messageData struct {
	Message string `json:"message"`
}

func ok[T any](data T) *dataOutput[T] {
	return &dataOutput[T]{Status: stdhttp.StatusOK, Body: dataBody[T]{Success: true, Data: data}}
}

func created[T any](data T) *dataOutput[T] {
	return &dataOutput[T]{Status: stdhttp.StatusCreated, Body: dataBody[T]{Success: true, Data: data}}
}

func accepted[T any](data T) *dataOutput[T] {
	return &dataOutput[T]{Status: stdhttp.StatusAccepted, Body: dataBody[T]{Success: true, Data: data}}
}

func list[T any](items []T, total int64) *dataOutput[listData[T]] {
	if items == nil {
		items = []T{}
	}
	return ok(listData[T]{Items: items, Total: total})
}

// errorBody is the failure envelope. It replaces huma's problem+json model so
// validation failures and handler errors look the same to clients.
type errorBody struct {
	status  int
	Success bool     `json:"success"`
	Message string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func (e *errorBody) Error() string {
	return e.Message
}

func (e *errorBody) GetStatus() int {
	return e.status
}

func (e *errorBody) ContentType(string) string {
	return "application/json"
}

func init() {
	huma.NewError = newEnvelopeError
}

func newEnvelopeError(status int, message string, errs ...error) huma.StatusError {
	// Schema and parameter validation failures are plain bad requests here.
	if status == stdhttp.StatusUnprocessableEntity {
		status = stdhttp.StatusBadRequest
	}

	body := &errorBody{status: status, Message: message}
	for _, err := range errs {
		if err == nil {
			continue
		}
		if detailer, ok := err.(huma.ErrorDetailer); ok {
			detail := detailer.ErrorDetail()
			if detail.Location != "" {
				body.Details = append(body.Details, detail.Location+": "+detail.Message)
				continue
			}
			body.Details = append(body.Details, detail.Message)
			continue
		}
		body.Details = append(body.Details, err.Error())
	}
	if len(body.Details) > 0 && message == "validation failed" {
		body.Message = body.Details[0]
	}
	return body
}

func statusForError(err error) int {
	switch {
	case apperr.IsKind(err, apperr.ErrInvalid):
		return stdhttp.StatusBadRequest
	case apperr.IsKind(err, apperr.ErrUnauthorized):
		return stdhttp.StatusUnauthorized
	case apperr.IsKind(err, apperr.ErrForbidden):
		return stdhttp.StatusForbidden
	case apperr.IsKind(err, apperr.ErrNotFound):
		return stdhttp.StatusNotFound
	case apperr.IsKind(err, apperr.ErrConflict):
		return stdhttp.StatusConflict
	case apperr.IsKind(err, apperr.ErrUpstream):
		return stdhttp.StatusBadGateway
	case apperr.IsKind(err, apperr.ErrDisabled):
		return stdhttp.StatusServiceUnavailable
	default:
		return stdhttp.StatusInternalServerError
	}
}

// fail converts a service error into the envelope, logging and reporting
// anything that is not the caller's fault.
func (s *Server) fail(ctx context.Context, err error, message string, fields logrus.Fields) error {
	status := statusForError(err)
	if status >= stdhttp.StatusInternalServerError {
		s.recordError(ctx, err, message, fields)
	}
	return huma.NewError(status, errorMessage(err))
}

func errorMessage(err error) string {
	if statusForError(err) == stdhttp.StatusInternalServerError {
		return internalErrorMessage
	}
	return apperr.Message(err)
}
