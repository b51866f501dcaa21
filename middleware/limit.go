package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/devmarvs/jokebox"
	"github.com/devmarvs/jokebox/apperr"
)

// BodyLimit caps the request body at maxBytes. A handler that reads past
// the cap fails with a 413 apperr, even if it wrapped the read error.
func BodyLimit(maxBytes int64) jokebox.Middleware {
	return func(next jokebox.Handler) jokebox.Handler {
		return func(ctx *jokebox.Context) error {
			ctx.Request.Body = http.MaxBytesReader(ctx.ResponseWriter, ctx.Request.Body, maxBytes)
			err := next(ctx)
			if tooLarge := BodyTooLarge(err); tooLarge != nil {
				return tooLarge
			}
			return err
		}
	}
}

// BodyTooLarge returns a 413 apperr when err stems from an exceeded body
// limit, and nil otherwise.
func BodyTooLarge(err error) *apperr.Error {
	var maxErr *http.MaxBytesError
	if !errors.As(err, &maxErr) {
		return nil
	}
	if appErr := apperr.As(err); appErr != nil && appErr.Code == apperr.CodeTooLarge {
		return appErr
	}
	return apperr.TooLarge("request body exceeds "+strconv.FormatInt(maxErr.Limit, 10)+" bytes", err)
}
