package middleware

import (
	"errors"
	"fmt"

	"github.com/filedepot/filedepot_server/internal/response"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
)

// InterceptError turns a handler error into a failure envelope. Errors that
// carry their own envelope are rendered as is; anything else is logged and
// reported with a generic message.
func InterceptError(ctx *fasthttp.RequestCtx, err error) {
	var respErr *response.Error
	if errors.As(err, &respErr) {
		log.Warn().
			Str("requestId", RequestID(ctx)).
			Str("path", string(ctx.Path())).
			Str("reason", respErr.Message).
			Msg("Request rejected")
		response.Write(ctx, respErr.Envelope())
		return
	}

	log.Error().
		Err(err).
		Str("requestId", RequestID(ctx)).
		Str("path", string(ctx.Path())).
		Msg("Request failed")
	response.Write(ctx, response.Fail(response.InternalErrorMessage, response.CodeInternal))
}

// Recover catches panics from next and answers with the internal failure
// envelope.
func Recover(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		defer func() {
			if rec := recover(); rec != nil {
				InterceptError(ctx, fmt.Errorf("panic: %v", rec))
			}
		}()

		next(ctx)
	}
}
