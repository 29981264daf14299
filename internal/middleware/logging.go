package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
)

const (
	HeaderRequestID = "X-Request-Id"
	requestIDKey    = "requestId"
)

// RequestLogger logs one line per request and tags it with a request id taken
// from the X-Request-Id header or generated.
func RequestLogger(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()

		requestID := string(ctx.Request.Header.Peek(HeaderRequestID))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx.SetUserValue(requestIDKey, requestID)
		ctx.Response.Header.Set(HeaderRequestID, requestID)

		next(ctx)

		status := ctx.Response.StatusCode()
		event := log.Info()
		if status >= fasthttp.StatusInternalServerError {
			event = log.Error()
		}
		event.
			Str("requestId", requestID).
			Str("method", string(ctx.Method())).
			Str("path", string(ctx.Path())).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("remoteAddr", ctx.RemoteIP().String()).
			Msg("Request handled")
	}
}

func RequestID(ctx *fasthttp.RequestCtx) string {
	requestID, _ := ctx.UserValue(requestIDKey).(string)
	return requestID
}
