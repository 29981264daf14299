package response

import (
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
)

const (
	CodeOK       = 0
	CodeFail     = 1
	CodeInternal = 2
)

// InternalErrorMessage is the Errmsg of every CodeInternal envelope.
const InternalErrorMessage = "服务器内部错误"

// Envelope is the body of every upload response. Errcode is the only field
// clients should branch on: 0 means Data is set, anything else means Errmsg is.
type Envelope struct {
	Errcode int    `json:"errcode"`
	Errmsg  string `json:"errmsg,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func Success(data any) Envelope {
	return Envelope{
		Errcode: CodeOK,
		Data:    data,
	}
}

// Fail builds a failure envelope. The code defaults to CodeFail; a zero code is
// bumped to CodeFail so a failure can never read as success.
func Fail(message string, code ...int) Envelope {
	errcode := CodeFail
	if len(code) > 0 && code[0] != CodeOK {
		errcode = code[0]
	}
	return Envelope{
		Errcode: errcode,
		Errmsg:  message,
	}
}

// Error is returned by handlers for failures that should reach the caller as
// an envelope with the given code and message.
type Error struct {
	Code    int
	Message string
}

func NewError(message string, code ...int) *Error {
	env := Fail(message, code...)
	return &Error{Code: env.Errcode, Message: env.Errmsg}
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Envelope() Envelope {
	return Fail(e.Message, e.Code)
}

// Write renders env as the JSON body of ctx. The HTTP status is always 200.
func Write(ctx *fasthttp.RequestCtx, env Envelope) {
	body, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal response envelope")
		body, _ = json.Marshal(Fail(InternalErrorMessage, CodeInternal))
	}

	ctx.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(body)
}
