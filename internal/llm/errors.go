package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"runtime/debug"
	"strings"

	"google.golang.org/genai"
)

// ErrorKind classifies generation failures. Its string values are stable and returned to callers.
type ErrorKind string

const (
	KindTimeout    ErrorKind = "timeout"
	KindRateLimit  ErrorKind = "rate_limit"
	KindConnection ErrorKind = "connection"
	KindAPIKey     ErrorKind = "api_key"
	KindGeneric    ErrorKind = "generic"
)

// Transient reports whether a caller may retry the whole operation.
func (k ErrorKind) Transient() bool {
	switch k {
	case KindTimeout, KindRateLimit, KindConnection:
		return true
	}
	return false
}

// ErrEmptyResponse is returned when the model answers successfully with no text.
var ErrEmptyResponse = errors.New("empty response from model")

// GenerationError is the error returned by every Generator implementation in this package.
type GenerationError struct {
	Kind   ErrorKind
	Detail string // operator-facing diagnostic; type name and message for generic failures
	Stack  string // captured for generic failures only
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("generation failed (%s): %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("generation failed (%s)", e.Kind)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// KindOf returns the kind of a generation failure. Errors that were never classified are generic;
// a nil error has no kind.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindGeneric
}

// UserMessage returns the end-user message for a failure kind.
func UserMessage(kind ErrorKind) string {
	switch kind {
	case KindTimeout:
		return "Tempo esgotado ao aguardar resposta da IA. Tente novamente."
	case KindRateLimit:
		return "Limite de requisições atingido. Aguarde alguns minutos."
	case KindConnection:
		return "Erro de conexão com a API. Verifique sua internet."
	case KindAPIKey:
		return "Chave de API inválida ou ausente. Verifique a configuração."
	default:
		return "Erro ao gerar história. Tente novamente ou contate o suporte."
	}
}

// Classify wraps err in a *GenerationError. Structured signals (context deadlines, network errors,
// provider status codes) are checked before falling back to message inspection.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var ge *GenerationError
	if errors.As(err, &ge) {
		return err
	}

	kind := classifyKind(err)
	out := &GenerationError{Kind: kind, Err: err, Detail: err.Error()}
	if kind == KindGeneric {
		out.Detail = fmt.Sprintf("%T: %v", err, err)
		out.Stack = string(debug.Stack())
	}
	return out
}

func classifyKind(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429 || apiErr.Status == "RESOURCE_EXHAUSTED":
			return KindRateLimit
		case apiErr.Code == 401 || apiErr.Code == 403 ||
			apiErr.Status == "UNAUTHENTICATED" || apiErr.Status == "PERMISSION_DENIED":
			return KindAPIKey
		case apiErr.Code == 504 || apiErr.Status == "DEADLINE_EXCEEDED":
			return KindTimeout
		}
		// An invalid key is reported as 400 INVALID_ARGUMENT; the message decides below.
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	var urlErr *url.Error
	var opErr *net.OpError
	if errors.As(err, &urlErr) || errors.As(err, &opErr) {
		return KindConnection
	}

	msg := strings.ToLower(err.Error())
	for _, needle := range []string{"api key", "api_key", "authentication", "unauthorized"} {
		if strings.Contains(msg, needle) {
			return KindAPIKey
		}
	}
	return KindGeneric
}
