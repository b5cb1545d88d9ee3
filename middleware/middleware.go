package middleware

import (
	"context"
	"log/slog"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/reoring/formskema"
)

// ctxKeyBound is a typed context key for storing the bound form.
type ctxKeyBound struct{}

// ContextWithBound attaches a bound form to the context.
func ContextWithBound(ctx context.Context, b *formskema.Bound) context.Context {
	return context.WithValue(ctx, ctxKeyBound{}, b)
}

// BoundFromContext retrieves the bound form stored by ValidateJSON.
func BoundFromContext(ctx context.Context) (*formskema.Bound, bool) {
	b, ok := ctx.Value(ctxKeyBound{}).(*formskema.Bound)
	return b, ok && b != nil
}

// Options tunes ValidateJSON.
type Options struct {
	Decode formskema.DecodeOptions
	// MaxBodyBytes limits the request body; 0 means 1 MiB.
	MaxBodyBytes int64
	Logger       *slog.Logger
}

// DefaultOptions returns a recommended default for HTTP JSON boundaries:
// duplicate keys are errors and nesting is capped.
func DefaultOptions() Options {
	return Options{Decode: formskema.DefaultDecodeOptions(), MaxBodyBytes: 1 << 20}
}

// BindRequest decodes the JSON body of r and binds it against s. Decoding
// failures are returned as is; validation failures as *formskema.ValidationError.
func BindRequest(r *http.Request, s *formskema.Schema, opt Options) (*formskema.Bound, error) {
	limit := opt.MaxBodyBytes
	if limit <= 0 {
		limit = 1 << 20
	}
	data, err := formskema.DecodeJSONReader(http.MaxBytesReader(nil, r.Body, limit), opt.Decode)
	if err != nil {
		return nil, err
	}
	return s.BindData(data)
}

// ValidateJSON binds the incoming JSON body against s and stores the result in
// the request context. Validation failures answer 422 with ErrorPayload,
// undecodable bodies 400.
func ValidateJSON(s *formskema.Schema, opt Options) func(http.Handler) http.Handler {
	logger := opt.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, err := BindRequest(r, s, opt)
			if err != nil {
				logger.Debug("request rejected", "path", r.URL.Path, "error", err)
				WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithBound(r.Context(), b)))
		})
	}
}

// WriteError answers with 422 and ErrorPayload for validation failures and
// 400 with {"error": msg} for anything else.
func WriteError(w http.ResponseWriter, err error) {
	if ve, ok := formskema.AsValidationError(err); ok {
		WriteJSON(w, http.StatusUnprocessableEntity, ErrorPayload(ve))
		return
	}
	WriteJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
}

// WriteJSON encodes v with status code.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(append(b, '\n'))
}

type issueJSON struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Rule    string `json:"rule,omitempty"`
}

// ErrorPayload shapes a validation error for JSON responses: the nested
// field-keyed payload under "errors" and the flattened issues under "issues".
func ErrorPayload(ve *formskema.ValidationError) map[string]any {
	iss := ve.Issues()
	out := make([]issueJSON, len(iss))
	for i, it := range iss {
		out[i] = issueJSON{Path: it.Path, Code: it.Code, Message: it.Message, Rule: it.Rule}
	}
	return map[string]any{"errors": ve, "issues": out}
}
