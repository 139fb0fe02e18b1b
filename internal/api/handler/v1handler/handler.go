// Package v1handler implements the upload and download endpoints of the
// verification API.
package v1handler

import (
	"context"
	"net/http"

	"verifier/internal/config"
	"verifier/internal/verifier"
	"verifier/pkg/logger"
	"verifier/pkg/serrors"

	"github.com/go-faster/jx"
	"go.uber.org/zap"
)

// Deps are the services the handlers delegate to.
type Deps struct {
	Verifier verifier.Verifier
}

// Options configure request handling.
type Options struct {
	// PublicURL is the base of the download links returned after an upload.
	PublicURL string
	// MaxUploadBytes caps the upload request body; 0 means unlimited.
	MaxUploadBytes int64
	// MultipartMemory is the part of a multipart body held in memory; the
	// rest is spilled to temporary files.
	MultipartMemory int64
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		PublicURL:       cfg.HTTP.PublicURL,
		MaxUploadBytes:  cfg.HTTP.MaxUploadBytes,
		MultipartMemory: cfg.HTTP.MultipartMemory,
	}
}

type Handler struct {
	deps    Deps
	options Options
}

func New(deps Deps, options Options) *Handler {
	if options.MultipartMemory <= 0 {
		options.MultipartMemory = 32 << 20
	}

	return &Handler{deps: deps, options: options}
}

// ErrorResponse is the status and body sent for a failed request.
type ErrorResponse struct {
	StatusCode int
	Code       string
	Message    string
}

// Encode writes the response body as {"code": ..., "error": ...}.
func (r ErrorResponse) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("code")
	e.Str(r.Code)
	e.FieldStart("error")
	e.Str(r.Message)
	e.ObjEnd()
}

// NewError maps err to a response by its semantic kind. Messages attached to
// client errors are passed through; anything unclassified becomes a 500
// without details.
func (h Handler) NewError(ctx context.Context, err error) *ErrorResponse {
	res := &ErrorResponse{
		StatusCode: http.StatusInternalServerError,
		Code:       serrors.ErrInternal.Error(),
		Message:    "internal error",
	}

	kind := serrors.KindOf(err)
	switch kind {
	case serrors.ErrBadRequest:
		res.StatusCode, res.Message = http.StatusBadRequest, "bad request"
	case serrors.ErrNotFound:
		res.StatusCode, res.Message = http.StatusNotFound, "resource not found"
	case serrors.ErrMalformedSource:
		res.StatusCode, res.Message = http.StatusUnprocessableEntity, "Error processing CSV file"
	case serrors.ErrPayloadTooLarge:
		res.StatusCode, res.Message = http.StatusRequestEntityTooLarge, "file too large"
	case serrors.ErrTimeout:
		res.StatusCode, res.Message = http.StatusGatewayTimeout, "request timed out"
	}

	if res.StatusCode >= http.StatusInternalServerError && kind != serrors.ErrTimeout {
		logger.Error(ctx, "request failed", zap.Error(err))

		return res
	}

	res.Code = kind.Error()
	if msg := serrors.MessageOf(err); msg != "" {
		res.Message = msg
	}
	logger.Info(ctx, "request rejected", zap.Int("status", res.StatusCode), zap.Error(err))

	return res
}

func (h Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	res := h.NewError(r.Context(), err)

	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	res.Encode(e)

	writeJSON(w, res.StatusCode, e.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
