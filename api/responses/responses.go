package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	pkgerrors "github.com/angelmondragon/packfinderz-carts/pkg/errors"
	"github.com/angelmondragon/packfinderz-carts/pkg/logger"
	"github.com/angelmondragon/packfinderz-carts/pkg/types"
)

// HandlerFunc is an HTTP handler that reports failures by returning them.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// ErrorObserver is notified with the code of every error written.
type ErrorObserver interface {
	IncError(code string)
}

// Renderer writes a named view.
type Renderer interface {
	Render(w io.Writer, name string, data any) error
}

// Handle adapts fn to http.HandlerFunc; a returned error is written once by WriteError.
func Handle(logg *logger.Logger, obs ErrorObserver, fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			Fail(r.Context(), logg, obs, w, err)
		}
	}
}

// Fail reports err to obs and writes it. Middleware that rejects a request
// outside Handle uses it so every error code is counted.
func Fail(ctx context.Context, logg *logger.Logger, obs ErrorObserver, w http.ResponseWriter, err error) {
	if obs != nil {
		obs.IncError(string(codeOf(err)))
	}
	WriteError(ctx, logg, w, err)
}

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, types.SuccessEnvelope{Data: data})
}

// WriteJSON writes payload as-is, without an envelope.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}

// Render executes the named view and writes it with a 200 status. Nothing is
// written when the view fails. Once the status is sent, a failed write is only
// logged since the response can no longer carry an error.
func Render(w http.ResponseWriter, renderer Renderer, name string, data any) error {
	var buf bytes.Buffer
	if err := renderer.Render(&buf, name, data); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to render view")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf(`{"level":"error","msg":"failed to write view","view":%q,"err":"%v"}`, name, err)
	}
	return nil
}

func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())
	clientError := meta.HTTPStatus < http.StatusInternalServerError

	msg := meta.PublicMessage
	if clientError {
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	payload := types.ErrorEnvelope{
		Error: types.APIError{
			Code:    string(typed.Code()),
			Name:    typed.Name(),
			Message: msg,
		},
	}

	if clientError && typed.Cause() != nil {
		payload.Error.Cause = typed.Cause().Error()
	}
	if meta.DetailsAllowed {
		if details := typed.Details(); details != nil {
			payload.Error.Details = details
		}
	}

	if logg != nil {
		dump := pkgerrors.Dump(err)

		fields := map[string]any{
			"error":       dump.TopMessage,
			"error_code":  dump.Code,
			"error_name":  dump.Name,
			"error_chain": dump.Chain,
		}
		for k, v := range dump.Store.Fields() {
			fields[k] = v
		}

		ctx = logg.WithFields(ctx, fields)
		if clientError {
			logg.Warn(ctx, "request.error")
		} else {
			logg.Error(ctx, "request.error", err)
		}
	}

	WriteJSON(w, meta.HTTPStatus, payload)
}

func codeOf(err error) pkgerrors.Code {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Code()
	}
	return pkgerrors.CodeInternal
}
