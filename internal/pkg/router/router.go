package router

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/gotwofa/internal/pkg/config"
	"github.com/shandysiswandi/gotwofa/internal/pkg/goerror"
	"github.com/shandysiswandi/gotwofa/internal/pkg/instrument"
	"github.com/shandysiswandi/gotwofa/internal/pkg/uid"
	"github.com/shandysiswandi/gotwofa/internal/pkg/validator"
)

const msgInternalServerError = "Internal server error"

type errorResponse struct {
	Message string            `json:"message"`
	Error   map[string]string `json:"error,omitempty"`
}

// Handler is the application-style handler used by this router.
//
// It returns a response payload (that will be JSON encoded) or an error.
type Handler func(r *Request) (any, error)

// Config holds dependencies required to build a Router.
type Config struct {
	// Config provides runtime configuration values.
	Config config.Config
	// UUID generates request correlation IDs.
	UUID uid.StringID
	// Instrument provides tracing and metrics helpers.
	Instrument instrument.Instrumentation
	// Welcome is the message served on GET /.
	Welcome string
}

// Router is an http.Handler that wraps httprouter and a middleware chain.
type Router struct {
	hr  *httprouter.Router
	cfg config.Config
	mws []Middleware
}

// NewRouter builds the router with the global chain: recover, client ip,
// correlation id, observability, maintenance.
func NewRouter(cfg Config) *Router {
	welcome := cfg.Welcome
	if welcome == "" {
		welcome = "Welcome to API"
	}

	hr := &httprouter.Router{
		RedirectTrailingSlash:  true,
		RedirectFixedPath:      true,
		HandleMethodNotAllowed: true,
		HandleOPTIONS:          true,
		SaveMatchedRoutePath:   true,
		NotFound:               staticJSON(http.StatusNotFound, errorResponse{Message: "endpoint not found"}),
		MethodNotAllowed:       staticJSON(http.StatusMethodNotAllowed, errorResponse{Message: "method not allowed"}),
	}
	hr.Handler(http.MethodGet, "/", staticJSON(http.StatusOK, map[string]string{"message": welcome}))

	return &Router{
		hr:  hr,
		cfg: cfg.Config,
		mws: []Middleware{
			middlewareRecoverer,
			middlewareClientIP(cfg.Config),
			middlewareCorrelationID(cfg.UUID),
			middlewareObservability(cfg.Config, cfg.Instrument),
			middlewareMaintenance(cfg.Config),
		},
	}
}

func staticJSON(code int, body any) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, body, code)
	})
}

func (r *Router) GET(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodGet, path, h, mws...)
}

// GETRaw registers a GET endpoint that writes directly to the response writer.
func (r *Router) GETRaw(path string, h http.Handler, mws ...Middleware) {
	r.hr.Handler(http.MethodGet, path, Chain(h, append(r.mws, mws...)...))
}

func (r *Router) POST(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodPost, path, h, mws...)
}

func (r *Router) DELETE(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodDelete, path, h, mws...)
}

func (r *Router) endpoint(method, path string, h Handler, mws ...Middleware) {
	r.hr.Handler(method, path, Chain(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		resp, err := h(&Request{Request: req})
		if err != nil {
			if rec, ok := w.(interface{ SetError(error) }); ok {
				rec.SetError(err)
			}
			r.writeError(w, err)
			return
		}
		writeOK(w, resp)
	}), append(r.mws, mws...)...))
}

// writeError maps goerror types to status codes. Anything that is not a
// business or validation error becomes a 500 whose detail is shown only
// while app.server.expose_internal_errors is on; the flag is read per call
// so it follows config reloads.
func (r *Router) writeError(w http.ResponseWriter, err error) {
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Type() == goerror.TypeServer {
		resp := errorResponse{Message: msgInternalServerError}
		if r.cfg != nil && r.cfg.GetBool("app.server.expose_internal_errors") {
			resp.Error = map[string]string{"detail": internalDetail(err)}
		}
		writeJSON(w, resp, http.StatusInternalServerError)
		return
	}

	resp := errorResponse{Message: gerr.Msg()}
	var verr validator.V10ValidationError
	switch {
	case errors.As(err, &verr):
		resp.Error = verr.Values()
	case len(gerr.Fields()) > 0:
		resp.Error = gerr.Fields()
	}
	writeJSON(w, resp, gerr.StatusCode())
}

// writeOK encodes resp with its own status when it has a StatusCode method.
// A nil payload or 204 writes no body.
func writeOK(w http.ResponseWriter, resp any) {
	code := http.StatusOK
	if sc, ok := resp.(interface{ StatusCode() int }); ok {
		code = sc.StatusCode()
	}
	if resp == nil || code == http.StatusNoContent {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, resp, code)
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.hr.ServeHTTP(w, req)
}

// WriteJSON encodes data as the response body with the given status code.
func WriteJSON(w http.ResponseWriter, data any, code int) {
	writeJSON(w, data, code)
}

func internalDetail(err error) string {
	var gerr *goerror.Error
	if errors.As(err, &gerr) && gerr.Unwrap() != nil {
		return gerr.Unwrap().Error()
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("server: failed to encode data to json", "error", err)
	}
}
