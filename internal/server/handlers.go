package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/koustreak/schemaroute/internal/database"
	"github.com/koustreak/schemaroute/internal/errs"
	"github.com/koustreak/schemaroute/internal/introspect"
	"github.com/koustreak/schemaroute/internal/logger"
	"github.com/koustreak/schemaroute/internal/schema"
)

type handlers struct {
	mgr *introspect.Manager
	log *logger.Logger
}

// TableResponse is the body of GET /tables/{table}.
type TableResponse struct {
	Connection  string                    `json:"connection"`
	Name        string                    `json:"name"`
	PrimaryKey  []string                  `json:"primary_key,omitempty"`
	Columns     []schema.ColumnDescriptor `json:"columns"`
	ForeignKeys []database.ForeignKey     `json:"foreign_keys"`
}

// ResolveResponse is the body of GET /resolve/{table}.
type ResolveResponse struct {
	Connection string `json:"connection"`
	Table      string `json:"table"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	if err := h.mgr.Registry().Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error(), Kind: errs.KindOf(err).String()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) listTables(w http.ResponseWriter, r *http.Request) {
	names, err := h.mgr.ListTableNames(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (h *handlers) describeTable(w http.ResponseWriter, r *http.Request) {
	t, err := h.mgr.GetTable(r.Context(), chi.URLParam(r, "table"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TableResponse{
		Connection:  t.Connection,
		Name:        t.Name,
		PrimaryKey:  t.PrimaryKey(),
		Columns:     schema.Describe(t),
		ForeignKeys: t.ForeignKeys,
	})
}

func (h *handlers) columnNames(w http.ResponseWriter, r *http.Request) {
	names, err := h.mgr.ListTableColumnNames(r.Context(), chi.URLParam(r, "table"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (h *handlers) column(w http.ResponseWriter, r *http.Request) {
	c, err := h.mgr.GetColumn(r.Context(), chi.URLParam(r, "table"), chi.URLParam(r, "column"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *handlers) resolve(w http.ResponseWriter, r *http.Request) {
	conn, table, err := h.mgr.Resolve(r.Context(), chi.URLParam(r, "table"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ResolveResponse{Connection: conn, Table: table})
}

// exists answers GET /exists?table=a&table=b.
func (h *handlers) exists(w http.ResponseWriter, r *http.Request) {
	tables := r.URL.Query()["table"]
	if len(tables) == 0 {
		h.fail(w, r, errs.New(errs.ErrKindInvalidInput, "at least one table query parameter is required"))
		return
	}
	ok, err := h.mgr.TableExists(r.Context(), tables...)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"exists": ok})
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.ErrorWith("request failed", err, map[string]any{"path": r.URL.Path})
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: errs.KindOf(err).String()})
}

// statusFor maps an error kind to an HTTP status code.
func statusFor(err error) int {
	switch errs.KindOf(err) {
	case errs.ErrKindNotFound, errs.ErrKindTableNotFound, errs.ErrKindColumnNotFound, errs.ErrKindNoAcceptableConnection:
		return http.StatusNotFound
	case errs.ErrKindInvalidInput:
		return http.StatusBadRequest
	case errs.ErrKindPermissionDenied:
		return http.StatusForbidden
	case errs.ErrKindTimeout:
		return http.StatusGatewayTimeout
	case errs.ErrKindConnectionFailed:
		return http.StatusServiceUnavailable
	case errs.ErrKindIntrospection, errs.ErrKindQueryFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
