// Package httpapi exposes the attendance viewer over HTTP.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"attendview/internal/auth"
	"attendview/internal/view"
)

// Viewer is the part of the view service the handlers use.
type Viewer interface {
	Sessions() []string
	Render(ctx context.Context, req view.Request) (view.Result, error)
	Print(ctx context.Context, viewer string) (string, error)
	Download(ctx context.Context, viewer string) ([]byte, error)
	ExportCSV(ctx context.Context, viewer string) ([]byte, error)
	ExportXLSX(ctx context.Context, viewer string) ([]byte, error)
}

// Checker reports whether a dependency is reachable.
type Checker interface {
	Healthy(ctx context.Context) bool
}

const (
	noPrintNotice    = "No table to print!"
	noDownloadNotice = "No data to download!"
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Handler struct {
	views  Viewer
	checks map[string]Checker
	logger *slog.Logger
}

func NewHandler(views Viewer, checks map[string]Checker, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{views: views, checks: checks, logger: logger}
}

// ---------- Health ----------

func (h *Handler) Healthz(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{"status": "ok"}
	for name, chk := range h.checks {
		ok := chk.Healthy(c.Request.Context())
		body[name] = ok
		if !ok {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
	}
	c.JSON(status, body)
}

// ---------- Sessions ----------

func (h *Handler) Sessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": h.views.Sessions()})
}

// ---------- Attendance ----------

// Attendance renders the table for ?session=&date=YYYY-MM-DD&filter=.
func (h *Handler) Attendance(c *gin.Context) {
	res, err := h.views.Render(c.Request.Context(), view.Request{
		Viewer:  auth.ViewerID(c),
		Session: c.Query("session"),
		Date:    c.Query("date"),
		Filter:  c.Query("filter"),
	})
	if err != nil {
		var rerr *view.RetrievalError
		switch {
		case view.IsInputError(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": inputNotice(err)})
		case errors.As(err, &rerr):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Error loading attendance: " + rerr.Err.Error()})
		default:
			h.logger.Error("render attendance", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "render failed"})
		}
		return
	}
	c.JSON(http.StatusOK, res)
}

func inputNotice(err error) string {
	if errors.Is(err, view.ErrMissingInput) {
		return "Please select both course and date."
	}
	return err.Error()
}

// Print serves the last table as a page that opens the print dialog.
func (h *Handler) Print(c *gin.Context) {
	doc, err := h.views.Print(c.Request.Context(), auth.ViewerID(c))
	if err != nil {
		h.noTable(c, err, noPrintNotice)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(doc))
}

// Download serves the last table as attendance.html.
func (h *Handler) Download(c *gin.Context) {
	data, err := h.views.Download(c.Request.Context(), auth.ViewerID(c))
	if err != nil {
		h.noTable(c, err, noDownloadNotice)
		return
	}
	attachment(c, "attendance.html", "text/html; charset=utf-8", data)
}

func (h *Handler) ExportCSV(c *gin.Context) {
	data, err := h.views.ExportCSV(c.Request.Context(), auth.ViewerID(c))
	if err != nil {
		h.noTable(c, err, noDownloadNotice)
		return
	}
	attachment(c, "attendance.csv", "text/csv; charset=utf-8", data)
}

func (h *Handler) ExportXLSX(c *gin.Context) {
	data, err := h.views.ExportXLSX(c.Request.Context(), auth.ViewerID(c))
	if err != nil {
		h.noTable(c, err, noDownloadNotice)
		return
	}
	attachment(c, "attendance.xlsx", xlsxContentType, data)
}

func (h *Handler) noTable(c *gin.Context, err error, notice string) {
	if errors.Is(err, view.ErrNoTable) {
		c.JSON(http.StatusNotFound, gin.H{"error": notice})
		return
	}
	h.logger.Error("load snapshot", slog.String("error", err.Error()))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "snapshot unavailable"})
}

func attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}
