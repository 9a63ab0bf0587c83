package httpapi

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"attendview/internal/auth"
	"attendview/internal/httpmiddleware"
)

//go:embed web
var webFS embed.FS

// Options configures NewRouter.
type Options struct {
	Viewer          auth.ViewerOptions
	RateLimitPerMin int
	AllowedOrigins  []string
	Metrics         http.Handler
	Logger          *slog.Logger
}

// NewRouter builds the gin engine with middleware, API routes and the page.
func NewRouter(h *Handler, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.Logger(logger, "/healthz", "/metrics"))
	r.Use(httpmiddleware.CORS(opts.AllowedOrigins...))
	r.Use(httpmiddleware.SecurityHeaders())
	r.Use(httpmiddleware.NewIPRateLimiter(opts.RateLimitPerMin).GinMiddleware())

	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics))
	}
	r.GET("/healthz", h.Healthz)

	static, _ := fs.Sub(webFS, "web/static")
	r.StaticFS("/static", http.FS(static))
	r.GET("/", func(c *gin.Context) {
		page, err := webFS.ReadFile("web/index.html")
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	})

	v1 := r.Group("/v1", auth.Viewer(opts.Viewer))
	v1.GET("/sessions", h.Sessions)
	v1.GET("/attendance", h.Attendance)
	v1.GET("/attendance/print", h.Print)
	v1.GET("/attendance/download", h.Download)
	v1.GET("/attendance/export.csv", h.ExportCSV)
	v1.GET("/attendance/export.xlsx", h.ExportXLSX)

	return r
}
