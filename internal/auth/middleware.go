package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieName is the cookie carrying the viewer token.
const CookieName = "attendview_viewer"

const viewerKey = "viewer"

// ViewerOptions configures the viewer middleware.
type ViewerOptions struct {
	SigningKey string
	Issuer     string
	TTL        time.Duration
	Secure     bool
}

// Viewer resolves the viewer id from the signed cookie, minting a new one
// when the cookie is missing, expired or forged.
func Viewer(opts ViewerOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, err := c.Cookie(CookieName); err == nil && raw != "" {
			if claims, err := Parse(raw, opts.SigningKey, opts.Issuer); err == nil {
				c.Set(viewerKey, claims.Viewer)
				c.Next()
				return
			}
		}

		viewer := NewViewerID()
		token, _, err := Issue(viewer, opts.Issuer, opts.SigningKey, opts.TTL)
		if err != nil {
			slog.Error("issue viewer token", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "viewer token issue failed"})
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CookieName, token, int(opts.TTL.Seconds()), "/", "", opts.Secure, true)
		c.Set(viewerKey, viewer)
		c.Next()
	}
}

// ViewerID returns the id set by Viewer, or "" outside the middleware.
func ViewerID(c *gin.Context) string {
	return c.GetString(viewerKey)
}
