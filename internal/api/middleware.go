package api

import (
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/court-reservation/internal/admin"
	"github.com/nekogravitycat/court-reservation/internal/auth"
	"github.com/nekogravitycat/court-reservation/internal/pkg/apperror"
	"github.com/nekogravitycat/court-reservation/internal/pkg/response"
)

var errInvalidOrigin = apperror.New(http.StatusForbidden, "Invalid request origin")

// RequireAdmin ensures the authenticated user has an admin profile.
// It MUST be used after auth.AuthRequired middleware.
func RequireAdmin(admins admin.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := admins.Authorize(c.Request.Context(), auth.GetUserID(c)); err != nil {
			response.Error(c, apperror.OrInternal(err, "ADMIN_LOOKUP_FAILED"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// SameOrigin rejects state-changing requests whose Origin (or, failing
// that, Referer) host is not the request host or one of allowed.
func SameOrigin(allowed []string) gin.HandlerFunc {
	hosts := make([]string, 0, len(allowed))
	for _, o := range allowed {
		if h := hostOf(o); h != "" {
			hosts = append(hosts, h)
		}
	}

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		source := c.GetHeader("Origin")
		if source == "" {
			source = c.GetHeader("Referer")
		}
		host := hostOf(source)
		if host == "" || (!strings.EqualFold(host, c.Request.Host) && !slices.Contains(hosts, strings.ToLower(host))) {
			response.Error(c, errInvalidOrigin)
			c.Abort()
			return
		}
		c.Next()
	}
}

func hostOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Host)
}

// splitOrigins parses the comma separated PROD_ORIGINS value.
func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
