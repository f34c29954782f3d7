package identity

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
)

// CookieName is the session cookie set by the web frontend
const CookieName = "session"

const ginKey = "identity"

type ctxKey struct{}

// Verifier resolves a raw token
type Verifier interface {
	Verify(raw string) (domain.Identity, error)
}

// Middleware resolves the caller from the session cookie or a Bearer
// header and aborts with 401 when neither verifies.
func Middleware(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, err := v.Verify(TokenFromRequest(c.Request))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
				"code":  domain.ErrorCode(domain.ErrUnauthenticated),
			})
			return
		}

		c.Set(ginKey, who)
		c.Request = c.Request.WithContext(NewContext(c.Request.Context(), who))
		c.Next()
	}
}

// TokenFromRequest prefers the Authorization header over the cookie
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if ck, err := r.Cookie(CookieName); err == nil {
		return ck.Value
	}
	return ""
}

// FromGin returns the identity stored by Middleware
func FromGin(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(ginKey)
	if !ok {
		return domain.Identity{}, false
	}
	who, ok := v.(domain.Identity)
	return who, ok
}

func NewContext(ctx context.Context, who domain.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, who)
}

// FromContext returns the identity carried by ctx
func FromContext(ctx context.Context) (domain.Identity, bool) {
	who, ok := ctx.Value(ctxKey{}).(domain.Identity)
	return who, ok
}
