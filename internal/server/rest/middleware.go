package rest

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aicodehub/aicodehub/internal/common"
	"github.com/aicodehub/aicodehub/internal/server/auth"
)

// principalKey is the gin context key holding the authenticated principal.
const principalKey = "auth.principal"

// RequireAuth extracts the bearer token from the Authorization header,
// resolves it into a principal, and stores the principal in the request
// context. Requests without a valid identity never reach the handler.
func (s *Server) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			s.respondError(c, common.ErrMissingCredential)
			return
		}

		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			s.respondError(c, common.ErrMalformedCredential)
			return
		}

		p, err := s.users.Authenticate(c.Request.Context(), token)
		if err != nil {
			s.respondError(c, err)
			return
		}

		c.Set(principalKey, p)
		c.Next()
	}
}

// RequireSuperuser must run after RequireAuth.
func (s *Server) RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := principal(c)
		if p == nil || !p.IsSuperuser {
			s.respondError(c, common.ErrForbidden)
			return
		}
		c.Next()
	}
}

func principal(c *gin.Context) *auth.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*auth.Principal)
	return p
}
