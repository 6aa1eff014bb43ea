package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	appErrors "github.com/noah-isme/bilishelf-api/pkg/errors"
	"github.com/noah-isme/bilishelf-api/pkg/response"
)

// ContextSubjectKey is the gin context key storing the token subject.
const ContextSubjectKey = "apiSubject"

type tokenValidator interface {
	Enabled() bool
	Validate(token string) (*jwt.RegisteredClaims, error)
}

// APIToken requires a valid bearer token when the validator is enabled and
// passes every request through otherwise.
func APIToken(tokens tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil || !tokens.Enabled() {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			response.Abort(c, appErrors.ErrUnauthorized)
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Abort(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			return
		}

		claims, err := tokens.Validate(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Abort(c, err)
			return
		}
		c.Set(ContextSubjectKey, claims.Subject)
		c.Next()
	}
}
