package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"sorter_server/pkg/apperr"
	"sorter_server/pkg/logger"
)

// JWTAuth requires an HS256 bearer token signed with secret. The "sub" claim is stored
// in Locals("subject"). An empty secret disables the check.
func JWTAuth(secret string) fiber.Handler {
	if secret == "" {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(time.Minute),
	)
	keyFunc := func(*jwt.Token) (any, error) { return []byte(secret), nil }

	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c.Get(fiber.HeaderAuthorization))
		if tokenString == "" {
			return apperr.Unauthorized("missing authorization")
		}

		claims := jwt.MapClaims{}
		token, err := parser.ParseWithClaims(tokenString, claims, keyFunc)
		if err != nil || !token.Valid {
			logger.WithContext(c.UserContext()).WithError(err).Warn("JWT validation failed")
			return apperr.InvalidToken("invalid token").WithError(err)
		}

		sub, err := claims.GetSubject()
		if err != nil || sub == "" {
			return apperr.InvalidToken("missing subject in token")
		}

		c.Locals("subject", sub)
		c.Locals("claims", claims)
		return c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
