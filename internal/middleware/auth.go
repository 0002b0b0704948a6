package middleware

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/greenkeep/greenkeep-backend/internal/httpx"
)

type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// AuthRequired validates the access token and stores the user's identity in
// the request context. The token comes from the Authorization header, the
// session cookie, or the `token` query parameter; the query form exists for
// websocket upgrades, where browsers cannot set headers.
func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, errResp := extractToken(c)
		if errResp != nil {
			return errResp
		}

		claims, err := ParseToken(tokenString)
		if err != nil {
			return httpx.Unauthorized(c, "invalid_access_token", "Invalid or expired token")
		}

		c.Locals("userID", claims.UserID)
		c.Locals("email", claims.Email)
		return c.Next()
	}
}

func extractToken(c *fiber.Ctx) (string, error) {
	if authHeader := c.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", httpx.Unauthorized(c, "invalid_authorization", "Invalid authorization format")
		}
		return parts[1], nil
	}
	if cookie := c.Cookies("gk_access"); cookie != "" {
		return cookie, nil
	}
	if token := c.Query("token"); token != "" {
		return token, nil
	}
	return "", httpx.Unauthorized(c, "missing_access_token", "Missing access token")
}

// ParseToken validates an HS256 token and returns its claims.
func ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method == nil || token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
