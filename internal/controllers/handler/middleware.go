package handler

import (
	"fmt"
	"strings"

	"activities/internal/application/entity"
	use_cases "activities/internal/application/use-cases"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const identityKey = "identity"

// AuthMiddleware разбирает Bearer-токен (HS256, sub = username) и кладёт
// загруженного пользователя в Locals запроса.
type AuthMiddleware struct {
	usecase use_cases.UseCaser
	secret  []byte
	logger  *zap.SugaredLogger
}

func NewAuthMiddleware(usecase use_cases.UseCaser, secret string, logger *zap.SugaredLogger) *AuthMiddleware {
	return &AuthMiddleware{
		usecase: usecase,
		secret:  []byte(secret),
		logger:  logger,
	}
}

func (m *AuthMiddleware) RequireIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(fiber.HeaderAuthorization)
		tokenStr, found := strings.CutPrefix(raw, "Bearer ")
		if !found || tokenStr == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "MISSING AUTHORIZATION TOKEN",
			})
		}

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			m.logger.Warnf("invalid token: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "INVALID AUTHORIZATION TOKEN",
			})
		}

		username, err := token.Claims.GetSubject()
		if err != nil || username == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "INVALID AUTHORIZATION TOKEN",
			})
		}

		user, err := m.usecase.IdentityByUsername(c.Context(), username)
		if err != nil {
			m.logger.Warnf("[user: %s] identity lookup failed: %v", username, err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "UNKNOWN IDENTITY",
			})
		}

		c.Locals(identityKey, *user)
		return c.Next()
	}
}

func identityFromCtx(c *fiber.Ctx) entity.User {
	user, _ := c.Locals(identityKey).(entity.User)
	return user
}
