package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/andriel300/tec-shop-sub006/internal/domain/entity"
	"github.com/andriel300/tec-shop-sub006/internal/infrastructure/firebase"
)

type AuthMiddleware struct {
	authClient *firebase.FirebaseAuthClient
}

func NewAuthMiddleware(authClient *firebase.FirebaseAuthClient) *AuthMiddleware {
	return &AuthMiddleware{
		authClient: authClient,
	}
}

func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is required")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization format")
		}

		uid, claims, err := m.authClient.VerifyToken(c.Request().Context(), parts[1])
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		}

		c.Set("participant", ParticipantFromClaims(uid, claims))

		return next(c)
	}
}

// ParticipantFromClaims resolves which side of the marketplace the caller
// acts as. Accounts carrying the "seller" custom claim are sellers;
// everyone else is a buyer.
func ParticipantFromClaims(uid string, claims map[string]interface{}) entity.Participant {
	participantType := entity.ParticipantTypeUser
	if seller, ok := claims["seller"].(bool); ok && seller {
		participantType = entity.ParticipantTypeSeller
	}
	return entity.Participant{ID: uid, Type: participantType}
}

// CallerParticipant reads the authenticated participant from the request
// context.
func CallerParticipant(c echo.Context) (entity.Participant, bool) {
	participant, ok := c.Get("participant").(entity.Participant)
	return participant, ok
}
