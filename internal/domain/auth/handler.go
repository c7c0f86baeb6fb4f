package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Handler exposes admin-login. Credential checking is delegated to the
// verifier; no session or cookie is established here.
type Handler struct {
	verifier CredentialVerifier
	issuer   *TokenIssuer // nil when token auth is disabled
	log      zerolog.Logger
}

func NewHandler(verifier CredentialVerifier, issuer *TokenIssuer, log zerolog.Logger) *Handler {
	return &Handler{verifier: verifier, issuer: issuer, log: log}
}

func (h *Handler) RegisterRoutes(public *echo.Group) {
	public.POST("/admin-login", h.AdminLogin)
}

func (h *Handler) AdminLogin(c echo.Context) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	if body.Email == "" || body.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email and password are required"})
	}

	userID, err := h.verifier.Verify(c.Request().Context(), body.Email, body.Password)
	if err != nil {
		var authErr *AuthError
		if errors.As(err, &authErr) {
			// Generic message: do not reveal which part was wrong.
			h.log.Warn().Str("email", body.Email).Msg("login rejected")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	resp := echo.Map{"success": true, "userId": userID}
	if h.issuer != nil {
		token, err := h.issuer.Issue(userID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
		}
		resp["token"] = token
	}
	return c.JSON(http.StatusOK, resp)
}
