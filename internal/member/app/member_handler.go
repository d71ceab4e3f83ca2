package app

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"chat_sync_service/internal/member/domain"
	"chat_sync_service/pkg/logger"
	"chat_sync_service/pkg/middlewares"
)

// MemberRestHandler exposes the identity REST surface the chat client
// signs in through
type MemberRestHandler struct {
	Usecase MemberUseCase
}

// RegisterRoutes registers the member routes
func (h *MemberRestHandler) RegisterRoutes(r *fiber.App) {
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Get("/session", h.CheckSession)
	r.Post("/session/reconnect", h.ReconnectSession)
	r.Get("/members", h.FindMember)
}

// Register POST /register
func (h *MemberRestHandler) Register(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Nickname string `json:"nickname"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad request"})
	}
	if err := h.Usecase.Register(c.Context(), body.Email, body.Nickname, body.Password); err != nil {
		logger.Log.Error("register failed", zap.String("email", body.Email), zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true})
}

// Login POST /login, sets the auth cookie and returns the token
func (h *MemberRestHandler) Login(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad request"})
	}
	t, err := h.Usecase.Login(c.Context(), body.Email, body.Password)
	if err != nil {
		logger.Log.Error("login failed", zap.String("email", body.Email), zap.Error(err))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}
	c.Cookie(&fiber.Cookie{Name: middlewares.CookieToken, Value: t, HTTPOnly: true})
	return c.JSON(fiber.Map{"token": t})
}

// Logout POST /logout
func (h *MemberRestHandler) Logout(c *fiber.Ctx) error {
	if err := h.Usecase.Logout(c.Context(), h.requestToken(c)); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	c.ClearCookie(middlewares.CookieToken)
	return c.JSON(fiber.Map{"success": true})
}

// CheckSession GET /session, reports whether the session is still live
func (h *MemberRestHandler) CheckSession(c *fiber.Ctx) error {
	expired, err := h.Usecase.CheckSessionTimeout(c.Context(), h.requestToken(c))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"expired": true, "error": err.Error()})
	}
	return c.JSON(fiber.Map{"expired": expired})
}

// ReconnectSession POST /session/reconnect, extends the session TTL
func (h *MemberRestHandler) ReconnectSession(c *fiber.Ctx) error {
	if err := h.Usecase.ReconnectSession(c.Context(), h.requestToken(c)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *MemberRestHandler) requestToken(c *fiber.Ctx) string {
	if t := c.Query(middlewares.QueryToken); t != "" {
		return t
	}
	return c.Cookies(middlewares.CookieToken)
}

// FindMember GET /members, admin lookup by email or member id
func (h *MemberRestHandler) FindMember(c *fiber.Ctx) error {
	query := domain.MemberQuery{}
	if email := c.Query("email"); email != "" {
		query.Email = &email
	}
	if memberID := c.Query("member_id"); memberID != "" {
		query.MemberID = &memberID
	}
	member, err := h.Usecase.FindMember(c.Context(), &query)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{
		"member_id": member.MemberID,
		"email":     member.Email,
		"nickname":  member.Nickname,
	})
}
