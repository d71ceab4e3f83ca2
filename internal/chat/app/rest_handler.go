package app

import (
	"errors"

	"chat_sync_service/internal/chat/domain"
	"chat_sync_service/internal/chat/repository"
	"chat_sync_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

// ChatRestHandler exposes the REST data source the client fetches from.
// The push stream never replaces these fetches, a reconnecting client
// re-reads everything here.
type ChatRestHandler struct {
	convUC  *ConversationUseCase
	msgUC   *MessageUseCase
	attRepo repository.AttachmentRepository
}

// NewChatRestHandler create ChatRestHandler
func NewChatRestHandler(
	convUC *ConversationUseCase,
	msgUC *MessageUseCase,
	attRepo repository.AttachmentRepository,
) *ChatRestHandler {
	return &ChatRestHandler{
		convUC:  convUC,
		msgUC:   msgUC,
		attRepo: attRepo,
	}
}

func currentUser(c *fiber.Ctx) string {
	userID, _ := c.Locals(middlewares.TokenMemberID).(string)
	return userID
}

func restError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotSender), errors.Is(err, ErrNotParticipant):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrEmptyMessage), errors.Is(err, ErrMessageDeleted):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, mongo.ErrNoDocuments):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}

// ListConversations GET /conversations
func (h *ChatRestHandler) ListConversations(c *fiber.Ctx) error {
	convs, err := h.convUC.List(c.Context(), currentUser(c))
	if err != nil {
		return restError(c, err)
	}
	return c.JSON(convs)
}

// StartDirect POST /conversations/direct
func (h *ChatRestHandler) StartDirect(c *fiber.Ctx) error {
	var body struct {
		OtherUserID string `json:"other_user_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad request"})
	}
	conv, err := h.convUC.StartDirect(c.Context(), currentUser(c), body.OtherUserID)
	if err != nil {
		return restError(c, err)
	}
	return c.JSON(conv)
}

// TogglePin POST /conversations/:id/pin
func (h *ChatRestHandler) TogglePin(c *fiber.Ctx) error {
	if err := h.convUC.TogglePin(c.Context(), c.Params("id"), currentUser(c)); err != nil {
		return restError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ToggleArchive POST /conversations/:id/archive
func (h *ChatRestHandler) ToggleArchive(c *fiber.Ctx) error {
	if err := h.convUC.ToggleArchive(c.Context(), c.Params("id"), currentUser(c)); err != nil {
		return restError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkRead POST /conversations/:id/read
func (h *ChatRestHandler) MarkRead(c *fiber.Ctx) error {
	if err := h.msgUC.MarkRead(c.Context(), c.Params("id"), currentUser(c)); err != nil {
		return restError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UnreadCount GET /conversations/:id/unread
func (h *ChatRestHandler) UnreadCount(c *fiber.Ctx) error {
	n, err := h.msgUC.CountUnread(c.Context(), c.Params("id"), currentUser(c))
	if err != nil {
		return restError(c, err)
	}
	return c.JSON(fiber.Map{"unread": n})
}

// ListMessages GET /conversations/:id/messages
func (h *ChatRestHandler) ListMessages(c *fiber.Ctx) error {
	msgs, err := h.msgUC.List(c.Context(), c.Params("id"), currentUser(c))
	if err != nil {
		return restError(c, err)
	}
	return c.JSON(msgs)
}

// SendMessage POST /conversations/:id/messages
func (h *ChatRestHandler) SendMessage(c *fiber.Ctx) error {
	var body struct {
		Content     string              `json:"content"`
		Attachments []domain.Attachment `json:"attachments"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad request"})
	}
	msg, err := h.msgUC.Send(c.Context(), c.Params("id"), currentUser(c), body.Content, body.Attachments)
	if err != nil {
		return restError(c, err)
	}
	return c.JSON(msg)
}

// EditMessage PUT /messages/:id
func (h *ChatRestHandler) EditMessage(c *fiber.Ctx) error {
	var body struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad request"})
	}
	msg, err := h.msgUC.Edit(c.Context(), c.Params("id"), currentUser(c), body.Content)
	if err != nil {
		return restError(c, err)
	}
	return c.JSON(msg)
}

// DeleteMessage DELETE /messages/:id?mode=me|everyone
func (h *ChatRestHandler) DeleteMessage(c *fiber.Ctx) error {
	mode := domain.DeleteMode(c.Query("mode", string(domain.DeleteForMe)))
	if err := h.msgUC.Delete(c.Context(), c.Params("id"), currentUser(c), mode); err != nil {
		return restError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ToggleStar POST /messages/:id/star
func (h *ChatRestHandler) ToggleStar(c *fiber.Ctx) error {
	starred, err := h.msgUC.ToggleStar(c.Context(), c.Params("id"), currentUser(c))
	if err != nil {
		return restError(c, err)
	}
	return c.JSON(fiber.Map{"starred": starred})
}

// UploadAttachment POST /attachments, multipart file field "file"
func (h *ChatRestHandler) UploadAttachment(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing file"})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return restError(c, err)
	}
	defer file.Close()

	att, err := h.attRepo.Upload(
		c.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
		fileHeader.Size,
	)
	if err != nil {
		return restError(c, err)
	}
	return c.JSON(att)
}
