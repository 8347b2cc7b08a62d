package app

import (
	"errors"

	"book_exchange_service/internal/api/comm"
	"book_exchange_service/internal/chat/domain"
	"book_exchange_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// ChatHTTPHandler REST access to conversations for clients without a socket
type ChatHTTPHandler struct {
	convUC *ConversationUseCase
	msgUC  *MessageUseCase
}

// NewChatHTTPHandler create ChatHTTPHandler
func NewChatHTTPHandler(convUC *ConversationUseCase, msgUC *MessageUseCase) *ChatHTTPHandler {
	return &ChatHTTPHandler{convUC: convUC, msgUC: msgUC}
}

func chatStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyMessage),
		errors.Is(err, domain.ErrNoConversationSelected),
		errors.Is(err, domain.ErrSelfConversation),
		errors.Is(err, domain.ErrInvalidConversationID):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotParticipant):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrConversationNotFound), errors.Is(err, domain.ErrProfileNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func conversationParam(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	return id, domain.ValidateConversationID(id)
}

// ListConversations 取得會話列表
// @Summary List conversations
// @Description Conversations of the viewer sorted by last activity, with unread counts
// @Tags Conversations
// @Produce json
// @Success 200 {object} comm.Response
// @Router /conversations [get]
func (h *ChatHTTPHandler) ListConversations(c *fiber.Ctx) error {
	convs, err := h.convUC.ListConversations(c.UserContext(), middlewares.MemberID(c))
	if err != nil {
		return comm.Fail(c, err, chatStatus)
	}
	return comm.OK(c, convs)
}

// UnreadCounts 取得未讀數
// @Summary Unread counts
// @Tags Conversations
// @Produce json
// @Success 200 {object} comm.Response
// @Router /conversations/unread [get]
func (h *ChatHTTPHandler) UnreadCounts(c *fiber.Ctx) error {
	counts, err := h.convUC.UnreadCounts(c.UserContext(), middlewares.MemberID(c))
	if err != nil {
		return comm.Fail(c, err, chatStatus)
	}
	return comm.OK(c, counts)
}

// FetchMessages 取得訊息分頁
// @Summary Message history page
// @Description Page 0 is the newest page and marks the conversation read
// @Tags Conversations
// @Produce json
// @Param id path string true "conversation id"
// @Param page query int false "page index"
// @Success 200 {object} comm.Response
// @Failure 400 {object} comm.Response
// @Failure 403 {object} comm.Response
// @Router /conversations/{id}/messages [get]
func (h *ChatHTTPHandler) FetchMessages(c *fiber.Ctx) error {
	convID, err := conversationParam(c)
	if err != nil {
		return comm.Fail(c, err, chatStatus)
	}
	page, err := h.msgUC.FetchPage(c.UserContext(), middlewares.MemberID(c), convID, c.QueryInt("page", 0))
	if err != nil {
		return comm.Fail(c, err, chatStatus)
	}
	return comm.OK(c, page)
}

// SendMessage 傳送訊息
// @Summary Send a message
// @Tags Conversations
// @Accept json
// @Produce json
// @Param id path string true "conversation id"
// @Param message body domain.SendMessageReq true "message"
// @Success 200 {object} comm.Response
// @Failure 400 {object} comm.Response
// @Failure 403 {object} comm.Response
// @Router /conversations/{id}/messages [post]
func (h *ChatHTTPHandler) SendMessage(c *fiber.Ctx) error {
	var req domain.SendMessageReq
	convID, err := conversationParam(c)
	if err != nil {
		return comm.Fail(c, err, chatStatus)
	}
	if err := comm.BindBody(c, &req); err != nil {
		return comm.Fail(c, err, nil)
	}

	msg, err := h.msgUC.SendMessage(c.UserContext(), middlewares.MemberID(c), convID, req.Content)
	if err != nil {
		return comm.Fail(c, err, chatStatus)
	}
	return comm.OK(c, msg)
}

// MarkRead 標記已讀
// @Summary Mark a conversation read
// @Tags Conversations
// @Param id path string true "conversation id"
// @Success 200 {object} comm.Response
// @Router /conversations/{id}/read [post]
func (h *ChatHTTPHandler) MarkRead(c *fiber.Ctx) error {
	convID, err := conversationParam(c)
	if err != nil {
		return comm.Fail(c, err, chatStatus)
	}
	if err := h.msgUC.MarkRead(c.UserContext(), middlewares.MemberID(c), convID); err != nil {
		return comm.Fail(c, err, chatStatus)
	}
	return comm.OK(c, nil)
}

// StartConversation 建立會話
// @Summary Start or reuse a conversation with another user
// @Tags Conversations
// @Accept json
// @Produce json
// @Param conversation body domain.StartConversationReq true "other party and optional book"
// @Success 200 {object} comm.Response
// @Router /conversations [post]
func (h *ChatHTTPHandler) StartConversation(c *fiber.Ctx) error {
	var req domain.StartConversationReq
	if err := comm.BindBody(c, &req); err != nil {
		return comm.Fail(c, err, nil)
	}

	id, err := h.convUC.StartConversation(c.UserContext(), middlewares.MemberID(c), req.OtherUserID, req.InitialMessage, req.BookID)
	if err != nil {
		return comm.Fail(c, err, chatStatus)
	}
	return comm.OK(c, fiber.Map{"conversation_id": id})
}

// Profile 取得自己的 profile
// @Summary Viewer profile, created on first use
// @Tags Profile
// @Produce json
// @Success 200 {object} comm.Response
// @Router /profile [get]
func (h *ChatHTTPHandler) Profile(c *fiber.Ctx) error {
	p, err := h.convUC.EnsureProfile(c.UserContext(), middlewares.MemberID(c))
	if err != nil {
		return comm.Fail(c, err, chatStatus)
	}
	return comm.OK(c, p)
}
