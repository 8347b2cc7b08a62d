package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"book_exchange_service/internal/chat/domain"
	"book_exchange_service/internal/chat/repository"
	"book_exchange_service/pkg/logger"
	"book_exchange_service/pkg/metrics"
	"book_exchange_service/pkg/middlewares"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

const pingInterval = 10 * time.Minute

// ChatWebsocketHandler 可包含所有需要的 UseCase
type ChatWebsocketHandler struct {
	convUC *ConversationUseCase
	msgUC  *MessageUseCase
	pubSub repository.PubSub
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(convUC *ConversationUseCase, msgUC *MessageUseCase, pubSub repository.PubSub) *ChatWebsocketHandler {
	return &ChatWebsocketHandler{
		convUC: convUC,
		msgUC:  msgUC,
		pubSub: pubSub,
	}
}

// wsConn serializes writes, the session pushes from subscription goroutines
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (w *wsConn) send(resp domain.WSResponse) {
	b, err := json.Marshal(resp)
	if err != nil {
		logger.Log.Error("marshal response error", zap.Error(err))
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		logger.Log.Error("write message error", zap.Error(err))
	}
}

func (w *wsConn) ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteMessage(websocket.PingMessage, []byte("ping"))
}

// HandleConnection 是 WebSocket 連線的進入點
func (h *ChatWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	memberID, _ := conn.Locals(middlewares.TokenMemberID).(string)
	log := logger.Log.With(zap.String("userID", memberID))
	log.Info("websocket connected")
	metrics.ActiveSessions.Inc()

	ws := &wsConn{conn: conn}
	ticker := time.NewTicker(pingInterval)
	ctxClose, cancel := context.WithCancel(ctx)

	session := NewSession(ctxClose, memberID, h.convUC, h.msgUC, h.pubSub, ws.send)

	defer func() {
		ticker.Stop()
		session.Close()
		cancel()
		conn.Close()
		metrics.ActiveSessions.Dec()
		log.Info("websocket close")
	}()

	//client發出close
	conn.SetCloseHandler(func(code int, text string) error {
		log.Info("websocket closed by client", zap.Int("code", code))
		return nil
	})

	if _, err := h.convUC.EnsureProfile(ctxClose, memberID); err != nil {
		log.Warn("ensure profile failed", zap.Error(err))
	}
	if _, err := session.Start(); err != nil {
		ws.send(domain.WSResponse{Action: string(domain.PushConversations), Error: err.Error()})
	}

	// 定期發送 Ping
	go func() {
		for {
			select {
			case <-ticker.C:
				if err := ws.ping(); err != nil {
					log.Warn("ping error", zap.Error(err))
					return
				}
			case <-ctxClose.Done():
				return
			}
		}
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				log.Info("connection closed")
			} else {
				log.Warn("websocket read error", zap.Error(err))
			}
			return
		}
		if mt != websocket.TextMessage {
			h.sendError(ws, "unsupported message type")
			continue
		}
		ws.send(h.textMessageAction(ctxClose, session, memberID, message))
	}
}

func (h *ChatWebsocketHandler) textMessageAction(ctx context.Context, session *Session, memberID string, msg []byte) domain.WSResponse {
	var req domain.WSRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		return domain.WSResponse{Action: "error", Error: "invalid request"}
	}

	resp := domain.WSResponse{Action: req.Action, Success: false, Payload: map[string]interface{}{}}
	var err error

	switch domain.Action(req.Action) {
	case domain.ListConversations:
		var convs []domain.ConversationSummary
		convs, err = session.Refresh(ctx)
		resp.Payload["conversations"] = convs

	case domain.SelectConversation:
		var page domain.MessagePage
		page, err = session.Select(ctx, req.ConversationID)
		resp.Payload["conversation_id"] = req.ConversationID
		resp.Payload["has_more"] = page.HasMore

	case domain.LeaveConversation:
		session.Leave()
		resp.Payload["conversation_id"] = req.ConversationID

	case domain.LoadOlder:
		var page domain.MessagePage
		page, err = session.LoadOlder(ctx)
		resp.Payload["page"] = page.Page
		resp.Payload["has_more"] = page.HasMore

	case domain.SendMessage:
		var m domain.Message
		m, err = session.Send(ctx, req.Content)
		resp.Payload["message_id"] = m.ID

	case domain.MarkRead:
		convID := req.ConversationID
		if convID == "" {
			convID = session.SelectedID()
		}
		if err = domain.ValidateConversationID(convID); err == nil {
			err = h.msgUC.MarkRead(ctx, memberID, convID)
		}

	case domain.StartConversation:
		var convID string
		convID, err = h.convUC.StartConversation(ctx, memberID, req.OtherUserID, req.Content, req.BookID)
		resp.Payload["conversation_id"] = convID

	case domain.GetUnread:
		var counts map[string]int
		counts, err = h.convUC.UnreadCounts(ctx, memberID)
		for id, n := range counts {
			resp.Payload[id] = n
		}

	default:
		resp.Action = "error"
		resp.Error = "unknown action"
		return resp
	}

	if err != nil {
		resp.Error = err.Error()
		logger.Log.Error("websocket err", zap.String("MemberID", memberID), zap.String("Action", req.Action), zap.Error(err))
		return resp
	}
	resp.Success = true
	return resp
}

func (h *ChatWebsocketHandler) sendError(ws *wsConn, errorMsg string) {
	ws.send(domain.WSResponse{
		Action:  "error",
		Success: false,
		Payload: map[string]interface{}{"error": errorMsg},
	})
}
