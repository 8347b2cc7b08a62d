package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"book_exchange_service/internal/book/domain"
	"book_exchange_service/pkg/logger"
	"book_exchange_service/pkg/middlewares"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

const pingInterval = 10 * time.Minute

// GeosearchWebsocketHandler live location autocomplete and nearby results
type GeosearchWebsocketHandler struct {
	geo        *GeosearchUseCase
	debounce   time.Duration
	maxResults int
}

// NewGeosearchWebsocketHandler create GeosearchWebsocketHandler
func NewGeosearchWebsocketHandler(geo *GeosearchUseCase, debounce time.Duration, maxResults int) *GeosearchWebsocketHandler {
	return &GeosearchWebsocketHandler{geo: geo, debounce: debounce, maxResults: maxResults}
}

// wsConn serializes writes, autocomplete pushes come from timer goroutines
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
func (h *GeosearchWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	memberID, _ := conn.Locals(middlewares.TokenMemberID).(string)
	log := logger.Log.With(zap.String("userID", memberID))
	log.Info("geosearch websocket connected")

	ws := &wsConn{conn: conn}
	ticker := time.NewTicker(pingInterval)
	ctxClose, cancel := context.WithCancel(ctx)
	session := NewGeosearchSession(ctxClose, h.geo, h.debounce, h.maxResults, ws.send)

	defer func() {
		ticker.Stop()
		session.Close()
		cancel()
		conn.Close()
		log.Info("geosearch websocket close")
	}()

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
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				log.Info("connection closed")
			} else {
				log.Warn("websocket read error", zap.Error(err))
			}
			return
		}
		if mt != websocket.TextMessage {
			ws.send(domain.WSResponse{Action: "error", Error: "unsupported message type"})
			continue
		}
		if resp, ok := h.textMessageAction(ctxClose, session, message); ok {
			ws.send(resp)
		}
	}
}

// textMessageAction runs one client action. ok is false when the answer arrives as a push.
func (h *GeosearchWebsocketHandler) textMessageAction(ctx context.Context, session *GeosearchSession, msg []byte) (domain.WSResponse, bool) {
	var req domain.WSRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		return domain.WSResponse{Action: "error", Error: "invalid request"}, true
	}
	resp := domain.WSResponse{Action: req.Action}

	var err error
	switch req.Action {
	case domain.ActionInput:
		var p domain.InputPayload
		if err = json.Unmarshal(req.Payload, &p); err == nil {
			session.Input(p.Query)
			return resp, false
		}

	case domain.ActionLocate:
		var p domain.LocatePayload
		if err = json.Unmarshal(req.Payload, &p); err == nil {
			resp.Data = session.Locate(p)
		}

	case domain.ActionSelect:
		var p domain.SelectPayload
		if err = json.Unmarshal(req.Payload, &p); err == nil {
			if _, err = session.Select(ctx, p.PlaceID); err == nil {
				return resp, false
			}
		}

	case domain.ActionRadius:
		var p domain.RadiusPayload
		if err = json.Unmarshal(req.Payload, &p); err == nil {
			var searched bool
			if _, searched, err = session.SetRadius(ctx, p.Index); err == nil && searched {
				return resp, false
			}
			resp.Data = map[string]float64{"radius_km": session.RadiusKm()}
		}

	case domain.ActionRetry:
		if err = session.Retry(ctx); err == nil {
			return resp, false
		}

	default:
		resp.Action = "error"
		resp.Error = "unknown action"
		return resp, true
	}

	if err != nil {
		resp.Error = errorMessage(err)
		logger.Log.Warn("geosearch websocket err", zap.String("Action", string(req.Action)), zap.Error(err))
		return resp, true
	}
	resp.Success = true
	return resp, true
}
