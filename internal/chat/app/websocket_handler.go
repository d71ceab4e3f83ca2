package app

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"chat_sync_service/internal/chat/domain"
	"chat_sync_service/internal/chat/repository"
	"chat_sync_service/pkg/logger"
	"chat_sync_service/pkg/middlewares"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// ChatWebsocketHandler owns one push connection per client
type ChatWebsocketHandler struct {
	convUC *ConversationUseCase
	msgUC  *MessageUseCase
	pubsub repository.PubSub
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(
	convUC *ConversationUseCase,
	msgUC *MessageUseCase,
	pubsub repository.PubSub,
) *ChatWebsocketHandler {
	return &ChatWebsocketHandler{
		convUC: convUC,
		msgUC:  msgUC,
		pubsub: pubsub,
	}
}

// connState tracks one client's room subscriptions so a reconnecting
// client can rebuild exactly the membership it asks for
type connState struct {
	rooms map[string]context.CancelFunc
}

func (s *connState) cancelAll() {
	for _, cancel := range s.rooms {
		cancel()
	}
}

// HandleConnection is the entry point of one websocket connection
func (h *ChatWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	tokenMember := conn.Locals(middlewares.TokenMemberID)
	userID, ok := tokenMember.(string)
	if !ok || userID == "" {
		h.sendError(conn, "missing identity")
		conn.Close()
		return
	}
	logger.Log.Info("websocket connected", zap.String("userID", userID))

	ticker := time.NewTicker(10 * time.Minute)
	ctxClose, cancel := context.WithCancel(context.Background())
	state := &connState{rooms: map[string]context.CancelFunc{}}

	defer func() {
		ticker.Stop()
		logger.Log.Info("websocket close", zap.String("userID", userID))
		state.cancelAll()
		conn.Close()
		cancel()
	}()

	conn.SetCloseHandler(func(code int, text string) error {
		logger.Log.Infof("WebSocket closed:", conn.RemoteAddr())
		return nil
	})

	conn.SetPingHandler(func(appData string) error {
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(appData),
			time.Now().Add(time.Second),
		)
	})

	// every connection carries the user's cross-conversation events
	// (read receipts, messages in conversations without an open window)
	h.pubsub.Subscribe(ctxClose, domain.UserRoom(userID), func(event domain.Event) {
		h.sendEvent(conn, event)
	})

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
					logger.Log.Errorf("Ping error:", err)
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
				logger.Log.Errorf("Connection closed:", err)
			} else {
				logger.Log.Errorf("websocket read error:", err)
			}
			return
		}
		h.execWebsocketAction(ctx, conn, state, userID, mt, message)
	}
}

func (h *ChatWebsocketHandler) execWebsocketAction(ctx context.Context, conn *websocket.Conn, state *connState, userID string, mt int, msg []byte) {
	switch mt {
	case websocket.TextMessage:
		h.textMessageAction(ctx, conn, state, userID, msg)
	default:
		h.sendError(conn, "unknown message type")
	}
}

func (h *ChatWebsocketHandler) textMessageAction(ctx context.Context, conn *websocket.Conn, state *connState, userID string, msg []byte) {

	var req domain.WSRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		log.Printf("json unmarshal error: %v", err)
		return
	}

	resp := domain.WSResponse{Action: req.Action, Success: false, Payload: map[string]interface{}{}}
	switch req.Action {

	case string(domain.JoinConversation):
		// idempotent: a rejoin after reconnect replaces the old
		// subscription instead of stacking a second one
		if cancelOld, ok := state.rooms[req.ConversationID]; ok {
			cancelOld()
		}
		roomCtx, cancelRoom := context.WithCancel(context.Background())
		state.rooms[req.ConversationID] = cancelRoom
		h.pubsub.Subscribe(roomCtx, domain.ConversationRoom(req.ConversationID), func(event domain.Event) {
			h.sendEvent(conn, event)
		})
		resp.Success = true
		resp.Payload["conversation_id"] = req.ConversationID

	case string(domain.LeaveConversation):
		if cancelRoom, ok := state.rooms[req.ConversationID]; ok {
			cancelRoom()
			delete(state.rooms, req.ConversationID)
		}
		resp.Success = true
		resp.Payload["conversation_id"] = req.ConversationID

	case string(domain.SendMessage):
		sent, err := h.msgUC.Send(ctx, req.ConversationID, userID, req.Content, req.Attachments)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["message"] = sent
		}

	case string(domain.EditMessage):
		edited, err := h.msgUC.Edit(ctx, req.MessageID, userID, req.Content)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["message"] = edited
		}

	case string(domain.DeleteMessage):
		err := h.msgUC.Delete(ctx, req.MessageID, userID, domain.DeleteMode(req.Mode))
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["message_id"] = req.MessageID
		}

	case string(domain.StarMessage):
		starred, err := h.msgUC.ToggleStar(ctx, req.MessageID, userID)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["starred"] = starred
		}

	case string(domain.MarkRead):
		err := h.msgUC.MarkRead(ctx, req.ConversationID, userID)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
		}

	default:
		h.sendError(conn, "unknown action")
		return
	}

	if resp.Error != "" {
		logger.Log.Error("websocket err ", zap.String("UserID", userID), zap.String("Action", req.Action), zap.String("err", resp.Error))
	}
	h.sendResponse(conn, resp)
}

// sendEvent forwards a pub/sub event as a push frame
func (h *ChatWebsocketHandler) sendEvent(conn *websocket.Conn, event domain.Event) {
	resp := domain.WSResponse{
		Action:  event.Name,
		Success: true,
		Payload: map[string]interface{}{
			"event": event,
		},
	}
	h.sendResponse(conn, resp)
}

// sendResponse writes one JSON frame to the client
func (h *ChatWebsocketHandler) sendResponse(conn *websocket.Conn, resp domain.WSResponse) {
	b, _ := json.Marshal(resp)
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		logger.Log.Errorf("write message error:", err)
	}
}

func (h *ChatWebsocketHandler) sendError(conn *websocket.Conn, errorMsg string) {
	resp := domain.WSResponse{
		Action:  "error",
		Success: false,
		Payload: map[string]interface{}{
			"error": errorMsg,
		},
	}
	h.sendResponse(conn, resp)
}
