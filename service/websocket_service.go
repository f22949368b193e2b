package service

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/ragforge/pdfrag/types"
)

type WebSocketService struct {
	ai       AIService
	upgrader websocket.Upgrader
}

func NewWebSocketService(ai AIService) *WebSocketService {
	return &WebSocketService{
		ai: ai,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
	}
}

func (s *WebSocketService) HandleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}
	conn.SetReadLimit(512 * 1024) // 512KB max message size
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	for {
		messageType, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
		var req types.WebsocketRequest
		if err := json.Unmarshal(p, &req); err != nil {
			s.writeError(conn, messageType, "invalid request")
			log.Println("Unmarshal error:", err)
			continue
		}
		payloadBytes, err := json.Marshal(req.Payload)
		if err != nil {
			s.writeError(conn, messageType, "invalid payload")
			log.Println("Marshal error:", err)
			continue
		}
		switch req.Type {
		case types.TypeWebsocketChat:
			var payload types.WebSocketChatPayload
			if err := json.Unmarshal(payloadBytes, &payload); err != nil {
				s.writeError(conn, messageType, "invalid chat payload")
				log.Println("Unmarshal error:", err)
				continue
			}
			s.streamChat(ctx, conn, payload.Messages)
		case types.TypeWebsocketPing:
			pongRes := types.WebSocketResponse{
				Type:    types.TypeWebsocketPong,
				Payload: nil,
			}
			if err := conn.WriteJSON(pongRes); err != nil {
				log.Println("Write error:", err)
			}
		default:
			log.Println("Invalid message type:", req.Type)
		}
	}
}

// streamChat forwards model output chunk by chunk, then a final done marker.
// On a mid-stream error the client gets an error frame instead of the done
// marker.
func (s *WebSocketService) streamChat(ctx context.Context, conn *websocket.Conn, messages []types.Message) {
	err := s.ai.ChatStream(ctx, messages, func(chunk string) {
		if chunk == "" {
			return
		}
		res := types.WebSocketResponse{
			Type:    types.TypeWebsocketChat,
			Payload: types.WebSocketChatResponse{Message: chunk},
		}
		if err := conn.WriteJSON(res); err != nil {
			log.Println("Write error:", err)
		}
	})
	if err != nil {
		log.Println("AI error:", err)
		s.writeError(conn, websocket.TextMessage, "error generating response")
		return
	}
	done := types.WebSocketResponse{
		Type:    types.TypeWebsocketChat,
		Payload: types.WebSocketChatResponse{Done: true},
	}
	if err := conn.WriteJSON(done); err != nil {
		log.Println("Write error:", err)
	}
}

func (s *WebSocketService) writeError(conn *websocket.Conn, messageType int, message string) {
	res := types.WebSocketResponse{
		Type:    types.TypeWebsocketError,
		Payload: map[string]string{"message": message},
	}
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := conn.WriteMessage(messageType, data); err != nil {
		log.Println("Write error:", err)
	}
}

func (s *WebSocketService) Health() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}
