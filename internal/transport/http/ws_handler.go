package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"vocab-quiz-service/internal/app"

	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.QuizService
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type sessionPayload struct {
	SessionID string `json:"sessionId"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and drives one learner session.
// Passing ?sessionId= resumes an existing session and an unknown id is
// answered with an error; without it a new session is created and dropped
// again when the connection closes.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID != "" {
		if _, err := h.service.View(ctx, sessionID); err != nil {
			_ = conn.WriteJSON(errorMessage(err.Error()))
			return
		}
	} else {
		sessionID = h.service.Open(ctx, "").SessionID
		defer h.service.Close(ctx, sessionID)
	}
	logger := h.logger.With("session", sessionID)

	updates, cancel, err := h.service.Subscribe(ctx, sessionID)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err.Error()))
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})
	// held while a command posts its direct reply, so the state it caused is
	// forwarded after that reply
	var order sync.Mutex

	// single writer: gorilla connections do not support concurrent writes
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				logger.Debug("ws write error", "error", err)
				_ = conn.Close()
				return
			}
		}
	}()

	// post gives up once the writer has stopped
	post := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-writerDone:
		}
	}

	post(outboundMessage[any]{Type: "session", Payload: sessionPayload{SessionID: sessionID}})

	go func() {
		defer close(updatesDone)
		for {
			select {
			case view, ok := <-updates:
				if !ok {
					return
				}
				order.Lock()
				select {
				case send <- outboundMessage[any]{Type: "state", Payload: view}:
				case <-writerDone:
					order.Unlock()
					return
				case <-closeSignals:
					order.Unlock()
					return
				}
				order.Unlock()
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "select":
			var payload selectUserRequest
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				post(errorMessage("invalid select payload"))
				continue
			}
			if _, err := h.service.SelectUser(ctx, sessionID, payload.User); err != nil {
				post(errorMessage(err.Error()))
			}
		case "answer":
			var payload answerRequest
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				post(errorMessage("invalid answer payload"))
				continue
			}
			order.Lock()
			outcome, _, err := h.service.SubmitAnswer(ctx, sessionID, payload.Option)
			if err != nil {
				post(errorMessage(err.Error()))
			} else {
				post(outboundMessage[any]{Type: "answerResult", Payload: outcome})
			}
			order.Unlock()
		case "continue":
			if _, err := h.service.ContinueAfterReview(ctx, sessionID); err != nil {
				post(errorMessage(err.Error()))
			}
		default:
			post(errorMessage("unsupported message type"))
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}
