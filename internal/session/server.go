package session

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"frontdesk-workers/internal/common/errors"
	"frontdesk-workers/internal/common/logger"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type startResponse struct {
	CallID   string `json:"callId"`
	Greeting string `json:"greeting"`
}

type turnRequest struct {
	Text string `json:"text"`
}

type turnResponse struct {
	Reply      string `json:"reply"`
	Intent     string `json:"intent"`
	Handler    string `json:"handler"`
	Department string `json:"department,omitempty"`
	RoutedTo   string `json:"routedTo,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// wsMessage is the frame format on /calls/ws. Clients send "transcript" frames and receive
// "greeting", "reply" and "error" frames.
type wsMessage struct {
	Type       string `json:"type"`
	CallID     string `json:"callId,omitempty"`
	Text       string `json:"text,omitempty"`
	Intent     string `json:"intent,omitempty"`
	Handler    string `json:"handler,omitempty"`
	Department string `json:"department,omitempty"`
	RoutedTo   string `json:"routedTo,omitempty"`
	Code       string `json:"code,omitempty"`
}

type Server struct {
	runtime  *Runtime
	checks   map[string]ReadinessCheck
	upgrader websocket.Upgrader
	logger   logger.Logger
}

// NewServer builds the session channel. An empty allowedOrigins keeps gorilla's same-origin check;
// "*" allows any origin.
func NewServer(runtime *Runtime, checks map[string]ReadinessCheck, allowedOrigins []string, log logger.Logger) *Server {
	s := &Server{
		runtime: runtime,
		checks:  checks,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		logger: log,
	}
	if len(allowedOrigins) > 0 {
		allowed := make(map[string]bool, len(allowedOrigins))
		for _, o := range allowedOrigins {
			allowed[o] = true
		}
		s.upgrader.CheckOrigin = func(r *http.Request) bool {
			return allowed["*"] || allowed[r.Header.Get("Origin")]
		}
	}
	return s
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /calls", s.handleStart)
	mux.HandleFunc("POST /calls/{callId}/turns", s.handleTurn)
	mux.HandleFunc("DELETE /calls/{callId}", s.handleEnd)
	mux.HandleFunc("GET /calls/ws", s.handleWebSocket)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	callID, err := s.runtime.StartCall(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, startResponse{CallID: callID, Greeting: s.runtime.Greeting()})
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.NewInputParsingFailedError(err))
		return
	}

	result, err := s.runtime.HandleUtterance(r.Context(), r.PathValue("callId"), req.Text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, turnResponse{
		Reply:      result.Reply,
		Intent:     result.Intent,
		Handler:    result.HandledBy,
		Department: result.Department,
		RoutedTo:   result.RoutedTo,
	})
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	if err := s.runtime.EndCall(r.Context(), r.PathValue("callId")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	defer conn.Close()

	ctx := r.Context()
	callID, err := s.runtime.StartCall(ctx)
	if err != nil {
		_ = conn.WriteJSON(errorFrame(err))
		return
	}
	defer func() {
		endCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.runtime.EndCall(endCtx, callID); err != nil {
			s.logger.Warn("failed to end call", map[string]interface{}{
				"callId": callID,
				"error":  err.Error(),
			})
		}
	}()

	if err := conn.WriteJSON(wsMessage{Type: "greeting", CallID: callID, Text: s.runtime.Greeting()}); err != nil {
		return
	}

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("websocket closed", map[string]interface{}{
					"callId": callID,
					"error":  err.Error(),
				})
			}
			return
		}

		if msg.Type != "transcript" {
			if err := conn.WriteJSON(wsMessage{Type: "error", Code: string(errors.ErrCodeValidationFailed), Text: "unsupported message type"}); err != nil {
				return
			}
			continue
		}

		var reply wsMessage
		result, err := s.runtime.HandleUtterance(ctx, callID, msg.Text)
		if err != nil {
			reply = errorFrame(err)
		} else {
			reply = wsMessage{
				Type:       "reply",
				CallID:     callID,
				Text:       result.Reply,
				Intent:     result.Intent,
				Handler:    result.HandledBy,
				Department: result.Department,
				RoutedTo:   result.RoutedTo,
			}
		}
		if err := conn.WriteJSON(reply); err != nil {
			return
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			results[name] = err.Error()
			continue
		}
		results[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	writeJSON(w, status, map[string]interface{}{
		"status": state,
		"checks": results,
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	stdErr := errors.AsStandardError(err)
	writeJSON(w, statusFor(stdErr.Code), errorResponse{Code: string(stdErr.Code), Message: stdErr.Error()})
}

func statusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeValidationFailed, errors.ErrCodeInputParsingFailed:
		return http.StatusBadRequest
	case errors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case errors.ErrCodeTimeout, errors.ErrCodeLLMTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeTurnFailed, errors.ErrCodeExternalService, errors.ErrCodeSessionStoreError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorFrame(err error) wsMessage {
	stdErr := errors.AsStandardError(err)
	return wsMessage{Type: "error", Code: string(stdErr.Code), Text: stdErr.Error()}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
