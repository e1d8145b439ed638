package gateway

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/teslashibe/go-voicebridge/pkg/events"
	"github.com/teslashibe/go-voicebridge/pkg/session"
)

// Frame types sent by the server.
const (
	FrameSession = "session"
	FrameReply   = "reply"
	FrameError   = "error"
)

// ClientFrame is a text frame sent by a socket client.
type ClientFrame struct {
	Text string `json:"text"`
}

// ServerFrame is a text frame sent to a socket client. Reply audio, when
// present, follows as a separate binary frame.
type ServerFrame struct {
	Type           string `json:"type"`
	Room           string `json:"room,omitempty"`
	Text           string `json:"text,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
	Kind           string `json:"kind,omitempty"`
	Greeted        bool   `json:"greeted,omitempty"`
	Created        bool   `json:"created,omitempty"`
	AudioFormat    string `json:"audio_format,omitempty"`
	Error          string `json:"error,omitempty"`
}

func (s *Server) registerSocket() {
	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.app.Get("/ws/rooms/:room", websocket.New(s.handleSocket))
	s.app.Get("/ws/events", websocket.New(s.events.Serve))
}

// publishSessions forwards session activity to the events feed.
func (s *Server) publishSessions() {
	s.sessions.OnOpen(func(room string) {
		s.events.Publish(events.Event{Type: events.TypeOpened, Room: room})
	})
	s.sessions.OnEnd(func(room string) {
		s.events.Publish(events.Event{Type: events.TypeEnded, Room: room})
	})
	s.sessions.OnTurn(func(res session.Result) {
		s.events.Publish(events.Event{
			Type:           events.TypeTurn,
			Room:           res.Room,
			Text:           res.Text,
			Kind:           string(res.Kind),
			ConversationID: res.ConversationID,
			Greeted:        res.Greeted,
			Voiced:         res.Audio != nil,
		})
	})
}

// handleSocket runs one client connection. A new room is greeted first.
// Replies are voiced unless the client connects with ?speak=false.
func (s *Server) handleSocket(c *websocket.Conn) {
	sess, created := s.sessions.Open(c.Params("room"))
	speak := sess.CanSpeak() && c.Query("speak") != "false"
	logger := s.logger.With("room", sess.Room())

	logger.Info("socket connected", "created", created, "speak", speak)
	defer logger.Info("socket disconnected")

	info := sess.Info()
	if err := writeFrame(c, ServerFrame{
		Type:           FrameSession,
		Room:           sess.Room(),
		ConversationID: info.ConversationID,
		Created:        created,
	}); err != nil {
		return
	}

	if created {
		if err := writeResult(c, sess.Greet(s.ctx(), speak)); err != nil {
			return
		}
	}

	for {
		mt, data, err := c.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.TextMessage {
			continue
		}

		var frame ClientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			if writeFrame(c, ServerFrame{Type: FrameError, Error: "invalid frame"}) != nil {
				return
			}
			continue
		}
		if strings.TrimSpace(frame.Text) == "" {
			continue
		}

		if err := writeResult(c, sess.Say(s.ctx(), frame.Text, speak)); err != nil {
			logger.Warn("socket write failed", "error", err)
			return
		}
	}
}

func writeResult(c *websocket.Conn, res session.Result) error {
	frame := ServerFrame{
		Type:           FrameReply,
		Room:           res.Room,
		Text:           res.Text,
		ConversationID: res.ConversationID,
		Kind:           string(res.Kind),
		Greeted:        res.Greeted,
	}
	if res.Audio != nil {
		frame.AudioFormat = string(res.Audio.Format.Encoding)
	}
	if err := writeFrame(c, frame); err != nil {
		return err
	}
	if res.Audio != nil && len(res.Audio.Audio) > 0 {
		return c.WriteMessage(websocket.BinaryMessage, res.Audio.Audio)
	}
	return nil
}

func writeFrame(c *websocket.Conn, frame ServerFrame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.TextMessage, data)
}
