package gateway

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/teslashibe/go-voicebridge/pkg/conversation"
	"github.com/teslashibe/go-voicebridge/pkg/session"
)

// TurnRequest is the body of POST /api/rooms/:room/turns.
type TurnRequest struct {
	Items []conversation.Record `json:"items"`
	Speak bool                  `json:"speak"`
}

// MessageRequest is the body of POST /api/rooms/:room/messages.
type MessageRequest struct {
	Text  string `json:"text"`
	Speak bool   `json:"speak"`
}

// TurnResponse is returned by both turn endpoints.
type TurnResponse struct {
	Room           string `json:"room"`
	Text           string `json:"text"`
	ConversationID string `json:"conversation_id,omitempty"`
	Kind           string `json:"kind"`
	Greeted        bool   `json:"greeted,omitempty"`
	Audio          []byte `json:"audio,omitempty"`
	AudioFormat    string `json:"audio_format,omitempty"`
}

func newTurnResponse(res session.Result) TurnResponse {
	resp := TurnResponse{
		Room:           res.Room,
		Text:           res.Text,
		ConversationID: res.ConversationID,
		Kind:           string(res.Kind),
		Greeted:        res.Greeted,
	}
	if res.Audio != nil {
		resp.Audio = res.Audio.Audio
		resp.AudioFormat = string(res.Audio.Format.Encoding)
	}
	return resp
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"version":   s.config.Version,
		"sessions":  s.sessions.Count(),
		"speech":    s.sessions.CanSpeak(),
		"observers": s.events.Subscribers(),
	})
}

func (s *Server) handleListRooms(c *fiber.Ctx) error {
	rooms := s.sessions.List()
	return c.JSON(fiber.Map{
		"rooms": rooms,
		"count": len(rooms),
	})
}

func (s *Server) handleGetRoom(c *fiber.Ctx) error {
	sess, ok := s.sessions.Get(c.Params("room"))
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, "room not found")
	}
	return c.JSON(sess.Info())
}

func (s *Server) handleEndRoom(c *fiber.Ctx) error {
	if !s.sessions.End(c.Params("room")) {
		return errorJSON(c, fiber.StatusNotFound, "room not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleTurn(c *fiber.Ctx) error {
	var req TurnRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid body: "+err.Error())
	}

	sess, created := s.sessions.Open(c.Params("room"))
	if created {
		s.logger.Debug("room opened by turn", "room", sess.Room())
	}

	res := sess.Respond(c.UserContext(), conversation.Records(req.Items), req.Speak)
	return c.JSON(newTurnResponse(res))
}

func (s *Server) handleMessage(c *fiber.Ctx) error {
	var req MessageRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid body: "+err.Error())
	}
	if strings.TrimSpace(req.Text) == "" {
		return errorJSON(c, fiber.StatusBadRequest, "text is required")
	}

	sess, _ := s.sessions.Open(c.Params("room"))
	res := sess.Say(c.UserContext(), req.Text, req.Speak)
	return c.JSON(newTurnResponse(res))
}
