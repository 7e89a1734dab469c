package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/atelierbook/atelier-backend/internal/dialog"
	"github.com/atelierbook/atelier-backend/internal/services"
)

// AliceRequest is one conversational turn from the Яндекс Диалоги platform
type AliceRequest struct {
	Meta struct {
		Locale   string `json:"locale"`
		Timezone string `json:"timezone"`
		ClientID string `json:"client_id"`
	} `json:"meta"`
	Request struct {
		Command           string `json:"command"`
		OriginalUtterance string `json:"original_utterance"`
		Type              string `json:"type"`
	} `json:"request"`
	Session struct {
		MessageID int    `json:"message_id"`
		SessionID string `json:"session_id"`
		SkillID   string `json:"skill_id"`
		UserID    string `json:"user_id"`
		New       bool   `json:"new"`
	} `json:"session"`
	Version string `json:"version"`
}

// AliceResponse is the reply envelope; the session block echoes the
// request and end_session stays false, the skill never hangs up
type AliceResponse struct {
	Response struct {
		Text       string `json:"text"`
		TTS        string `json:"tts,omitempty"`
		EndSession bool   `json:"end_session"`
	} `json:"response"`
	Session struct {
		MessageID int    `json:"message_id"`
		SessionID string `json:"session_id"`
		SkillID   string `json:"skill_id"`
		UserID    string `json:"user_id"`
	} `json:"session"`
	Version string `json:"version"`
}

// AliceHandler handles Alice webhook requests
type AliceHandler struct {
	skill  *services.SkillService
	dialog dialog.Store
}

// NewAliceHandler creates a new Alice webhook handler
func NewAliceHandler(skill *services.SkillService, dialogStore dialog.Store) *AliceHandler {
	return &AliceHandler{skill: skill, dialog: dialogStore}
}

// HandleWebhook processes one turn. Whatever happens inside, the caller
// always gets a well-formed envelope with a conversational reply.
func (h *AliceHandler) HandleWebhook(c *fiber.Ctx) error {
	var req AliceRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Alice webhook: invalid payload: %v", err)
		return c.JSON(h.envelope(&req, services.MsgGenericError))
	}

	text, err := h.reply(c, &req)
	if err != nil {
		log.Printf("Alice webhook: turn failed for session %s: %v", req.Session.SessionID, err)
		text = services.MsgGenericError
	}

	return c.JSON(h.envelope(&req, text))
}

// reply runs the per-turn state machine and returns the reply text
func (h *AliceHandler) reply(c *fiber.Ctx, req *AliceRequest) (string, error) {
	ctx := c.UserContext()
	sessionID := req.Session.SessionID
	utterance := req.Request.OriginalUtterance

	// A new session always resets dialogue state, even mid-collection
	if req.Session.New {
		if err := h.dialog.Delete(ctx, sessionID); err != nil {
			return "", err
		}
	}

	state, err := h.dialog.Get(ctx, sessionID)
	if err != nil && !errors.Is(err, dialog.ErrNoState) {
		return "", err
	}

	// While collecting, utterances are dictation, not commands; only
	// the end phrase escapes
	if state != nil && state.Mode == dialog.ModeCollecting {
		var result services.Result
		if services.IsEndOfRecording(utterance) {
			result, err = h.skill.EndMeasurement(ctx, sessionID)
		} else {
			result, err = h.skill.RecordDictation(ctx, sessionID, utterance)
		}
		if err != nil {
			return "", err
		}
		return result.Text, nil
	}

	cmd := services.Parse(utterance)
	if cmd == nil {
		return services.MsgDidNotUnderstand, nil
	}

	var result services.Result
	switch cmd.Action {
	case services.ActionAddClient:
		result, err = h.skill.AddClient(cmd.Params[0])
	case services.ActionAddProduct:
		result, err = h.skill.AddProduct(cmd.Params[0], cmd.Params[1])
	case services.ActionStartMeasurement:
		result, err = h.skill.StartMeasurement(ctx, sessionID, cmd.Params[0])
	case services.ActionEndMeasurement:
		// Reached only outside collecting mode, so this reports the
		// missing recording
		result, err = h.skill.EndMeasurement(ctx, sessionID)
	case services.ActionListClients:
		result, err = h.skill.ListClients()
	case services.ActionListProducts:
		result, err = h.skill.ListProducts(cmd.Params[0])
	case services.ActionListMeasurements:
		result, err = h.skill.ListMeasurements(cmd.Params[0])
	case services.ActionHelp:
		result, err = h.skill.Help()
	default:
		return services.MsgDidNotUnderstand, nil
	}
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// envelope builds the reply envelope, echoing the session identity
func (h *AliceHandler) envelope(req *AliceRequest, text string) *AliceResponse {
	resp := &AliceResponse{Version: "1.0"}
	resp.Response.Text = text
	resp.Response.TTS = text
	resp.Response.EndSession = false
	resp.Session.MessageID = req.Session.MessageID
	resp.Session.SessionID = req.Session.SessionID
	resp.Session.SkillID = req.Session.SkillID
	resp.Session.UserID = req.Session.UserID
	return resp
}

// HandleProbe answers GET requests so the endpoint can be checked by hand
func (h *AliceHandler) HandleProbe(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"message": "Навык \"Записная книжка швеи\" работает",
		"endpoints": fiber.Map{
			"webhook": "/webhook/alice",
			"api":     "/api",
		},
	})
}
