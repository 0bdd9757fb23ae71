package rest

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/zapedidos/zapedidos/chatbotengine/application"
	"github.com/zapedidos/zapedidos/chatbotengine/domain"
	pkgError "github.com/zapedidos/zapedidos/pkg/error"
	"github.com/zapedidos/zapedidos/pkg/utils"
)

type Webhook struct {
	Engine *application.Engine
}

// InitRestWebhook registers the inbound provider webhook. It lives outside
// the basic-auth API group: callers authenticate per-instance through the
// webhook token checked by the admission gate.
func InitRestWebhook(app fiber.Router, engine *application.Engine) Webhook {
	rest := Webhook{Engine: engine}
	app.Post("/whatsapp/:instance", rest.HandleInbound)
	return rest
}

// webhookPayload mirrors the provider's callback body.
type webhookPayload struct {
	Message struct {
		ID   string `json:"id"`
		From string `json:"from"`
		Body string `json:"body"`
		Type string `json:"type"`
	} `json:"message"`
}

func (h *Webhook) HandleInbound(c *fiber.Ctx) error {
	instanceID := strings.TrimSpace(c.Params("instance"))
	if instanceID == "" {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: "instance: cannot be blank.",
		})
	}

	var payload webhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: err.Error(),
		})
	}

	token := c.Get("X-Webhook-Token")
	if token == "" {
		token = c.Query("token")
	}

	msg := domain.InboundMessage{
		InstanceID: instanceID,
		MessageID:  payload.Message.ID,
		Sender:     payload.Message.From,
		Text:       payload.Message.Body,
		Type:       payload.Message.Type,
		Caller: domain.Caller{
			Token:     token,
			UserAgent: c.Get(fiber.HeaderUserAgent),
			SourceIP:  c.IP(),
		},
	}

	result, err := h.Engine.HandleInbound(c.UserContext(), msg)
	if err != nil {
		var admission domain.AdmissionError
		if errors.As(err, &admission) {
			return c.Status(admission.StatusCode()).JSON(utils.ResponseData{
				Status:  admission.StatusCode(),
				Code:    admission.ErrCode(),
				Message: admission.Error(),
			})
		}
		var typed pkgError.GenericError
		if errors.As(err, &typed) {
			return c.Status(typed.StatusCode()).JSON(utils.ResponseData{
				Status:  typed.StatusCode(),
				Code:    typed.ErrCode(),
				Message: typed.Error(),
			})
		}
		return c.Status(500).JSON(utils.ResponseData{
			Status:  500,
			Code:    "INTERNAL_SERVER_ERROR",
			Message: err.Error(),
		})
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Webhook processed",
		Results: result,
	})
}
