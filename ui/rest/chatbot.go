package rest

import (
	"github.com/gofiber/fiber/v2"
	domainChatbot "github.com/zapedidos/zapedidos/domains/chatbot"
	"github.com/zapedidos/zapedidos/pkg/utils"
)

type Chatbot struct {
	Service domainChatbot.IChatbotUsecase
}

func InitRestChatbot(app fiber.Router, service domainChatbot.IChatbotUsecase) Chatbot {
	rest := Chatbot{Service: service}
	app.Get("/chatbot/rules", rest.ListRules)
	app.Post("/chatbot/rules", rest.CreateRule)
	app.Get("/chatbot/rules/:id", rest.GetRule)
	app.Put("/chatbot/rules/:id", rest.UpdateRule)
	app.Delete("/chatbot/rules/:id", rest.DeleteRule)
	app.Get("/chatbot/rules/:id/stats", rest.GetRuleStats)
	return rest
}

func (h *Chatbot) ListRules(c *fiber.Ctx) error {
	rules, err := h.Service.ListRules(c.UserContext(), c.Query("company_id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Rules fetched",
		Results: rules,
	})
}

func (h *Chatbot) CreateRule(c *fiber.Ctx) error {
	var req domainChatbot.CreateRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: err.Error(),
		})
	}

	rule, err := h.Service.CreateRule(c.UserContext(), req)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Rule created",
		Results: rule,
	})
}

func (h *Chatbot) GetRule(c *fiber.Ctx) error {
	rule, err := h.Service.GetRule(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Rule fetched",
		Results: rule,
	})
}

func (h *Chatbot) UpdateRule(c *fiber.Ctx) error {
	var req domainChatbot.UpdateRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: err.Error(),
		})
	}

	rule, err := h.Service.UpdateRule(c.UserContext(), c.Params("id"), req)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Rule updated",
		Results: rule,
	})
}

func (h *Chatbot) DeleteRule(c *fiber.Ctx) error {
	err := h.Service.DeleteRule(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Rule deleted",
	})
}

func (h *Chatbot) GetRuleStats(c *fiber.Ctx) error {
	stats, err := h.Service.RuleStats(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Rule stats fetched",
		Results: stats,
	})
}
