package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/zapedidos/zapedidos/chatbotengine/domain"
	"github.com/zapedidos/zapedidos/pkg/msgworker"
)

// Result summarizes how one inbound message was handled after admission.
type Result struct {
	InstanceID    string `json:"instance_id"`
	MessageID     string `json:"message_id,omitempty"`
	Matched       bool   `json:"matched"`
	RuleID        string `json:"rule_id,omitempty"`
	ResponseDelay int    `json:"response_delay,omitempty"`
	Queued        bool   `json:"queued"`
}

// Engine wires the admission gate, the response matcher and the usage
// ledger into the single synchronous pipeline executed per webhook call.
// Only the outbound send (and its configured delay) leaves the request
// path, through the worker pool.
type Engine struct {
	gate     *AdmissionGate
	rules    domain.RuleStore
	ledger   domain.UsageLedger
	sender   domain.Sender
	activity domain.ActivityTracker // optional
	pool     *msgworker.Pool        // nil means sends run inline (tests)
}

func NewEngine(gate *AdmissionGate, rules domain.RuleStore, ledger domain.UsageLedger, sender domain.Sender, activity domain.ActivityTracker, pool *msgworker.Pool) *Engine {
	return &Engine{gate: gate, rules: rules, ledger: ledger, sender: sender, activity: activity, pool: pool}
}

// HandleInbound runs gate -> matcher -> dispatch for one webhook call.
// Admission rejections come back as domain.AdmissionError; everything after
// admission degrades to "no automated response" instead of failing the call.
func (e *Engine) HandleInbound(ctx context.Context, msg domain.InboundMessage) (Result, error) {
	instance, err := e.gate.Admit(ctx, msg.InstanceID, msg.Caller)
	if err != nil {
		return Result{}, err
	}

	if e.activity != nil {
		if err := e.activity.TouchActivity(ctx, instance.InstanceID, time.Now().UTC()); err != nil {
			logrus.WithError(err).WithField("instance_id", msg.InstanceID).
				Warn("failed to stamp instance activity")
		}
	}

	result := Result{InstanceID: msg.InstanceID, MessageID: msg.MessageID}

	if msg.Type != "" && msg.Type != "text" {
		logrus.WithFields(logrus.Fields{
			"instance_id":  msg.InstanceID,
			"message_type": msg.Type,
		}).Debug("non-text message, skipping chatbot matching")
		return result, nil
	}

	rules, err := e.rules.EffectiveRules(ctx, instance.CompanyID, instance.InstanceID)
	if err != nil {
		logrus.WithError(err).WithField("instance_id", msg.InstanceID).
			Error("failed to load chatbot rules, message goes unanswered")
		return result, nil
	}

	rule := Resolve(msg.Text, rules)
	if rule == nil {
		return result, nil
	}

	result.Matched = true
	result.RuleID = rule.ID
	result.ResponseDelay = rule.ResponseDelay
	result.Queued = e.dispatch(instance, *rule, msg)
	return result, nil
}

// dispatch hands the outbound send to the worker pool, keyed by sender so
// replies to the same customer stay ordered. With no pool configured the
// send runs inline.
func (e *Engine) dispatch(instance domain.Instance, rule domain.Rule, msg domain.InboundMessage) bool {
	job := msgworker.Job{
		InstanceID: instance.InstanceID,
		ChatID:     msg.Sender,
		Handler: func(ctx context.Context) error {
			return e.respond(ctx, instance, rule, msg)
		},
	}

	if e.pool == nil {
		_ = job.Handler(context.Background())
		return true
	}

	if !e.pool.TryDispatch(job) {
		logrus.WithFields(logrus.Fields{
			"instance_id": instance.InstanceID,
			"rule_id":     rule.ID,
		}).Warn("response queue full, dropping outbound reply")
		return false
	}
	return true
}

// respond applies the rule's configured delay, sends the reply and, only
// after a successful send, credits the usage ledger. Ledger failures are
// logged and swallowed: usage accounting is best-effort telemetry.
func (e *Engine) respond(ctx context.Context, instance domain.Instance, rule domain.Rule, msg domain.InboundMessage) error {
	if rule.ResponseDelay > 0 {
		timer := time.NewTimer(time.Duration(rule.ResponseDelay) * time.Second)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := e.send(ctx, instance, rule, msg); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"instance_id": instance.InstanceID,
			"rule_id":     rule.ID,
			"phone":       msg.Sender,
		}).Error("failed to send chatbot response")
		return err
	}

	if err := e.ledger.RecordUsage(ctx, rule.ID, time.Now().UTC()); err != nil {
		logrus.WithError(err).WithField("rule_id", rule.ID).
			Warn("failed to record rule usage")
	}
	return nil
}

// send picks the gateway call for the rule's response type. Media rules
// carry their text as the caption; a media rule without a URL degrades to a
// plain text send rather than an empty media call.
func (e *Engine) send(ctx context.Context, instance domain.Instance, rule domain.Rule, msg domain.InboundMessage) error {
	if rule.ResponseType == "" || rule.ResponseType == domain.ResponseText || rule.MediaURL == "" {
		return e.sender.SendText(ctx, instance, msg.Sender, rule.ResponseMessage)
	}
	return e.sender.SendMedia(ctx, instance, msg.Sender, rule.ResponseType, rule.MediaURL, rule.ResponseMessage)
}
