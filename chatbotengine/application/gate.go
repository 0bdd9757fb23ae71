package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/zapedidos/zapedidos/chatbotengine/domain"
	pkgError "github.com/zapedidos/zapedidos/pkg/error"
)

// GateConfig carries the application-level rate-limit defaults. Instances
// may override MaxRequests via their api settings.
type GateConfig struct {
	MaxRequests int
	Window      time.Duration
}

// AdmissionGate decides whether an inbound provider callback may proceed to
// message processing. Checks run in a fixed order (existence, active flag,
// token, user agent, source address, rate limit) so that identity rejections
// never consume a rate-limit slot.
type AdmissionGate struct {
	instances domain.InstanceStore
	limiter   domain.RateLimitStore
	cfg       GateConfig
}

func NewAdmissionGate(instances domain.InstanceStore, limiter domain.RateLimitStore, cfg GateConfig) *AdmissionGate {
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 100
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return &AdmissionGate{instances: instances, limiter: limiter, cfg: cfg}
}

// Admit returns the instance when the caller is admitted, or a typed
// domain.AdmissionError otherwise.
func (g *AdmissionGate) Admit(ctx context.Context, instanceID string, caller domain.Caller) (domain.Instance, error) {
	instance, err := g.instances.GetByInstanceID(ctx, instanceID)
	if err != nil {
		if _, ok := err.(pkgError.NotFoundError); ok {
			g.warn(instanceID, caller, domain.ReasonInstanceNotFound)
			return domain.Instance{}, domain.AdmissionError{Reason: domain.ReasonInstanceNotFound, InstanceID: instanceID}
		}
		return domain.Instance{}, err
	}

	if !instance.IsActive {
		g.warn(instanceID, caller, domain.ReasonInstanceInactive)
		return domain.Instance{}, domain.AdmissionError{Reason: domain.ReasonInstanceInactive, InstanceID: instanceID}
	}

	if expected := instance.Settings.WebhookToken; expected != "" && caller.Token != expected {
		g.warn(instanceID, caller, domain.ReasonTokenMismatch)
		return domain.Instance{}, domain.AdmissionError{Reason: domain.ReasonTokenMismatch, InstanceID: instanceID}
	}

	if allowed := instance.Settings.AllowedUserAgents; len(allowed) > 0 && !contains(allowed, caller.UserAgent) {
		g.warn(instanceID, caller, domain.ReasonUserAgentRejected)
		return domain.Instance{}, domain.AdmissionError{Reason: domain.ReasonUserAgentRejected, InstanceID: instanceID}
	}

	if allowed := instance.Settings.AllowedIPs; len(allowed) > 0 && !contains(allowed, caller.SourceIP) {
		g.warn(instanceID, caller, domain.ReasonSourceNotAllowed)
		return domain.Instance{}, domain.AdmissionError{Reason: domain.ReasonSourceNotAllowed, InstanceID: instanceID}
	}

	maxRequests := g.cfg.MaxRequests
	if instance.Settings.WebhookRateLimit > 0 {
		maxRequests = instance.Settings.WebhookRateLimit
	}

	count, err := g.limiter.Hit(ctx, "webhook:"+instanceID+":"+caller.SourceIP, g.cfg.Window)
	if err != nil {
		// Counter store outage degrades to admitting the call. Losing rate
		// protection for a window beats refusing every customer message.
		logrus.WithError(err).WithField("instance_id", instanceID).
			Warn("webhook rate counter unavailable, admitting without limit")
		return instance, nil
	}
	if count > int64(maxRequests) {
		logrus.WithFields(logrus.Fields{
			"instance_id":  instanceID,
			"client_ip":    caller.SourceIP,
			"count":        count,
			"max_requests": maxRequests,
		}).Warn("webhook rate limit exceeded")
		return domain.Instance{}, domain.AdmissionError{Reason: domain.ReasonRateLimited, InstanceID: instanceID}
	}

	return instance, nil
}

func (g *AdmissionGate) warn(instanceID string, caller domain.Caller, reason domain.RejectReason) {
	logrus.WithFields(logrus.Fields{
		"instance_id": instanceID,
		"client_ip":   caller.SourceIP,
		"user_agent":  caller.UserAgent,
		"reason":      reason,
	}).Warn("webhook call rejected")
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
