package domain

import "time"

// InstanceStatus mirrors the lifecycle reported by the messaging gateway.
type InstanceStatus string

const (
	StatusDisconnected InstanceStatus = "disconnected"
	StatusConnecting   InstanceStatus = "connecting"
	StatusConnected    InstanceStatus = "connected"
	StatusError        InstanceStatus = "error"
)

// APISettings holds the per-instance webhook admission configuration.
// Empty allow-lists mean "no restriction"; a zero WebhookRateLimit falls
// back to the application default.
type APISettings struct {
	WebhookToken      string   `json:"webhook_token,omitempty"`
	AllowedUserAgents []string `json:"allowed_user_agents,omitempty"`
	AllowedIPs        []string `json:"allowed_ips,omitempty"`
	WebhookRateLimit  int      `json:"webhook_rate_limit,omitempty"`
}

// Instance is a single connected messaging endpoint (one phone number)
// belonging to a company.
type Instance struct {
	ID             string         `json:"id"`
	InstanceID     string         `json:"instance_id"`
	CompanyID      string         `json:"company_id"`
	Name           string         `json:"name"`
	PhoneNumber    string         `json:"phone_number,omitempty"`
	Status         InstanceStatus `json:"status"`
	APIToken       string         `json:"api_token,omitempty"`
	WebhookURL     string         `json:"webhook_url,omitempty"`
	Settings       APISettings    `json:"api_settings"`
	IsActive       bool           `json:"is_active"`
	LastActivityAt *time.Time     `json:"last_activity_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
