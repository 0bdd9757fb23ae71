package domain

import (
	"fmt"
	"net/http"
)

// RejectReason enumerates every admission rejection. All of them are
// expected, user-facing outcomes, logged at warning level, never faults.
type RejectReason string

const (
	ReasonInstanceNotFound  RejectReason = "INSTANCE_NOT_FOUND"
	ReasonInstanceInactive  RejectReason = "INSTANCE_INACTIVE"
	ReasonTokenMismatch     RejectReason = "TOKEN_MISMATCH"
	ReasonUserAgentRejected RejectReason = "USER_AGENT_REJECTED"
	ReasonSourceNotAllowed  RejectReason = "SOURCE_NOT_ALLOWED"
	ReasonRateLimited       RejectReason = "RATE_LIMITED"
)

// AdmissionError is the typed rejection returned by the admission gate. It
// implements pkg/error.GenericError so the REST layer maps it straight to a
// status code.
type AdmissionError struct {
	Reason     RejectReason
	InstanceID string
}

func (e AdmissionError) Error() string {
	switch e.Reason {
	case ReasonInstanceNotFound:
		return fmt.Sprintf("instance %s not found", e.InstanceID)
	case ReasonInstanceInactive:
		return fmt.Sprintf("instance %s is inactive", e.InstanceID)
	case ReasonTokenMismatch:
		return "invalid webhook token"
	case ReasonUserAgentRejected:
		return "user agent not allowed"
	case ReasonSourceNotAllowed:
		return "source address not allowed"
	case ReasonRateLimited:
		return "webhook rate limit exceeded"
	default:
		return string(e.Reason)
	}
}

func (e AdmissionError) ErrCode() string {
	return string(e.Reason)
}

func (e AdmissionError) StatusCode() int {
	switch e.Reason {
	case ReasonInstanceNotFound:
		return http.StatusNotFound
	case ReasonTokenMismatch:
		return http.StatusUnauthorized
	case ReasonRateLimited:
		return http.StatusTooManyRequests
	default:
		// inactive, user agent and source rejections
		return http.StatusForbidden
	}
}
