package entitlements

import (
	"strings"

	"github.com/flixhive/flixhive/app/models"
)

type Plan string

const (
	PlanNone    Plan = "none"
	PlanMonthly Plan = "monthly"
	PlanYearly  Plan = "yearly"
)

const (
	QualityHD  = "1080p"
	QualityUHD = "2160p"
)

// Entitlement is the computed streaming allowance for one user.
type Entitlement struct {
	CanStream         bool   `json:"can_stream"`
	MaxQuality        string `json:"max_quality"`
	ConcurrentStreams int    `json:"concurrent_streams"`
	Plan              Plan   `json:"plan"`
}

// StreamLimits returns the playback allowances for a given plan
func StreamLimits(plan Plan) (maxQuality string, concurrent int) {
	switch plan {
	case PlanYearly:
		return QualityUHD, 4
	case PlanMonthly:
		return QualityHD, 2
	default:
		return "", 0
	}
}

// ForUser combines the denormalized user status with the latest subscription
// row to compute the effective entitlement. A funded or vendor-managed
// subscription counts the same way.
func ForUser(user *models.User, sub *models.Subscription) Entitlement {
	if user == nil || !user.HasActiveSubscription() {
		return Entitlement{Plan: PlanNone}
	}

	plan := PlanMonthly
	if sub != nil {
		if !sub.IsEntitling() {
			return Entitlement{Plan: PlanNone}
		}
		if Plan(strings.ToLower(sub.PlanType)) == PlanYearly {
			plan = PlanYearly
		}
	}

	maxQuality, concurrent := StreamLimits(plan)
	return Entitlement{
		CanStream:         true,
		MaxQuality:        maxQuality,
		ConcurrentStreams: concurrent,
		Plan:              plan,
	}
}
