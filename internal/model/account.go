package model

import "time"

// Account is a registered user as known to the accounts database.
type Account struct {
	ID               int64     `json:"id"`
	Email            string    `json:"email"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Plan             string    `json:"plan"`
	IsActive         bool      `json:"isActive"`
	ExtensionEnabled bool      `json:"extensionEnabled"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Subscription plan tiers.
const (
	PlanNeophyte = "Néophyte"
	PlanMetrios  = "Métrios"
	PlanArchon   = "Archon"
)

// PlanFeatures describes what a subscription tier unlocks.
// MaxItems of -1 means unlimited.
type PlanFeatures struct {
	MaxItems          int  `json:"maxItems"`
	AutoRepost        bool `json:"autoRepost"`
	BasicAnalytics    bool `json:"basicAnalytics"`
	AdvancedAnalytics bool `json:"advancedAnalytics"`
	EmailSupport      bool `json:"emailSupport"`
	AIMessages        bool `json:"aiMessages"`
	ImageGeneration   bool `json:"imageGeneration"`
	MultiAccounts     bool `json:"multiAccounts"`
	PrioritySupport   bool `json:"prioritySupport"`
	APIAccess         bool `json:"apiAccess"`
	CustomAutomation  bool `json:"customAutomation"`
}

// FeaturesForPlan returns the feature matrix for a plan tier.
// Unrecognized plans fall back to the entry tier.
func FeaturesForPlan(plan string) PlanFeatures {
	switch plan {
	case PlanArchon:
		return PlanFeatures{
			MaxItems:          -1,
			AutoRepost:        true,
			BasicAnalytics:    true,
			AdvancedAnalytics: true,
			EmailSupport:      true,
			AIMessages:        true,
			ImageGeneration:   true,
			MultiAccounts:     true,
			PrioritySupport:   true,
			APIAccess:         true,
			CustomAutomation:  true,
		}
	case PlanMetrios:
		return PlanFeatures{
			MaxItems:          500,
			AutoRepost:        true,
			BasicAnalytics:    true,
			AdvancedAnalytics: true,
			EmailSupport:      true,
			AIMessages:        true,
			ImageGeneration:   true,
			PrioritySupport:   true,
		}
	default:
		return PlanFeatures{
			MaxItems:       100,
			AutoRepost:     true,
			BasicAnalytics: true,
			EmailSupport:   true,
		}
	}
}
