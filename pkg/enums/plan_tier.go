package enums

import "fmt"

// PlanTier identifies a merchant's subscription tier.
type PlanTier string

const (
	PlanTierFree  PlanTier = "free"
	PlanTierBasic PlanTier = "basic"
	PlanTierPro   PlanTier = "pro"
)

var validPlanTiers = []PlanTier{
	PlanTierFree,
	PlanTierBasic,
	PlanTierPro,
}

// String implements fmt.Stringer.
func (p PlanTier) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PlanTier.
func (p PlanTier) IsValid() bool {
	for _, candidate := range validPlanTiers {
		if candidate == p {
			return true
		}
	}
	return false
}

// ActiveFormLimit returns how many active bid forms the tier allows.
func (p PlanTier) ActiveFormLimit() int {
	switch p {
	case PlanTierBasic:
		return 50
	case PlanTierPro:
		return 1000
	default:
		return 5
	}
}

// ParsePlanTier converts raw input into a PlanTier.
func ParsePlanTier(value string) (PlanTier, error) {
	for _, candidate := range validPlanTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid plan tier %q", value)
}
