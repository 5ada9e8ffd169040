package enums

import "fmt"

// FormStatus tracks the lifecycle of a bid form.
type FormStatus string

const (
	FormStatusActive FormStatus = "active"
	FormStatusPaused FormStatus = "paused"
	FormStatusEnded  FormStatus = "ended"
)

var validFormStatuses = []FormStatus{
	FormStatusActive,
	FormStatusPaused,
	FormStatusEnded,
}

// String implements fmt.Stringer.
func (f FormStatus) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FormStatus.
func (f FormStatus) IsValid() bool {
	for _, candidate := range validFormStatuses {
		if candidate == f {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (f FormStatus) IsTerminal() bool {
	return f == FormStatusEnded
}

// ParseFormStatus converts raw input into a FormStatus.
func ParseFormStatus(value string) (FormStatus, error) {
	for _, candidate := range validFormStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid form status %q", value)
}
