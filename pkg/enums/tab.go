package enums

import (
	"fmt"
	"strings"
)

// Tab names a client screen the assistant can send the user to.
type Tab string

const (
	TabHome     Tab = "inicio"
	TabMarket   Tab = "market"
	TabTracking Tab = "rastreo"
	TabPoints   Tab = "puntos"
	TabHelp     Tab = "ayuda"
	TabProfile  Tab = "datos"
)

var validTabs = []Tab{
	TabHome,
	TabMarket,
	TabTracking,
	TabPoints,
	TabHelp,
	TabProfile,
}

// String implements fmt.Stringer.
func (t Tab) String() string {
	return string(t)
}

// IsValid reports whether the value is a known Tab.
func (t Tab) IsValid() bool {
	for _, candidate := range validTabs {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTab converts raw input into a Tab, ignoring case and padding.
func ParseTab(value string) (Tab, error) {
	normalized := Tab(strings.ToLower(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid tab %q", value)
}

// Tabs returns every navigable tab in display order.
func Tabs() []Tab {
	out := make([]Tab, len(validTabs))
	copy(out, validTabs)
	return out
}
