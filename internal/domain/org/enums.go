package org

import (
	"errors"
	"fmt"
)

// ErrInvalidEnumValue is returned when a string tag does not belong to the
// declared value set of its enum type.
var ErrInvalidEnumValue = errors.New("invalid enum value")

// ParseRole validates a role tag.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleMaster, RoleAdmin, RoleUser:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: role %q", ErrInvalidEnumValue, s)
}

// ParseStatus validates a task status tag.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusNotStarted, StatusInProgress, StatusDone:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: status %q", ErrInvalidEnumValue, s)
}

// ParsePriority validates a task priority tag.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return Priority(s), nil
	}
	return "", fmt.Errorf("%w: priority %q", ErrInvalidEnumValue, s)
}
