// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/hay-kot/criterio"
)

// Trigger validates a Jamf policy custom event name. Jamf matches events
// verbatim, so the name must be non-empty and free of whitespace.
func Trigger(trigger string) error {
	if trigger == "" {
		return fmt.Errorf("trigger is required")
	}
	if strings.IndexFunc(trigger, unicode.IsSpace) >= 0 {
		return fmt.Errorf("trigger %q must not contain whitespace", trigger)
	}
	return nil
}

// TriggerField returns a criterio validator for triggers.
func TriggerField(field, trigger string) error {
	return criterio.Run(field, trigger, Trigger)
}

// AppName validates an application name is non-empty after trimming whitespace.
func AppName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}
