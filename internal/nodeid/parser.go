package nodeid

import (
	"fmt"
	"regexp"
	"strings"
)

// segmentRegex is used to validate a single segment of a name, e.g., `name` or `name[1]`.
var segmentRegex = regexp.MustCompile(`^([a-zA-Z0-9_-]+)(?:\[(\d+)\])?$`)

// isValidSegmentName checks for undesirable but technically valid names.
func isValidSegmentName(name string) bool {
	return name != "-" && name != "_"
}

// ValidateName checks that a node name follows the canonical format.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("node name cannot be empty")
	}

	for _, segment := range strings.Split(name, ".") {
		if segment == "" {
			return fmt.Errorf("node name %q contains empty segment", name)
		}

		matches := segmentRegex.FindStringSubmatch(segment)
		if matches == nil {
			return fmt.Errorf("invalid name segment format: %q", segment)
		}
		if !isValidSegmentName(matches[1]) {
			return fmt.Errorf("invalid segment name: %q", matches[1])
		}
	}

	return nil
}
