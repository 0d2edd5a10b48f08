package runtime

import (
	"fmt"
)

// validateDefinition checks a workflow definition at registration time.
func validateDefinition(def Definition) error {
	if def.Info.ID == "" {
		return fmt.Errorf("workflow id is required")
	}
	if def.Info.Name == "" {
		return fmt.Errorf("workflow name is required")
	}
	if def.Entry == nil {
		return fmt.Errorf("entry point is required")
	}

	switch def.Convention {
	case "":
		return fmt.Errorf("calling convention is required")
	default:
	}

	return nil
}

// missingInputs returns the declared required inputs absent from the body.
// A present key with a nil value counts as missing.
func missingInputs(desc *Descriptor, body map[string]any) []string {
	var missing []string
	for _, name := range desc.Info.RequiredInputs {
		v, ok := body[name]
		if !ok || v == nil {
			missing = append(missing, name)
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			missing = append(missing, name)
		}
	}
	return missing
}
