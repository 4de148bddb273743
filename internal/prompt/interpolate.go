// Package prompt turns templates, variables and prior turns into the ordered
// message list sent to a provider.
package prompt

import (
	"regexp"
	"strings"

	"github.com/promptforge/generation-api/internal/model"
)

// CurrentTurnVariable is the reserved variable carrying the caller's current
// user turn.
const CurrentTurnVariable = "input"

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.\-]+)\s*\}\}`)

// Interpolate replaces every {{name}} token whose name is a key of vars with
// the trimmed value. Unknown tokens are left verbatim.
func Interpolate(template string, vars map[string]string) string {
	if template == "" || len(vars) == 0 {
		return template
	}
	return placeholder.ReplaceAllStringFunc(template, func(token string) string {
		name := placeholder.FindStringSubmatch(token)[1]
		value, ok := vars[name]
		if !ok {
			return token
		}
		return strings.TrimSpace(value)
	})
}

// ValidationResult lists required variables that are missing.
type ValidationResult struct {
	Valid   bool
	Missing []string
}

// ValidateVariables checks the variables flagged required in schema. Absent
// and whitespace-only values count as missing. Missing names keep schema order.
func ValidateVariables(vars map[string]string, schema []model.VariableSpec) ValidationResult {
	var missing []string
	for _, spec := range schema {
		if !spec.Required {
			continue
		}
		if strings.TrimSpace(vars[spec.Name]) == "" {
			missing = append(missing, spec.Name)
		}
	}
	return ValidationResult{Valid: len(missing) == 0, Missing: missing}
}

// RequireVariables returns INVALID_VARIABLES naming every missing field.
func RequireVariables(vars map[string]string, schema []model.VariableSpec) error {
	res := ValidateVariables(vars, schema)
	if res.Valid {
		return nil
	}
	return model.Errorf(model.ErrInvalidVariables,
		"missing required variables: %s", strings.Join(res.Missing, ", ")).
		WithDetails(map[string][]string{"missing": res.Missing})
}
