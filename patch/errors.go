package patch

import (
	"strings"

	"github.com/palewire/datawrapper-mcp/schema"
)

// ValidationError reports a candidate configuration the schema rejected,
// whether the patch or the current value was at fault.
type ValidationError struct {
	FieldErrors []schema.FieldError `json:"fieldErrors"`
	SchemaHint  string              `json:"schemaHint"`
	Err         error               `json:"-"`
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("Invalid chart configuration:")
	for _, fe := range e.FieldErrors {
		b.WriteString("\n  - ")
		b.WriteString(fe.Field)
		b.WriteString(": ")
		b.WriteString(fe.Message)
	}
	if e.SchemaHint != "" {
		b.WriteString("\n\n")
		b.WriteString(e.SchemaHint)
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error { return e.Err }
