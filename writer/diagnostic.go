package writer

import "fmt"

// Severity classifies a diagnostic.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic codes.
const (
	CodePlanShape    = "plan_shape"
	CodeLossyRewrite = "lossy_rewrite"
	CodeRenderFailed = "render_failed"
)

// Diagnostic reports a recoverable or fatal condition encountered while
// assembling output. Diagnostics are data: nothing is printed or panicked.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
}

func warnf(code, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Code: code, Message: fmt.Sprintf(format, args...)}
}

func errorf(code, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: code, Message: fmt.Sprintf(format, args...)}
}
