package ai

import (
	"context"
	"fmt"
)

// DiagnosticKind classifies why a generation call produced no model text.
type DiagnosticKind string

const (
	KindBadRequest      DiagnosticKind = "bad_request"
	KindUnauthorized    DiagnosticKind = "unauthorized"
	KindPaymentRequired DiagnosticKind = "payment_required"
	KindRateLimited     DiagnosticKind = "rate_limited"
	KindServerError     DiagnosticKind = "server_error"
	KindNetworkError    DiagnosticKind = "network_error"
	KindResponseFormat  DiagnosticKind = "response_format"
	KindEmptyContent    DiagnosticKind = "empty_content"
)

// Request is a single generation call. Title and Persona never reach the
// remote API; they only label the prompt log entry for the call.
type Request struct {
	Prompt      string
	Model       string
	Temperature float64
	MaxTokens   int
	Title       string
	Persona     string
}

// Diagnostic describes a failed generation call. Diagnostics are data, not
// errors: the pipeline persists them in place of a review, plan, or
// revision so a run always leaves a readable artifact behind.
type Diagnostic struct {
	Kind   DiagnosticKind
	Detail string
}

// Render produces the text that stands in for model output.
func (d Diagnostic) Render() string {
	switch d.Kind {
	case KindBadRequest:
		detail := d.Detail
		if detail == "" {
			detail = "malformed request"
		}
		return fmt.Sprintf("API Error (400): Bad Request - %s", detail)
	case KindUnauthorized:
		return "API Error (401): Unauthorized - check your API key"
	case KindPaymentRequired:
		return "API Error (402): Payment Required - insufficient credits"
	case KindRateLimited:
		return "API Error (429): Rate Limited - too many requests. Try increasing api_delay in your config."
	case KindServerError:
		return fmt.Sprintf("API Error (%s): server error", d.Detail)
	case KindNetworkError:
		return fmt.Sprintf("Network Error: %s", d.Detail)
	case KindResponseFormat:
		return fmt.Sprintf("Response Format Error: %s", d.Detail)
	case KindEmptyContent:
		if d.Detail == "" {
			return "Empty Response: model returned no content"
		}
		return fmt.Sprintf("Empty Response: model %s returned no content", d.Detail)
	default:
		return fmt.Sprintf("Generation Error: %s", d.Detail)
	}
}

// Result is the outcome of one generation call: model text or a
// diagnostic, never both.
type Result struct {
	Text string
	Diag *Diagnostic
}

func TextResult(text string) Result {
	return Result{Text: text}
}

func DiagnosticResult(kind DiagnosticKind, detail string) Result {
	return Result{Diag: &Diagnostic{Kind: kind, Detail: detail}}
}

// OK reports whether the call produced model text.
func (r Result) OK() bool {
	return r.Diag == nil
}

// Output returns what the pipeline should persist: the model text when the
// call succeeded, the rendered diagnostic otherwise.
func (r Result) Output() string {
	if r.Diag != nil {
		return r.Diag.Render()
	}
	return r.Text
}

// Generator produces text for review, plan, and revision prompts.
// Implementations never return an error from Generate; remote failures
// come back as diagnostic results. Pause spaces consecutive calls and is
// the caller's responsibility: a single call never pauses.
type Generator interface {
	Generate(ctx context.Context, req Request) Result
	Pause(ctx context.Context)
}
