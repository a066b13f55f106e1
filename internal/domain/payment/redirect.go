package payment

import "strings"

// Outcome classifies one navigation URL observed during the hosted
// checkout flow.
type Outcome int

const (
	// OutcomeIndeterminate means the URL carried no verdict; the
	// classifier is simply re-run on the next navigation event.
	OutcomeIndeterminate Outcome = iota
	OutcomeSuccess
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	default:
		return "indeterminate"
	}
}

// The gateway exposes no client-readable webhook, so the redirect URL is
// the only signal. Matching is case-insensitive substring containment.
var (
	failurePatterns = []string{
		"payment_status=failure",
		"transaction_status=failure",
		"status_code=201",
		"status_code=202",
		"/failed",
		"transaction_status=cancel",
		"transaction_status=deny",
	}
	successPatterns = []string{
		"payment_status=success",
		"transaction_status=success",
		"status_code=200",
		"/success",
		"transaction_status=capture",
		"payment_type=credit_card",
		"payment_status=paid",
	}
)

// Classify inspects a redirect URL for the gateway's success and failure
// markers. Failure patterns take precedence: a URL matching both lists is
// treated as a failure, so an ambiguous redirect can never confirm an
// unpaid order.
func Classify(url string) Outcome {
	lowered := strings.ToLower(url)
	for _, p := range failurePatterns {
		if strings.Contains(lowered, p) {
			return OutcomeFailure
		}
	}
	for _, p := range successPatterns {
		if strings.Contains(lowered, p) {
			return OutcomeSuccess
		}
	}
	return OutcomeIndeterminate
}
