package service

import (
	"fmt"

	"parley/gpt"
	"parley/models"
)

// FormatMillidollars renders a nanodollar amount as millidollars with two
// decimal places, the unit all user-facing money is shown in
func FormatMillidollars(nanodollars int64) string {
	return fmt.Sprintf("%.2f", float64(nanodollars)/1_000_000.0)
}

// FormatBalance renders a balance in millidollars, or the infinity sign for
// users exempt from the quota
func FormatBalance(balance models.Balance) string {
	if balance.Unlimited {
		return "∞"
	}
	return FormatMillidollars(balance.Nanodollars)
}

// responseEnding maps a completion finish reason to the suffix appended to
// the reply text
func responseEnding(finishReason string) string {
	switch finishReason {
	case gpt.FinishReasonStop:
		return ""
	case gpt.FinishReasonLength:
		return " …"
	case gpt.FinishReasonContentFilter:
		return " [filtered]"
	default:
		return " [?]"
	}
}

// formatResponse assembles the full reply for an answered query: emoji,
// answer text, finish suffix, and the cost/balance trailer. An empty
// modelName omits the model tag; callers pass one only for queries that ran
// on something other than the default model.
func formatResponse(emoji, content, finishReason string, cost int64, balance models.Balance, modelName string) string {
	response := fmt.Sprintf("%s %s%s (-%s m$, %s m$)",
		emoji,
		content,
		responseEnding(finishReason),
		FormatMillidollars(cost),
		FormatBalance(balance),
	)
	if modelName != "" {
		response += " (" + modelName + ")"
	}
	return response
}

// formatExhausted is the reply for a query refused by the allowance gate
func formatExhausted(balance models.Balance, maxBalance int64) string {
	return fmt.Sprintf("You are out of allowance (%s m$ of %s m$). It replenishes continuously, try again later.",
		FormatMillidollars(balance.Nanodollars),
		FormatMillidollars(maxBalance),
	)
}

// formatAPIError maps a provider-reported failure to the reply text. Detail
// beyond the coarse cause stays in the log.
func formatAPIError(apiErr *gpt.APIError) string {
	switch apiErr.Cause() {
	case gpt.ErrorCauseQuota:
		return "The API account is out of credits. Pester the operator to top it up."
	case gpt.ErrorCauseServer:
		return "The completion service is having trouble right now. Try again in a bit."
	case gpt.ErrorCauseRateLimited:
		return "Too many requests at once. Try again in a moment."
	default:
		return "The completion request failed. Try again later."
	}
}
