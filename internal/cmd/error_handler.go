package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/storefront/storefront-cli/internal/api"
	"github.com/storefront/storefront-cli/internal/config"
	"github.com/storefront/storefront-cli/internal/resolve"
)

// HandleError processes an error and returns a user-friendly message with suggestions
func HandleError(err error) string {
	if err == nil {
		return ""
	}

	var msg strings.Builder

	var apiErr *api.APIError
	var structured *api.StructuredError
	var ambiguous *resolve.AmbiguousError

	switch {
	case api.IsTransportError(err):
		fmt.Fprintf(&msg, "%s\n\n", err.Error())
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check the base URL: sf auth status\n")
		msg.WriteString("  - Verify the API is running and reachable\n")
		msg.WriteString("  - Use --debug to see the request\n")

	case errors.As(err, &apiErr):
		fmt.Fprintf(&msg, "API error (HTTP %d): %s\n", apiErr.Status, apiErr.Message)
		if details := apiErr.FieldErrors(); details != "" {
			fmt.Fprintf(&msg, "Validation errors:\n%s\n", details)
		}
		msg.WriteString("\n")
		msg.WriteString(suggestionsForStatusCode(apiErr.Status))
		if apiErr.RequestID != "" {
			fmt.Fprintf(&msg, "\nRequest ID: %s\n", apiErr.RequestID)
		}

	case errors.Is(err, config.ErrNotConfigured):
		fmt.Fprintf(&msg, "Error: %s\n", err.Error())

	case errors.As(err, &ambiguous):
		fmt.Fprintf(&msg, "Error: %s\n\n", err.Error())
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Pass the numeric ID instead of a name\n")

	case errors.As(err, &structured):
		fmt.Fprintf(&msg, "Error: %s\n", structured.Message)
		if structured.Suggestion != "" {
			fmt.Fprintf(&msg, "\nSuggestions:\n  - %s\n", structured.Suggestion)
		}

	default:
		fmt.Fprintf(&msg, "Error: %s\n", err.Error())
	}

	return msg.String()
}

func suggestionsForStatusCode(code int) string {
	var suggestions strings.Builder
	suggestions.WriteString("Suggestions:\n")

	switch {
	case code == 400:
		suggestions.WriteString("  - Check your request parameters\n")
		suggestions.WriteString("  - Use --debug to see the full request\n")

	case code == 401:
		suggestions.WriteString("  - Your token may be invalid or expired\n")
		suggestions.WriteString("  - Run: sf auth login\n")

	case code == 403:
		suggestions.WriteString("  - You don't have permission for this action\n")
		suggestions.WriteString("  - Check the role of the logged-in user: sf users me\n")

	case code == 404:
		suggestions.WriteString("  - The resource doesn't exist\n")
		suggestions.WriteString("  - Check the ID is correct\n")

	case code == 409:
		suggestions.WriteString("  - The resource changed on the server\n")
		suggestions.WriteString("  - Fetch it again and retry\n")

	case code == 422:
		suggestions.WriteString("  - Validation failed\n")
		suggestions.WriteString("  - Check your input values\n")

	case code == 429:
		suggestions.WriteString("  - Too many requests\n")
		suggestions.WriteString("  - Wait and retry in a few seconds\n")

	case code >= 500:
		suggestions.WriteString("  - Server error - not your fault\n")
		suggestions.WriteString("  - Wait and retry\n")

	default:
		suggestions.WriteString("  - Use --debug for more details\n")
	}

	return suggestions.String()
}
