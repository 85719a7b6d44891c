package cmd

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/spf13/pflag"

	"github.com/storefront/storefront-cli/internal/api"
	"github.com/storefront/storefront-cli/internal/config"
	"github.com/storefront/storefront-cli/internal/resolve"
)

const (
	exitOK          = 0
	exitGeneric     = 1
	exitUsage       = 2
	exitAuth        = 3
	exitNotFound    = 4
	exitForbidden   = 5
	exitRateLimited = 6
	exitServer      = 7
	exitNetwork     = 8
)

// ExitCode maps an error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, pflag.ErrHelp) {
		return exitOK
	}
	var handled *handledError
	if errors.As(err, &handled) {
		if handled.exitCode != 0 {
			return handled.exitCode
		}
		err = handled.err
	}

	if errors.Is(err, config.ErrNotConfigured) {
		return exitAuth
	}
	if code := exitCodeFromLookup(err); code != 0 {
		return code
	}
	if code := exitCodeFromStructured(err); code != 0 {
		return code
	}
	if isUsageError(err) {
		return exitUsage
	}
	if isNetworkError(err) {
		return exitNetwork
	}
	return exitGeneric
}

func exitCodeFromStructured(err error) int {
	switch {
	case api.IsTransportError(err):
		return exitNetwork
	case api.IsNotFoundError(err):
		return exitNotFound
	}
	var apiErr *api.APIError
	var structured *api.StructuredError
	if !errors.As(err, &apiErr) && !errors.As(err, &structured) {
		return 0
	}
	switch api.StructuredErrorFromError(err).Code {
	case api.ErrUnauthorized:
		return exitAuth
	case api.ErrForbidden:
		return exitForbidden
	case api.ErrNotFound:
		return exitNotFound
	case api.ErrRateLimited:
		return exitRateLimited
	case api.ErrServerError:
		return exitServer
	case api.ErrNetwork:
		return exitNetwork
	case api.ErrBadRequest, api.ErrValidation, api.ErrConflict:
		return exitUsage
	default:
		return 0
	}
}

// exitCodeFromLookup classifies failures to turn a category or tag name
// into an ID.
func exitCodeFromLookup(err error) int {
	var ambiguous *resolve.AmbiguousError
	switch {
	case errors.As(err, &ambiguous), errors.Is(err, resolve.ErrEmptyQuery):
		return exitUsage
	case errors.Is(err, resolve.ErrNoMatch), errors.Is(err, resolve.ErrEmptyItems):
		return exitNotFound
	}
	return 0
}

func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "i/o timeout")
}

func isUsageError(err error) bool {
	msg := strings.ToLower(err.Error())
	indicators := []string{
		"unknown command",
		"unknown flag",
		"unknown shorthand flag",
		"flag needs an argument",
		"requires at least",
		"requires exactly",
		"accepts at most",
		"accepts between",
		"invalid argument",
		"invalid value",
		"must be",
		"is required",
		"cannot be used together",
		"conflicts with",
		"url points to a",
		"url does not include",
		"unsupported resource type",
		"unrecognized storefront url",
	}
	for _, indicator := range indicators {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}
