package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ProvisionErrorBadInput        = "PROVISION_BAD_INPUT"
	ProvisionErrorNotFound        = "PROVISION_NOT_FOUND"
	ProvisionErrorBindingMissing  = "PROVISION_BINDING_MISSING"
	ProvisionErrorUnauthorized    = "PROVISION_UNAUTHORIZED"
	ProvisionErrorForbidden       = "PROVISION_FORBIDDEN"
	ProvisionErrorRateLimited     = "PROVISION_RATE_LIMITED"
	ProvisionErrorOperationFailed = "PROVISION_OPERATION_FAILED"
	ProvisionErrorRemoteFailure   = "PROVISION_REMOTE_FAILURE"
	ProvisionErrorRolledBack      = "PROVISION_ROLLED_BACK"
	ProvisionErrorInternal        = "PROVISION_INTERNAL_ERROR"
)

func provisionErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureProvisionErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "binding") && strings.Contains(msg, "not"):
		return newProvisionError(err.Error(), goerrors.CategoryNotFound, ProvisionErrorBindingMissing)
	case strings.Contains(msg, "token"), strings.Contains(msg, "access key"):
		return newProvisionError(err.Error(), goerrors.CategoryAuth, ProvisionErrorUnauthorized)
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "throttl"):
		return newProvisionError(err.Error(), goerrors.CategoryRateLimit, ProvisionErrorRateLimited)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return newProvisionError(err.Error(), goerrors.CategoryBadInput, ProvisionErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureProvisionErrorEnvelope(mapped)
}

func newProvisionError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureProvisionErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureProvisionErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = provisionHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultProvisionTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultProvisionTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ProvisionErrorBadInput
	case goerrors.CategoryNotFound:
		return ProvisionErrorNotFound
	case goerrors.CategoryAuth:
		return ProvisionErrorUnauthorized
	case goerrors.CategoryAuthz:
		return ProvisionErrorForbidden
	case goerrors.CategoryRateLimit:
		return ProvisionErrorRateLimited
	case goerrors.CategoryOperation:
		return ProvisionErrorOperationFailed
	case goerrors.CategoryExternal:
		return ProvisionErrorRemoteFailure
	default:
		return ProvisionErrorInternal
	}
}

func provisionHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
