package errors

import (
	"net/http"
)

// Reasons surfaced to callers. They are stable and can be matched with Is.
const (
	ReasonInvalidRequest       = "invalid_request"
	ReasonInvalidLevel         = "invalid_level"
	ReasonMissingAssignees     = "missing_assignees"
	ReasonUnauthorized         = "unauthorized"
	ReasonForbidden            = "forbidden"
	ReasonNotHolder            = "not_holder"
	ReasonAlreadyLockedByOther = "already_locked_by_other"
	ReasonLockedByOther        = "locked_by_other"
	ReasonNotLocked            = "not_locked"
	ReasonNotFound             = "not_found"
)

func BadRequest() ErrorEnricher   { return WithCode(http.StatusBadRequest) }
func Unauthorized() ErrorEnricher { return WithCode(http.StatusUnauthorized) }
func Forbidden() ErrorEnricher    { return WithCode(http.StatusForbidden) }
func NotFound() ErrorEnricher     { return WithCode(http.StatusNotFound) }
func Conflict() ErrorEnricher     { return WithCode(http.StatusConflict) }

// Validation tags a caller-supplied data error.
func Validation(reason string) ErrorEnricher {
	return chain(BadRequest(), WithReason(reason))
}

// Permission tags an error where the principal lacks the required rights.
func Permission(reason string) ErrorEnricher {
	if reason == ReasonUnauthorized {
		return chain(Unauthorized(), WithReason(reason))
	}
	return chain(Forbidden(), WithReason(reason))
}

// Locked tags an error where another principal holds the resource, or where
// the lock the operation needs is absent.
func Locked(reason string) ErrorEnricher {
	return chain(Conflict(), WithReason(reason))
}

// Missing tags a not found error.
func Missing() ErrorEnricher {
	return chain(NotFound(), WithReason(ReasonNotFound))
}

func chain(fs ...ErrorEnricher) ErrorEnricher {
	return func(err error) error {
		for _, f := range fs {
			err = f(err)
		}
		return err
	}
}
