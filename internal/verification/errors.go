package verification

import (
	"errors"

	dErrors "deedgate/pkg/domain-errors"
)

// User-facing messages. Each rejection has exactly one; none names the field that failed.
const (
	MsgNotRegistered           = "title hash not found on-chain; an admin must register it first"
	MsgRegistryInconsistent    = "registry entry missing for this hash; contact an admin"
	MsgIdentityMismatch        = "identity or details mismatch"
	MsgUnpublishedRegistration = "hash is registered but no on-chain listing exists yet"
	MsgDuplicateListing        = "this property is already listed"
	MsgUnavailable             = "verification backend unavailable; retry later"
)

func errNotRegistered() error {
	return dErrors.New(dErrors.CodeNotRegistered, MsgNotRegistered)
}

func errRegistryInconsistent() error {
	return dErrors.New(dErrors.CodeRegistryInconsistent, MsgRegistryInconsistent)
}

func errIdentityMismatch() error {
	return dErrors.New(dErrors.CodeIdentityMismatch, MsgIdentityMismatch)
}

func errUnpublishedRegistration() error {
	return dErrors.New(dErrors.CodeUnpublishedRegistration, MsgUnpublishedRegistration)
}

func errDuplicateListing() error {
	return dErrors.New(dErrors.CodeDuplicateListing, MsgDuplicateListing)
}

// errUnavailable wraps a store or ledger failure. The cause stays on the chain for logs
// but never reaches the response body.
func errUnavailable(cause error) error {
	return &dErrors.Error{Code: dErrors.CodeUnavailable, Message: MsgUnavailable, Err: cause}
}

// reasonOf returns the domain code used as the audit reason and metric label.
func reasonOf(err error) string {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return string(de.Code)
	}
	return string(dErrors.CodeInternal)
}
