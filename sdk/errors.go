package sdk

import (
	"errors"
	"fmt"

	sdkproto "github.com/tarmac-project/protobuf-go/sdk"
)

var (
	// ErrHostCall indicates that a waPC host invocation failed.
	ErrHostCall = errors.New("host call failed")

	// ErrHostResponseInvalid signals that the host returned an invalid or unexpected payload.
	ErrHostResponseInvalid = errors.New("host response is invalid or unexpected")

	// ErrHostError means the host completed the call but reported a failure status.
	ErrHostError = errors.New("host returned an error status")
)

// Host status codes carried in sdk.Status.
const (
	StatusOK       = int32(200)
	StatusPartial  = int32(206)
	StatusBadInput = int32(400)
	StatusMissing  = int32(404)
	StatusError    = int32(500)
)

// CheckStatus maps a host status to nil or an error built from the sentinels
// above. A non-nil callErr is joined into the result.
func CheckStatus(status *sdkproto.Status, callErr error) error {
	if status == nil {
		if callErr != nil {
			return errors.Join(ErrHostCall, callErr, ErrHostResponseInvalid)
		}
		return ErrHostResponseInvalid
	}

	code := status.GetCode()
	switch code {
	case StatusOK, StatusPartial:
		return nil
	case StatusBadInput, StatusMissing, StatusError:
		detail := fmt.Sprintf("host status %d", code)
		if msg := status.GetStatus(); msg != "" {
			detail = fmt.Sprintf("%s: %s", detail, msg)
		}
		if callErr != nil {
			return errors.Join(ErrHostCall, callErr, ErrHostError, errors.New(detail))
		}
		return errors.Join(ErrHostError, errors.New(detail))
	default:
		statusErr := fmt.Errorf("unexpected host status code %d", code)
		if callErr != nil {
			return errors.Join(ErrHostCall, callErr, ErrHostResponseInvalid, statusErr)
		}
		return errors.Join(ErrHostResponseInvalid, statusErr)
	}
}
