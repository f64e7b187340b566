package arv

import "errors"

const (
	// SerializedSuccess is the status word meaning success. Its top byte is
	// not a valid code, so no VerifyError encodes to it, and it is not zero,
	// so power-on-reset storage never reads as success.
	SerializedSuccess uint32 = 0xFFFF_F000

	// LatchSuccess is ORed into a stored word by the caller once verification
	// has passed at least once. Defined codes never reach this bit.
	LatchSuccess uint32 = 0x8000_0000
)

// ErrCouldNotDeserialize is the error substituted for any word that is
// neither SerializedSuccess nor a decodable VerifyError.
var ErrCouldNotDeserialize = Internal(InternalCouldNotDeserialize, 0)

// Result is the outcome of AP RO verification: success or one VerifyError.
//
// The zero Result is a failure carrying the zero VerifyError; it encodes to 0.
type Result struct {
	ok  bool
	err VerifyError
}

// Success returns the successful Result.
func Success() Result {
	return Result{ok: true}
}

// Failure wraps a verification error.
func Failure(err VerifyError) Result {
	return Result{err: err}
}

// ResultOf converts a Go error into a Result. nil is success and a wrapped
// VerifyError is kept as is. Any other error cannot be represented in a
// status word and becomes ErrCouldNotDeserialize.
func ResultOf(err error) Result {
	if err == nil {
		return Success()
	}
	var ve VerifyError
	if errors.As(err, &ve) {
		return Failure(ve)
	}

	return Failure(ErrCouldNotDeserialize)
}

// ResultFromUint32 decodes a status word. Words that do not decode become
// ErrCouldNotDeserialize rather than failing.
func ResultFromUint32(v uint32) Result {
	if v == SerializedSuccess {
		return Success()
	}
	ve, err := ParseVerifyError(v)
	if err != nil {
		return Failure(ErrCouldNotDeserialize)
	}

	return Failure(ve)
}

// DecodeLatched decodes a stored word that may carry LatchSuccess and
// reports whether the latch was set. SerializedSuccess itself has the top bit
// set and is matched before the latch is removed.
func DecodeLatched(v uint32) (Result, bool) {
	if v == SerializedSuccess {
		return Success(), false
	}

	return ResultFromUint32(v &^ LatchSuccess), v&LatchSuccess != 0
}

// IsSuccess reports whether verification passed.
func (r Result) IsSuccess() bool {
	return r.ok
}

// Err returns nil on success and the VerifyError otherwise.
func (r Result) Err() error {
	if r.ok {
		return nil
	}

	return r.err
}

// VerifyError returns the failure, if any.
func (r Result) VerifyError() (VerifyError, bool) {
	return r.err, !r.ok
}

// Uint32 encodes the result as a status word.
func (r Result) Uint32() uint32 {
	if r.ok {
		return SerializedSuccess
	}

	return r.err.Uint32()
}

func (r Result) String() string {
	if r.ok {
		return "success"
	}

	return r.err.Error()
}
