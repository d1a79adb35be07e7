package s3store

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
)

// The rest of Client talks to a live S3 endpoint and isn't covered here;
// isNotFound is the one piece of pure error-classification logic it has.

func TestIsNotFound_NoSuchKey(t *testing.T) {
	assert.True(t, isNotFound(&types.NoSuchKey{}))
}

func TestIsNotFound_NotFound(t *testing.T) {
	assert.True(t, isNotFound(&types.NotFound{}))
}

func TestIsNotFound_OtherErrorsAreNotTreatedAsMissing(t *testing.T) {
	assert.False(t, isNotFound(errors.New("access denied")))
}

func TestIsNotFound_WrappedError(t *testing.T) {
	err := fmtErrorf(&types.NoSuchKey{})
	assert.True(t, isNotFound(err))
}

func fmtErrorf(inner error) error {
	return wrappedError{inner: inner}
}

type wrappedError struct{ inner error }

func (w wrappedError) Error() string { return "wrapped: " + w.inner.Error() }
func (w wrappedError) Unwrap() error { return w.inner }
