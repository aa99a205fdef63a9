package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorFormatting(t *testing.T) {
	assert.Equal(t, "[SEC_002] Backup key is not set", ErrKeyMissing().Error())

	wrapped := ErrIOFailure(errors.New("disk full"))
	assert.Equal(t, "[SYS_001] Filesystem operation failed: disk full", wrapped.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("cipher: message authentication failed")
	err := ErrIntegrity(cause)
	assert.ErrorIs(t, err, cause)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindPermissionDenied, KindOf(ErrPermissionDenied()))
	assert.Equal(t, KindKeyMissing, KindOf(ErrKeyMissing()))
	assert.Equal(t, KindNotFound, KindOf(ErrObjectNotFound("abc")))
	assert.Equal(t, KindIntegrity, KindOf(ErrStoreCorrupted(errors.New("x"))))
	assert.Equal(t, KindMalformedArchive, KindOf(ErrMalformedArchive(errors.New("x"))))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestKindOf_SeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("during import: %w", ErrIntegrity(errors.New("tag mismatch")))
	assert.Equal(t, KindIntegrity, KindOf(err))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Invalid key or corrupted file", UserMessage(ErrIntegrity(errors.New("gcm"))))
	assert.Equal(t, "Internal error", UserMessage(errors.New("stack trace details")))
}

func TestIntegrityMessageStaysAmbiguous(t *testing.T) {
	// Wrong key and corrupted file must be indistinguishable to the operator.
	wrongKey := ErrIntegrity(errors.New("cipher: message authentication failed"))
	corrupt := ErrIntegrity(errors.New("ciphertext too short"))
	assert.Equal(t, UserMessage(wrongKey), UserMessage(corrupt))
}
