package wikimap_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/wikimap"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := wikimap.Errorf(wikimap.ENOTFOUND, "version %q not found", "11.05")

	assert.Equal(t, wikimap.ENOTFOUND, wikimap.ErrorCode(err))
	assert.Equal(t, "version \"11.05\" not found", wikimap.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, wikimap.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, wikimap.ErrorMessage(nil))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("resolve: %w", wikimap.Errorf(wikimap.ERATELIMITED, "limited"))

	assert.Equal(t, wikimap.ERATELIMITED, wikimap.ErrorCode(err))
	assert.Equal(t, wikimap.EINTERNAL, wikimap.ErrorCode(errors.New("boom")))
}

func TestErrorStage(t *testing.T) {
	t.Parallel()

	t.Run("returns stage of wrapped stage error", func(t *testing.T) {
		t.Parallel()

		inner := wikimap.Errorf(wikimap.EHTTP, "HTTP 500")
		err := fmt.Errorf("read page: %w", &wikimap.StageError{Stage: wikimap.StageFetch, Err: inner})

		assert.Equal(t, wikimap.StageFetch, wikimap.ErrorStage(err))
		assert.Equal(t, wikimap.EHTTP, wikimap.ErrorCode(err))
		assert.Contains(t, err.Error(), "fetch: ")
	})

	t.Run("returns empty stage for plain errors", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, wikimap.ErrorStage(errors.New("boom")))
	})
}
