package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tbckr/domainintel/internal/apperr"
)

func TestSentinelsAreDistinct(t *testing.T) {
	all := []error{
		apperr.ErrInvalidInput,
		apperr.ErrRequestFailed,
		apperr.ErrLookupFailed,
		apperr.ErrNotFound,
		apperr.ErrStore,
	}
	for i, a := range all {
		for j, b := range all {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
		}
	}
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("%w: whois for %q: %w", apperr.ErrLookupFailed, "example.com", apperr.ErrNotFound)
	assert.ErrorIs(t, err, apperr.ErrLookupFailed)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NotErrorIs(t, err, apperr.ErrStore)
}
