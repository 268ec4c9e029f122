package apperr

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusMapping(t *testing.T) {
	cases := map[Kind]int{
		Validation:      http.StatusBadRequest,
		NotFound:        http.StatusNotFound,
		Unauthorized:    http.StatusUnauthorized,
		TokenExpired:    http.StatusUnauthorized,
		Forbidden:       http.StatusForbidden,
		Conflict:        http.StatusConflict,
		TooManyRequests: http.StatusTooManyRequests,
		Internal:        http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, Status(New(kind, "x")), "kind %s", kind)
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	base := Conflictf("seat %s already booked", "A1")
	wrapped := fmt.Errorf("book: %w", errors.Wrap(base, "tx"))

	assert.True(t, Is(wrapped, Conflict))
	assert.Equal(t, http.StatusConflict, Status(wrapped))
	assert.Equal(t, "seat A1 already booked", Message(wrapped))
}

func TestWrapHidesCause(t *testing.T) {
	err := Wrap(sql.ErrNoRows, NotFound, "show not found")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.Equal(t, "show not found", Message(err))
	assert.Nil(t, Wrap(nil, NotFound, "unused"))
}

func TestUnclassifiedIsInternal(t *testing.T) {
	err := errors.New("dial tcp: connection refused")
	assert.Equal(t, Internal, KindOf(err))
	assert.Equal(t, http.StatusInternalServerError, Status(err))
	assert.Equal(t, "Internal server error", Message(err))
}

func TestStackIsCaptured(t *testing.T) {
	err := Invalidf("bad input")
	assert.Contains(t, fmt.Sprintf("%+v", err), "apperr_test.go")
}

func TestDetailsAreKept(t *testing.T) {
	err := WithDetails(Conflict, "overlap", []uint64{7})
	e, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, []uint64{7}, e.Details)
}
