package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"unique violation", &pq.Error{Code: pq.ErrorCode(pqUniqueViolation)}, ErrDuplicate},
		{"serialization failure", &pq.Error{Code: pq.ErrorCode(pqSerializationFailure)}, ErrConflict},
		{"deadlock", &pq.Error{Code: pq.ErrorCode(pqDeadlockDetected)}, ErrConflict},
		{"wrapped unique violation", fmt.Errorf("insert: %w", &pq.Error{Code: pq.ErrorCode(pqUniqueViolation)}), ErrDuplicate},
		{"other pq code passes through", &pq.Error{Code: "23502"}, nil},
		{"plain error passes through", errors.New("boom"), nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mapError(tc.in)
			if tc.want != nil {
				assert.ErrorIs(t, got, tc.want)
				return
			}
			assert.Equal(t, tc.in, got)
		})
	}
}
