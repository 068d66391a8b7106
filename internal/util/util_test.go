package util

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type mockExitStatusError struct {
	status int
	msg    string
}

func (e *mockExitStatusError) Error() string   { return e.msg }
func (e *mockExitStatusError) ExitStatus() int { return e.status }

func TestGetExitStatus(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedFound  bool
	}{
		{"exit status 0", &mockExitStatusError{status: 0, msg: "test"}, 0, true},
		{"exit status 1", &mockExitStatusError{status: 1, msg: "test"}, 1, true},
		{"exit status 42", &mockExitStatusError{status: 42, msg: "test"}, 42, true},
		{"plain error", errors.New("plain"), 1, false},
		{"wrapped exit status", fmt.Errorf("wrapper: %w", &mockExitStatusError{status: 2, msg: "inner"}), 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			status, found := GetExitStatus(tt.err)
			require.Equal(t, tt.expectedStatus, status)
			require.Equal(t, tt.expectedFound, found)
		})
	}
}
