package pageshot

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-rod/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavigationFailed(t *testing.T) {
	const target = "http://127.0.0.1:1/"

	tests := []struct {
		name      string
		err       error
		reason    string
		isNavFail bool
	}{
		{name: "navigation error", err: &rod.ErrNavigation{Reason: "net::ERR_CONNECTION_REFUSED"}, reason: "net::ERR_CONNECTION_REFUSED", isNavFail: true},
		{name: "wrapped navigation error", err: fmt.Errorf("navigate: %w", &rod.ErrNavigation{Reason: "net::ERR_NAME_NOT_RESOLVED"}), reason: "net::ERR_NAME_NOT_RESOLVED", isNavFail: true},
		{name: "other error", err: errors.New("target closed")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, err := navigationFailed(target, tc.err)
			assert.Equal(t, StatusFail, status)

			var loadErr *LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, target, loadErr.URL)
			assert.ErrorIs(t, err, tc.err)

			var navErr *rod.ErrNavigation
			if tc.isNavFail {
				require.ErrorAs(t, err, &navErr)
				assert.Equal(t, tc.reason, navErr.Reason)
			} else {
				assert.False(t, errors.As(err, &navErr))
			}
		})
	}
}
