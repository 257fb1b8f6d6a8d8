package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// malformed input is rejected before reaching a service, and logged
func TestInputValidation(t *testing.T) {
	ta := newTestApp(t, nil)

	cases := []struct {
		method, target string
		body           any
		want           int
	}{
		{"POST", "/api/v1/auctions", map[string]any{"itemId": 0}, http.StatusBadRequest},
		{"POST", "/api/v1/auctions", map[string]any{"itemId": 73}, http.StatusBadRequest},
		{"POST", "/api/v1/auctions", map[string]any{"itemId": 1, "status": "completed"}, http.StatusBadRequest},
		{"POST", "/api/v1/auctions", "{oops", http.StatusBadRequest},
		{"PUT", "/api/v1/auctions/abc", map[string]any{}, http.StatusBadRequest},
		{"PUT", "/api/v1/auctions/abc", map[string]any{"status": "sold"}, http.StatusBadRequest},
		{"PUT", "/api/v1/auctions/abc", map[string]any{"status": "completed"}, http.StatusNotFound},
		{"PUT", "/api/v1/auctions/bad%20id", map[string]any{"status": "completed"}, http.StatusNotFound},
		{"GET", "/api/v1/auctions/unknown", nil, http.StatusNotFound},
		{"POST", "/api/v1/auctions/match/1/31", nil, http.StatusBadRequest},
		{"POST", "/api/v1/auctions/match/one/2", nil, http.StatusBadRequest},
		{"PUT", "/api/v1/auctions/active/sync", map[string]any{"id": "x y", "status": "active"}, http.StatusBadRequest},
	}

	for _, tc := range cases {
		var got int
		entries := captureLogs(t, func() {
			resp, _ := ta.do(t, tc.method, tc.target, tc.body)
			got = resp.StatusCode
		})
		require.Equal(t, tc.want, got, "%s %s", tc.method, tc.target)
		if tc.want == http.StatusBadRequest {
			e := findLog(entries, "validation.fail")
			if assert.NotNil(t, e, "%s %s", tc.method, tc.target) {
				assert.Equal(t, "warn", e.Level)
				assert.NotEmpty(t, e.ReqID)
			}
		}
	}
}
