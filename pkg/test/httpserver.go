package test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// HTTPServerWithHandlers returns a test server that serves each incoming
// request with the next handler in the list. The test fails when the server
// receives more requests than there are handlers, or when handlers are left
// over once the test completes.
func HTTPServerWithHandlers(t *testing.T, handlers []http.HandlerFunc) *httptest.Server {
	idx := 0
	t.Cleanup(func() {
		assert.Equal(t, len(handlers), idx, "number of requests does not match number of handlers")
	})
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if idx >= len(handlers) {
			t.Fatalf("unexpected request, add missing handler func: %v", r)
		}
		handlers[idx](w, r)
		idx++
	}))
}
