package httpserver

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"channelling/internal/platform/config"
)

func TestNew(t *testing.T) {
	h := http.NewServeMux()
	srv := New(config.HTTP{Addr: ":9999", WriteTimeout: 7 * time.Second}, h)

	assert.Equal(t, ":9999", srv.Addr)
	assert.Equal(t, 5*time.Second, srv.ReadHeaderTimeout)
	assert.Equal(t, 7*time.Second, srv.WriteTimeout)
	assert.Same(t, h, srv.Handler)
}
