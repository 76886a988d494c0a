package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		ping error
		want int
	}{
		{name: "ok", want: http.StatusOK},
		{name: "store down", ping: errors.New("connection refused"), want: http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := &Handler{Store: pingFunc(func(context.Context) error { return tc.ping }), Logger: zerolog.Nop()}
			r := gin.New()
			r.GET("/healthz", h.Healthz)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			require.Equal(t, tc.want, w.Code)
		})
	}
}
