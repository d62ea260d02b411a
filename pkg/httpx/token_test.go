package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		header string
		want   string
		err    bool
	}{
		{name: "cookie only", cookie: "from-cookie", want: "from-cookie"},
		{name: "header only", header: "Bearer from-header", want: "from-header"},
		{name: "cookie wins over header", cookie: "from-cookie", header: "Bearer from-header", want: "from-cookie"},
		{name: "nothing", err: true},
		{name: "wrong scheme", header: "Basic abc", err: true},
		{name: "lowercase scheme", header: "bearer abc", err: true},
		{name: "empty bearer", header: "Bearer ", err: true},
		{name: "only the prefix is stripped", header: "Bearer  padded", want: " padded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: "access_token", Value: tt.cookie})
			}
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			got, err := httpx.ExtractToken(r, "access_token")
			if tt.err {
				require.ErrorIs(t, err, httpx.ErrNoToken)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mw("a"), mw("b"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"a", "b", "handler"}, order)
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Name string `json:"name"`
	}

	decode := func(s string) error {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(s))
		var b body
		return httpx.DecodeJSON(httptest.NewRecorder(), r, &b)
	}

	require.NoError(t, decode(`{"name":"alice"}`))
	require.Error(t, decode(`{"name":"alice","extra":1}`))
	require.Error(t, decode(`{"name":"alice"}{}`))
	require.Error(t, decode(`not json`))
}
