package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func TestAddonContext(t *testing.T) {
	var got int64
	r := chi.NewRouter()
	r.With(AddonContext).Get("/addons/{addon_id}", func(w http.ResponseWriter, r *http.Request) {
		got, _ = AddonIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/addons/42", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, int64(42), got)

	for _, bad := range []string{"abc", "0", "-3"} {
		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/addons/"+bad, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
		assert.Contains(t, w.Body.String(), "无效的插件ID")
	}
}

func TestAddonIDFromContext_未设置(t *testing.T) {
	_, ok := AddonIDFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}
