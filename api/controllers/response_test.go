package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"addonhub-service/service/cms"
	"addonhub-service/service/distributed_lock"
	"addonhub-service/service/schematic"

	"github.com/stretchr/testify/assert"
)

func TestErrorResponse_错误分类(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("读取: %w", cms.ErrSchemaNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: price", schematic.ErrColumnNotFound), http.StatusNotFound},
		{cms.ErrRowNotFound, http.StatusNotFound},
		{cms.ErrConcurrentModification, http.StatusConflict},
		{fmt.Errorf("%w: 1:products", distributed_lock.ErrLockBusy), http.StatusConflict},
		{schematic.ErrTooManyColumns, http.StatusBadRequest},
		{fmt.Errorf("字段 price: %w", schematic.ErrTypeMismatch), http.StatusBadRequest},
		{cms.ErrImportLengthMismatch, http.StatusBadRequest},
		{errors.New("pq: connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		resp := ErrorResponse(tc.err)
		assert.Equal(t, tc.status, resp.httpStatus, tc.err.Error())
		assert.Equal(t, tc.status, resp.Status, tc.err.Error())
	}
}

func TestErrorResponse_内部错误不泄露细节(t *testing.T) {
	resp := ErrorResponse(errors.New("pq: password authentication failed for user admin"))
	assert.Equal(t, "服务器内部错误", resp.Msg)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	renderError(w, r, errors.New("secret dsn"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret")
}

func TestSuccessResponse(t *testing.T) {
	resp := SuccessResponse("ok", 1)
	assert.Equal(t, 0, resp.Status)
	assert.Equal(t, http.StatusOK, resp.httpStatus)
	assert.Equal(t, http.StatusCreated, CreatedResponse("ok", nil).httpStatus)
}
