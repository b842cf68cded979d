package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/fincontrol-be/internal/models"
	"github.com/hongminglow/fincontrol-be/internal/storage"
	"github.com/hongminglow/fincontrol-be/internal/storage/memory"
)

func TestWriteErrorWithoutLogger(t *testing.T) {
	log := orNop(nil)
	require.NotNil(t, log)

	cases := []struct {
		err    error
		status int
	}{
		{errors.New("disk on fire"), http.StatusInternalServerError},
		{fmt.Errorf("load: %w", storage.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("save: %w", storage.ErrAlreadyExists), http.StatusConflict},
		{fmt.Errorf("%w: amount", models.ErrInvalid), http.StatusBadRequest},
		{internal("failed to hash password", errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeError(rec, log, tc.err, "user_id", "u1")
		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
	}
}

func TestConstructorsAcceptNilLogger(t *testing.T) {
	store := memory.NewStore()
	assert.NotNil(t, NewLedgerHandler(store, passThrough, nil).log)
	assert.NotNil(t, NewProfileHandler(store, "", passThrough, nil).log)
	assert.NotNil(t, NewAdminHandler(store, store, "", passThrough, nil).log)
	assert.NotNil(t, NewExportHandler(stubExporter{}, passThrough, nil).log)
	assert.NotNil(t, NewAuthHandler(store, store, nil, "", nil).log)
}

func passThrough(next http.Handler) http.Handler { return next }
