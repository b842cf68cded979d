package respond

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestJSONWritesEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, "created", map[string]string{"id": "x"})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
	var env struct {
		Code    int               `json:"code"`
		Message string            `json:"message"`
		Data    map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Code != http.StatusCreated || env.Message != "created" || env.Data["id"] != "x" {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

func TestErrorOmitsData(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusBadRequest, "bad")
	if strings.Contains(rec.Body.String(), "data") {
		t.Fatalf("error envelope carries data: %s", rec.Body.String())
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
	var v map[string]any
	if err := Decode(req, &v); err == nil {
		t.Fatal("expected error")
	}
}
