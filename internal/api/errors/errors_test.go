package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestWriteError проверяет формат тела и статус для конструкторов ошибок.
func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		write      func(w http.ResponseWriter)
		wantStatus int
		wantCode   string
	}{
		{"validation", func(w http.ResponseWriter) { ValidationError(w, "bad") }, http.StatusBadRequest, CodeValidationError},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "missing") }, http.StatusNotFound, CodeNotFound},
		{"too large", func(w http.ResponseWriter) { FileTooLarge(w, "big") }, http.StatusRequestEntityTooLarge, CodeFileTooLarge},
		{"internal", func(w http.ResponseWriter) { InternalError(w, "oops") }, http.StatusInternalServerError, CodeInternalError},
		{"param", func(w http.ResponseWriter) { ParamError(w, nil, fmt.Errorf("record_id: invalid UUID")) }, http.StatusBadRequest, CodeValidationError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, ожидался %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, ожидался application/json", ct)
			}

			var body errorBody
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("ошибка декодирования: %v", err)
			}
			if body.Error.Code != tt.wantCode {
				t.Errorf("code = %q, ожидался %q", body.Error.Code, tt.wantCode)
			}
			if body.Error.Message == "" {
				t.Error("message не должен быть пустым")
			}
		})
	}
}
