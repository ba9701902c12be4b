package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func createTransactionRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/households/1/transactions", strings.NewReader(body))
	return req.WithContext(context.WithValue(req.Context(), "household_id", int64(1)))
}

// New transactions must come in unshared; sharing is decided by the
// rule engine or a later manual edit.
func TestCreateTransactionRejectsSharingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "is_shared_expense set",
			body: `{"account_id":"7b5f2f60-6a1e-4f6a-9f20-1b6a2c3d4e5f","amount":"-45.20","category":"groceries","date":"2026-08-01","is_shared_expense":true}`,
		},
		{
			name: "split_details set",
			body: `{"account_id":"7b5f2f60-6a1e-4f6a-9f20-1b6a2c3d4e5f","amount":"-45.20","category":"groceries","date":"2026-08-01","split_details":{"1":"22.60","2":"22.60"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			CreateTransaction(nil)(w, createTransactionRequest(tt.body))
			if w.Code != http.StatusBadRequest {
				t.Errorf("CreateTransaction status = %d, want %d", w.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestCreateTransactionRejectsBadDate(t *testing.T) {
	w := httptest.NewRecorder()
	body := `{"account_id":"7b5f2f60-6a1e-4f6a-9f20-1b6a2c3d4e5f","amount":"-45.20","category":"groceries","date":"01/08/2026"}`
	CreateTransaction(nil)(w, createTransactionRequest(body))
	if w.Code != http.StatusBadRequest {
		t.Errorf("CreateTransaction status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
