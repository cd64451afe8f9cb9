package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/canteen-pay/api/internal/auth"
	"github.com/canteen-pay/api/internal/database"
	"github.com/jackc/pgx/v5/pgtype"
)

const testSecret = "test-secret"

func testNumeric(t *testing.T, s string) pgtype.Numeric {
	t.Helper()
	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		t.Fatalf("scanning numeric %q: %v", s, err)
	}
	return n
}

func authToken(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, userID, role)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return token
}

// doRequest runs a request through the handler, attaching a Bearer
// token when one is given.
func doRequest(t *testing.T, h http.Handler, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}

func orderItemsPayload(t *testing.T, lines []database.OrderLine) []byte {
	t.Helper()
	payload, err := json.Marshal(lines)
	if err != nil {
		t.Fatalf("marshaling order lines: %v", err)
	}
	return payload
}
