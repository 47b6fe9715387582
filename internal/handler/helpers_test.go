package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tabletap/api/internal/auth"
	"github.com/tabletap/api/internal/database"
	"github.com/tabletap/api/internal/enum"
)

const testJWTSecret = "test-secret-for-handlers"

func testClaims(role string) *auth.Claims {
	return &auth.Claims{UserID: uuid.New(), Role: role}
}

func doAuthRequest(t *testing.T, router http.Handler, method, path string, body interface{}, claims *auth.Claims) *httptest.ResponseRecorder {
	t.Helper()

	token, err := auth.GenerateToken(testJWTSecret, claims.UserID, claims.Role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// decodeEnvelope unpacks the {"success", "data", "errors"} response shape.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) (bool, interface{}, []string) {
	t.Helper()

	var resp struct {
		Success bool        `json:"success"`
		Data    interface{} `json:"data"`
		Errors  []string    `json:"errors"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.Success, resp.Data, resp.Errors
}

func dataObject(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	_, data, _ := decodeEnvelope(t, rr)
	obj, ok := data.(map[string]interface{})
	if !ok {
		t.Fatalf("data is not an object: %v", data)
	}
	return obj
}

func dataArray(t *testing.T, rr *httptest.ResponseRecorder) []interface{} {
	t.Helper()
	_, data, _ := decodeEnvelope(t, rr)
	arr, ok := data.([]interface{})
	if !ok {
		t.Fatalf("data is not an array: %v", data)
	}
	return arr
}

func firstError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	_, _, errs := decodeEnvelope(t, rr)
	if len(errs) == 0 {
		t.Fatal("expected at least one error in response")
	}
	return errs[0]
}

func testNumeric(t *testing.T, s string) pgtype.Numeric {
	t.Helper()
	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		t.Fatalf("scan numeric %q: %v", s, err)
	}
	return n
}

func testDBOrder(clientID uuid.UUID) database.Order {
	return database.Order{
		ID:        uuid.New(),
		ClientID:  clientID,
		TableID:   uuid.New(),
		NbPeople:  2,
		CreatedAt: time.Now(),
	}
}

func testDBLine(t *testing.T, orderID uuid.UUID, status string) database.OrderLine {
	t.Helper()
	return database.OrderLine{
		ID:            uuid.New(),
		OrderID:       orderID,
		OrderableType: enum.OrderableItem,
		OrderableID:   uuid.New(),
		Quantity:      1,
		UnitPrice:     testNumeric(t, "12.50"),
		Status:        status,
		CreatedAt:     time.Now(),
	}
}
