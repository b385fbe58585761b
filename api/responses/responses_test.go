package responses

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/organictrace/organictrace-backend/pkg/errors"
	"github.com/organictrace/organictrace-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestWriteSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]string{"hello": "world"})

	if rec.Code != 200 {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var body struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Data["hello"] != "world" {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestWriteErrorMapsCodeToStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{pkgerrors.New(pkgerrors.CodeProfileRequired, "no profile"), 401, "PROFILE_REQUIRED"},
		{pkgerrors.New(pkgerrors.CodeNotOwner, "not yours"), 403, "NOT_OWNER"},
		{pkgerrors.New(pkgerrors.CodeNotFound, "gone"), 404, "NOT_FOUND"},
		{pkgerrors.New(pkgerrors.CodeSKUConflict, "dup"), 409, "SKU_CONFLICT"},
		{pkgerrors.New(pkgerrors.CodeApproveFailed, "stale"), 422, "APPROVE_FAILED"},
		{errors.New("raw failure"), 500, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		WriteError(context.Background(), testLogger(), rec, tc.err)

		if rec.Code != tc.status {
			t.Fatalf("%s: expected status %d, got %d", tc.code, tc.status, rec.Code)
		}
		var body struct {
			Success bool   `json:"success"`
			Code    string `json:"code"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Success {
			t.Fatalf("error envelope must set success=false")
		}
		if body.Code != tc.code {
			t.Fatalf("expected code %s, got %s", tc.code, body.Code)
		}
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), testLogger(), rec,
		pkgerrors.Wrap(pkgerrors.CodeInternal, errors.New("pq: secret table blew up"), "boom"))

	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "internal server error" {
		t.Fatalf("internal failure leaked: %q", body.Message)
	}
}

func TestWriteErrorCarriesFieldAndHint(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), testLogger(), rec,
		pkgerrors.New(pkgerrors.CodeWalletRequired, "walletAddress is required").
			WithField("walletAddress").
			WithHint("include walletAddress in the request body"))

	var body struct {
		Field string `json:"field"`
		Hint  string `json:"hint"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Field != "walletAddress" || body.Hint == "" {
		t.Fatalf("field/hint missing: %s", rec.Body.String())
	}
}
