package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestHTTPStatusCodeMapping(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeInvalidArgument, http.StatusUnprocessableEntity},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeJSON, http.StatusBadRequest},
		{ErrorCodeTooManyRequests, http.StatusTooManyRequests},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeUpstream, http.StatusBadGateway},
		{ErrorCodeTimeout, http.StatusGatewayTimeout},
		{ErrorCodeStorage, http.StatusInternalServerError},
		{ErrorCodePanic, http.StatusInternalServerError},
		{9999, http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatusCode(c.code); got != c.want {
			t.Fatalf("HTTPStatusCode(%v) = %d, want %d", c.code, got, c.want)
		}
	}
}

func TestCodeString(t *testing.T) {
	if ErrorCodeUpstream.String() != "upstream" {
		t.Fatalf("String() = %q", ErrorCodeUpstream.String())
	}
	if ErrorCode(500).String() != "unknown" {
		t.Fatalf("out of range code should render unknown")
	}
}

func TestWrapAndInspect(t *testing.T) {
	var nilErr *Error
	if nilErr.Error() != "<nil>" {
		t.Fatalf("nil render = %q", nilErr.Error())
	}

	root := stderrs.New("connection reset")
	err := WithOp(Wrap(root, ErrorCodeUpstream, "defillama protocols"), "collect")
	if got := err.Error(); got != "collect: defillama protocols: connection reset" {
		t.Fatalf("Error() = %q", got)
	}
	if !IsCode(err, ErrorCodeUpstream) {
		t.Fatalf("IsCode mismatch")
	}
	if Root(err) != root {
		t.Fatalf("Root did not reach the cause")
	}
	if HTTPStatus(fmt.Errorf("outer: %w", err)) != http.StatusBadGateway {
		t.Fatalf("status through fmt wrap mismatch")
	}

	withField := WithField(InvalidArgf("limit %d too large", 500), "limit")
	w := WireFrom(withField)
	if w.Field != "limit" || w.Code != ErrorCodeInvalidArgument || w.Message != "limit 500 too large" {
		t.Fatalf("WireFrom = %+v", w)
	}

	foreign := stderrs.New("plain")
	if WithField(foreign, "x") != foreign || WithOp(foreign, "y") != foreign {
		t.Fatalf("foreign errors should pass through")
	}
	if WireFrom(foreign).Code != ErrorCodeUnknown {
		t.Fatalf("foreign wire code")
	}
	if WrapIf(nil, ErrorCodeStorage, "x") != nil {
		t.Fatalf("WrapIf(nil) should be nil")
	}
	if status, wire := HTTP(nil); status != http.StatusOK || wire != (Wire{}) {
		t.Fatalf("HTTP(nil) = %d %+v", status, wire)
	}
}

func TestFromPG(t *testing.T) {
	if FromPG(nil, "x") != nil {
		t.Fatalf("FromPG(nil) should be nil")
	}
	if !IsCode(FromPG(&pgconn.PgError{Code: "57P03"}, "save"), ErrorCodeUnavailable) {
		t.Fatalf("cannot_connect_now should map to unavailable")
	}
	if !IsCode(FromPG(&pgconn.PgError{Code: "42P01"}, "save"), ErrorCodeStorage) {
		t.Fatalf("undefined_table should map to storage")
	}
}
