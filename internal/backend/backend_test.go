package backend

import (
	"context"
	"errors"
	"testing"
)

// --- classification ---

func TestError_Transient(t *testing.T) {
	cases := []struct {
		kind ErrorKind
		want bool
	}{
		{KindTimeout, true},
		{KindRateLimited, true},
		{KindTransport, true},
		{KindUnavailable, false},
		{KindInvalidResponse, false},
	}
	for _, tc := range cases {
		err := Errorf(tc.kind, "boom")
		if got := err.Transient(); got != tc.want {
			t.Errorf("%s: Transient() = %v, want %v", tc.kind, got, tc.want)
		}
	}
}

func TestError_MessageFormat(t *testing.T) {
	err := Errorf(KindRateLimited, "slow down")
	if got := err.Error(); got != "rate_limited: slow down" {
		t.Fatalf("Error() = %q", got)
	}

	bare := &Error{Kind: KindTimeout}
	if got := bare.Error(); got != "timeout" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("underlying")
	err := Wrap(KindTransport, cause, "wrapped")
	if !errors.Is(err, cause) {
		t.Fatal("wrapped cause must survive errors.Is")
	}
}

// --- coercion ---

func TestAsError_PassesThrough(t *testing.T) {
	orig := Errorf(KindInvalidResponse, "bad json")
	if got := AsError(orig); got != orig {
		t.Fatal("existing *Error must pass through unchanged")
	}
}

func TestAsError_DeadlineBecomesTimeout(t *testing.T) {
	got := AsError(context.DeadlineExceeded)
	if got.Kind != KindTimeout {
		t.Fatalf("Kind = %s, want %s", got.Kind, KindTimeout)
	}
}

func TestAsError_UnknownBecomesTransport(t *testing.T) {
	got := AsError(errors.New("connection reset"))
	if got.Kind != KindTransport {
		t.Fatalf("Kind = %s, want %s", got.Kind, KindTransport)
	}
}
