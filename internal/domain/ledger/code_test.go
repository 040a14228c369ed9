package ledger

import (
	"strings"
	"testing"
)

func TestNewRedemptionCode_Shape(t *testing.T) {
	code := NewRedemptionCode()

	parts := strings.Split(code, "-")
	if len(parts) != 3 {
		t.Fatalf("expected PR-<ts>-<rand> shape, got %q", code)
	}
	if parts[0] != "PR" {
		t.Fatalf("expected PR prefix, got %q", parts[0])
	}
	if len(parts[2]) != 6 {
		t.Fatalf("expected 6-char suffix, got %q", parts[2])
	}
	if code != strings.ToUpper(code) {
		t.Fatalf("expected uppercase code, got %q", code)
	}
}

func TestNewRedemptionCode_Distinct(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		code := NewRedemptionCode()
		if _, dup := seen[code]; dup {
			t.Fatalf("duplicate redemption code generated: %s", code)
		}
		seen[code] = struct{}{}
	}
}
