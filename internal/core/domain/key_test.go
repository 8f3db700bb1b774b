package domain_test

import (
	"strings"
	"testing"

	"go.trai.ch/stash/internal/core/domain"
)

const testFP = domain.Fingerprint("a1b2c3d4e5f60718293a4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7e8f90")

func TestNewCacheKey_NoParams(t *testing.T) {
	key := domain.NewCacheKey(testFP, "deps-report", nil)

	want := testFP.String() + "_deps-report"
	if key.String() != want {
		t.Errorf("expected key %q, got %q", want, key)
	}
}

func TestNewCacheKey_WithParams(t *testing.T) {
	key := domain.NewCacheKey(testFP, "deps-report", map[string]string{"mode": "full"})

	if !strings.HasPrefix(key.String(), testFP.String()+"_deps-report_") {
		t.Errorf("expected params segment appended, got %q", key)
	}
	// The params digest is 16 hex characters.
	segments := strings.Split(key.Scope(), "_")
	if len(segments) != 2 || len(segments[1]) != 16 {
		t.Errorf("expected 16-char params digest, got scope %q", key.Scope())
	}
}

func TestNewCacheKey_EmptyParamsDistinctFromNil(t *testing.T) {
	withEmpty := domain.NewCacheKey(testFP, "op", map[string]string{})
	without := domain.NewCacheKey(testFP, "op", nil)

	if withEmpty == without {
		t.Error("empty params map should produce a different key than nil params")
	}
}

func TestNewCacheKey_Uniqueness(t *testing.T) {
	base := domain.NewCacheKey(testFP, "op", map[string]string{"a": "1"})

	cases := map[string]domain.CacheKey{
		"different param value": domain.NewCacheKey(testFP, "op", map[string]string{"a": "2"}),
		"different param key":   domain.NewCacheKey(testFP, "op", map[string]string{"b": "1"}),
		"different operation":   domain.NewCacheKey(testFP, "op2", map[string]string{"a": "1"}),
		"different fingerprint": domain.NewCacheKey(domain.EmptyFingerprint, "op", map[string]string{"a": "1"}),
	}
	for name, key := range cases {
		if key == base {
			t.Errorf("%s: expected a distinct key, got %q twice", name, key)
		}
	}
}

func TestParamsDigest_OrderInsensitive(t *testing.T) {
	a := domain.ParamsDigest(map[string]string{"x": "1", "y": "2", "z": "3"})
	b := domain.ParamsDigest(map[string]string{"z": "3", "x": "1", "y": "2"})

	if a != b {
		t.Errorf("digest must not depend on map order: %q vs %q", a, b)
	}
}

func TestParamsDigest_SeparatorAmbiguity(t *testing.T) {
	// {"a": "1=b", "c": "2"} must not collide with {"a": "1", "b=c": "2"}.
	a := domain.ParamsDigest(map[string]string{"a": "1=b", "c": "2"})
	b := domain.ParamsDigest(map[string]string{"a": "1", "b=c": "2"})

	if a == b {
		t.Error("params digest collided across different bundles")
	}
}

func TestCacheKey_FingerprintAndScope(t *testing.T) {
	params := map[string]string{"depth": "3"}
	key := domain.NewCacheKey(testFP, "impact", params)

	if key.Fingerprint() != testFP {
		t.Errorf("expected fingerprint %q, got %q", testFP, key.Fingerprint())
	}
	wantScope := "impact_" + domain.ParamsDigest(params)
	if key.Scope() != wantScope {
		t.Errorf("expected scope %q, got %q", wantScope, key.Scope())
	}

	// Same operation and params under another fingerprint share the scope.
	other := domain.NewCacheKey(domain.EmptyFingerprint, "impact", params)
	if other.Scope() != key.Scope() {
		t.Errorf("scopes should match across fingerprints: %q vs %q", other.Scope(), key.Scope())
	}
}
