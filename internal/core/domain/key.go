package domain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// CacheKey uniquely identifies one (fingerprint, operation, params)
// tuple. Format: {fingerprint}_{operation} or
// {fingerprint}_{operation}_{paramsDigest}. Fingerprints are hex and
// never contain an underscore, so the first underscore always separates
// the fingerprint from the scope.
type CacheKey string

// NewCacheKey builds the key for an operation against a project
// fingerprint. A nil params map yields no trailing digest segment; an
// empty-but-present map yields the digest of the empty pair set. Callers
// must be consistent about passing params for a given operation or keys
// will silently diverge.
func NewCacheKey(fp Fingerprint, operation string, params map[string]string) CacheKey {
	if params == nil {
		return CacheKey(fmt.Sprintf("%s_%s", fp, operation))
	}
	return CacheKey(fmt.Sprintf("%s_%s_%s", fp, operation, ParamsDigest(params)))
}

// ParamsDigest computes a short deterministic digest of a parameter
// bundle. Pairs are folded in sorted key order so map iteration order
// never leaks into the digest.
func ParamsDigest(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := xxhash.New()
	for _, k := range keys {
		_, _ = h.WriteString(k)
		_, _ = h.Write([]byte{'='})
		_, _ = h.WriteString(params[k])
		_, _ = h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// Fingerprint returns the fingerprint segment of the key.
func (k CacheKey) Fingerprint() Fingerprint {
	if i := strings.IndexByte(string(k), '_'); i >= 0 {
		return Fingerprint(k[:i])
	}
	return Fingerprint(k)
}

// Scope returns the operation segment of the key including the params
// digest when present. Two keys with equal scopes refer to the same
// operation and parameters under different project states.
func (k CacheKey) Scope() string {
	if i := strings.IndexByte(string(k), '_'); i >= 0 {
		return string(k[i+1:])
	}
	return ""
}

// Operation returns the operation segment of the key without the params
// digest. A trailing segment is treated as a params digest when it is
// exactly 16 lowercase hex characters, which the digest always is and an
// operation name should never be.
func (k CacheKey) Operation() string {
	scope := k.Scope()
	if i := strings.LastIndexByte(scope, '_'); i >= 0 && isParamsDigest(scope[i+1:]) {
		return scope[:i]
	}
	return scope
}

func isParamsDigest(s string) bool {
	if len(s) != 16 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// String returns the raw key.
func (k CacheKey) String() string {
	return string(k)
}
