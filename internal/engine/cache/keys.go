package cache

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/thingsgate/internal/core/domain"
	"go.trai.ch/zerr"
)

// digestBits is the width of the key digest. Keys keep the top 48 bits of
// xxhash64, so two live keys of one operation collide with probability of
// roughly n²/2⁴⁹. A collision serves one call the other's result until the
// entry expires or is invalidated.
const digestBits = 48

// Key returns the cache key "<op>:<digest>" for an operation call.
// Parameter order never affects the key.
func Key(op string, params domain.Params) (string, error) {
	data, err := canonicalJSON(params)
	if err != nil {
		return "", err
	}
	sum := xxhash.Sum64(data) >> (64 - digestBits)
	return fmt.Sprintf("%s%0*x", Prefix(op), digestBits/4, sum), nil
}

// Prefix returns the key prefix shared by every call of op.
func Prefix(op string) string {
	return op + ":"
}

// canonicalJSON encodes params with object keys sorted at every depth.
// encoding/json sorts map keys, and nil is normalized to an empty object.
func canonicalJSON(params domain.Params) ([]byte, error) {
	if params == nil {
		params = domain.Params{}
	}
	data, err := json.Marshal(map[string]any(params))
	if err != nil {
		return nil, zerr.Wrap(domain.ErrParamsEncoding, err.Error())
	}
	return data, nil
}
