package release

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrParseManifest is returned when manifest bytes are not a flat JSON object
// mapping version strings to URL strings.
var ErrParseManifest = errors.New("malformed version manifest")

// Manifest maps release versions to the absolute URLs of their packages.
//
// JSON object keys are unique, so a version can never carry two URLs; if the
// server publishes a duplicate key, the decoder keeps the last value.
type Manifest map[string]string

// ParseManifest decodes manifest bytes.
//
// The only accepted shape is a flat JSON object with string values, for
// example {"2.0.1": "https://host/pkg/2.0.1.zip"}. Anything else, including
// valid JSON of a different shape, fails with ErrParseManifest and no partial
// result. An empty object is a valid, empty manifest. URL values are taken
// verbatim; their well-formedness is checked by the fetcher before use.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest

	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseManifest, err)
	}

	// "null" decodes into a nil map without an error.
	if m == nil {
		return nil, fmt.Errorf("%w: document is %q, not an object", ErrParseManifest, bytes.TrimSpace(data))
	}

	return m, nil
}
