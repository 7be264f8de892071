package release

import (
	"errors"
	"fmt"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// ErrVersionSyntax is returned by ParseVersion for strings that are not
// well-formed semantic versions.
var ErrVersionSyntax = errors.New("malformed version")

// ParseVersion parses s as a semantic version.
// Unlike Compare, it rejects malformed input instead of ranking it low.
func ParseVersion(s string) (*goversion.Version, error) {
	v, err := goversion.NewVersion(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrVersionSyntax, s)
	}

	return v, nil
}

// Compare orders two version strings and returns a negative number if a < b,
// zero if they denote the same version, and a positive number if a > b.
//
// The order is total and lenient: a string that does not parse as a semantic
// version ranks below every well-formed version, and two malformed strings
// fall back to byte-wise comparison so the order stays deterministic.
// Well-formed versions compare semantically, so "1.0" and "1.0.0" are equal.
func Compare(a, b string) int {
	av, aErr := goversion.NewVersion(a)
	bv, bErr := goversion.NewVersion(b)

	switch {
	case aErr != nil && bErr != nil:
		return strings.Compare(a, b)
	case aErr != nil:
		return -1
	case bErr != nil:
		return 1
	default:
		return av.Compare(bv)
	}
}
