package release

import "sort"

// Release is one installable version together with its package URL.
type Release struct {
	// Version is the manifest key, for example "2.0.1".
	Version string
	// URL is the absolute address of the version's package archive.
	URL string
}

// Plan is the ordered result of matching a manifest against the version that
// is currently installed.
type Plan struct {
	// Current is the installed version the plan was built against.
	Current string
	// Pending lists the releases newer than Current in ascending version
	// order, so applying them front to back never skips an intermediate step.
	Pending []Release
	// Latest is the highest pending version, or "" when Pending is empty.
	Latest string
}

// BuildPlan filters m down to the versions newer than current and orders them.
//
// With strict set, current and every manifest key must parse as a semantic
// version or the plan fails with ErrVersionSyntax. Otherwise malformed
// versions participate in the lenient order of Compare, which ranks them
// below every well-formed version and therefore never above current.
func BuildPlan(m Manifest, current string, strict bool) (*Plan, error) {
	if strict {
		if _, err := ParseVersion(current); err != nil {
			return nil, err
		}

		for v := range m {
			if _, err := ParseVersion(v); err != nil {
				return nil, err
			}
		}
	}

	pending := make([]Release, 0, len(m))

	for v, u := range m {
		if Compare(v, current) > 0 {
			pending = append(pending, Release{Version: v, URL: u})
		}
	}

	sort.Slice(pending, func(i, j int) bool {
		return Compare(pending[i].Version, pending[j].Version) < 0
	})

	plan := &Plan{
		Current: current,
		Pending: pending,
	}

	if len(pending) > 0 {
		plan.Latest = pending[len(pending)-1].Version
	}

	return plan, nil
}

// HasPending reports whether the plan contains at least one version to apply.
func (p *Plan) HasPending() bool {
	return p != nil && len(p.Pending) > 0
}

// Versions returns the pending version strings in plan order.
func (p *Plan) Versions() []string {
	if p == nil {
		return nil
	}

	versions := make([]string, 0, len(p.Pending))
	for _, r := range p.Pending {
		versions = append(versions, r.Version)
	}

	return versions
}
