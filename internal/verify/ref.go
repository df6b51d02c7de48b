package verify

import (
	"strings"

	donateerr "github.com/ethpkg/donate/pkg/errors"
)

// DefaultRegistry is assumed when a reference names no registry.
const DefaultRegistry = "npm"

// PackageRef identifies a package in a registry.
type PackageRef struct {
	Registry string
	Scope    string // without the leading "@", empty when unscoped
	Name     string
}

// ParsePackageRef parses "name", "@scope/name", and either form prefixed by a
// registry segment, e.g. "npm/@scope/name". A leading slash is ignored so
// URL paths can be passed verbatim.
func ParsePackageRef(s string) (PackageRef, error) {
	invalid := donateerr.WithDetails(donateerr.ErrInvalidInput, map[string]string{"package": s})

	parts := strings.Split(strings.Trim(strings.TrimSpace(s), "/"), "/")
	for _, p := range parts {
		if p == "" {
			return PackageRef{}, invalid
		}
	}

	ref := PackageRef{Registry: DefaultRegistry}
	if len(parts) >= 2 && !strings.HasPrefix(parts[0], "@") {
		ref.Registry = strings.ToLower(parts[0])
		parts = parts[1:]
	}

	switch {
	case len(parts) == 1 && !strings.HasPrefix(parts[0], "@"):
		ref.Name = parts[0]
	case len(parts) == 2 && strings.HasPrefix(parts[0], "@") && len(parts[0]) > 1 && !strings.HasPrefix(parts[1], "@"):
		ref.Scope = parts[0][1:]
		ref.Name = parts[1]
	default:
		return PackageRef{}, invalid
	}
	return ref, nil
}

// PackageName returns the registry-local name, e.g. "@scope/name".
func (r PackageRef) PackageName() string {
	if r.Scope == "" {
		return r.Name
	}
	return "@" + r.Scope + "/" + r.Name
}

// String returns the fully qualified reference, e.g. "npm/@scope/name".
func (r PackageRef) String() string {
	return r.Registry + "/" + r.PackageName()
}
