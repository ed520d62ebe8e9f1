package xslpkg

import (
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/midbel/xslt3c/resolve"
	"github.com/midbel/xslt3c/xerr"
	"golang.org/x/sync/singleflight"
)

// LocationMap is the pre-populated package-name -> source-URI registry
// spec.md §6 describes. Unknown names are resolved by treating the
// name itself as a URI (must have a scheme).
type LocationMap map[string]string

// Locate resolves name to a source URI: the registered location if one
// exists, otherwise name itself if it parses as a URI with a scheme.
func (m LocationMap) Locate(name string) (string, error) {
	if uri, ok := m[name]; ok {
		return uri, nil
	}
	u, err := url.Parse(name)
	if err != nil || u.Scheme == "" {
		return "", xerr.New(xerr.XTSE3020, "package %s: no registered location and not a URI", name)
	}
	return name, nil
}

// Compiler is the out-of-scope collaborator PackageResolver delegates
// actual compilation to, matching spec.md §4.9's "Delegates to an
// injected StylesheetCompiler.compilePackage".
type Compiler interface {
	CompilePackage(source string, baseURI string) (*Package, error)
}

// PackageResolver implements spec.md §4.9: a two-level cache
// (name -> version -> *Package) safe for concurrent use, backed by a
// golang.org/x/sync/singleflight.Group so the "at-most-once compilation
// per (name, version) under contention" requirement (spec.md §5, §8) is
// a direct singleflight.Do call rather than hand-rolled locking -- the
// compute-if-absent discipline Design Notes §9 asks for, grounded on
// the teacher's go.mod indirect dependency on golang.org/x/sync.
type PackageResolver struct {
	Locations LocationMap
	Compiler  Compiler

	mu      sync.RWMutex
	cache   map[string]map[string]*Package // name -> version -> package
	group   singleflight.Group
}

// NewPackageResolver builds a resolver delegating compilation to
// compiler, with an optional pre-populated location map (nil is fine:
// every name is then resolved as a bare URI).
func NewPackageResolver(compiler Compiler, locations LocationMap) *PackageResolver {
	if locations == nil {
		locations = LocationMap{}
	}
	return &PackageResolver{
		Locations: locations,
		Compiler:  compiler,
		cache:     make(map[string]map[string]*Package),
	}
}

// Resolve resolves name against versionConstraint, returning a cached
// package if one already satisfies the constraint, otherwise compiling
// it exactly once even under concurrent callers (spec.md §8: "resolve
// under concurrent callers for the same (name, version) returns the
// identical compiled package reference").
func (r *PackageResolver) Resolve(name, versionConstraint, baseURI string, loadSet *resolve.LoadSet) (*Package, error) {
	if pkg, ok := r.lookupCached(name, versionConstraint); ok {
		return pkg, nil
	}

	leave, err := loadSet.Enter("urn:xslpkg:" + name + "#" + versionConstraint)
	if err != nil {
		return nil, xerr.New(xerr.XTSE3015, "circular package reference: %s", name)
	}
	defer leave()

	key := name + "#" + versionConstraint
	v, err, _ := r.group.Do(key, func() (any, error) {
		if pkg, ok := r.lookupCached(name, versionConstraint); ok {
			return pkg, nil
		}
		source, err := r.Locations.Locate(name)
		if err != nil {
			return nil, err
		}
		pkg, err := r.Compiler.CompilePackage(source, baseURI)
		if err != nil {
			return nil, xerr.Wrap(xerr.XTSE3020, err, "package %s: compilation failed", name)
		}
		r.store(name, pkg.Version, pkg)
		return pkg, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Package), nil
}

func (r *PackageResolver) lookupCached(name, versionConstraint string) (*Package, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	versions, ok := r.cache[name]
	if !ok {
		return nil, false
	}
	var best *Package
	for v, pkg := range versions {
		if !matchVersion(versionConstraint, v) {
			continue
		}
		if best == nil || compareVersions(v, best.Version) > 0 {
			best = pkg
		}
	}
	return best, best != nil
}

func (r *PackageResolver) store(name, version string, pkg *Package) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cache[name] == nil {
		r.cache[name] = make(map[string]*Package)
	}
	r.cache[name][version] = pkg
}

// matchVersion implements spec.md §4.9's version-matching rules:
// "*" matches any version; "prefix.*" matches versions starting with
// "prefix."; "min-max" (dash-separated) matches versions in [min, max]
// inclusive; otherwise exact match.
func matchVersion(constraint, version string) bool {
	switch {
	case constraint == "*":
		return true
	case strings.HasSuffix(constraint, ".*"):
		return strings.HasPrefix(version, strings.TrimSuffix(constraint, "*"))
	case strings.Count(constraint, "-") == 1 && looksLikeRange(constraint):
		lo, hi, _ := strings.Cut(constraint, "-")
		return compareVersions(version, lo) >= 0 && compareVersions(version, hi) <= 0
	default:
		return constraint == version
	}
}

// looksLikeRange guards against misreading a single dotted version like
// "1.2-beta" as a range: a genuine min-max range has two syntactically
// version-shaped sides.
func looksLikeRange(constraint string) bool {
	lo, hi, ok := strings.Cut(constraint, "-")
	if !ok || lo == "" || hi == "" {
		return false
	}
	return isVersionShaped(lo) && isVersionShaped(hi)
}

func isVersionShaped(s string) bool {
	for _, part := range strings.Split(s, ".") {
		if part == "" || part[0] < '0' || part[0] > '9' {
			return false
		}
	}
	return true
}

// compareVersions implements spec.md §4.9's version-comparison rule:
// split on ".", numeric-parse each segment (leading digits only,
// non-numeric suffixes dropped, missing segments treated as 0), compare
// lexicographically by integer value. It returns -1, 0 or 1, forming a
// total order: compareVersions(a,b) == -compareVersions(b,a).
func compareVersions(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		var av, bv int
		if i < len(as) {
			av = leadingInt(as[i])
		}
		if i < len(bs) {
			bv = leadingInt(bs[i])
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

// leadingInt parses the leading run of ASCII digits in s, dropping any
// non-numeric suffix; a segment with no leading digits parses as 0.
func leadingInt(s string) int {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

