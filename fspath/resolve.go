package fspath

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

var ErrBadEscape = errors.New("invalid percent escape in target")
var ErrTraversal = errors.New("target escapes the serve root")
var ErrNotFound = errors.New("no such file or directory under root")

// A Resolved path has been proven to lie within the serve root.
type Resolved struct {
	Path  string
	IsDir bool
}

// A Resolver maps raw request targets onto the filesystem below
// a fixed root directory.
type Resolver struct {
	root string
}

func NewResolver(root string) (*Resolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving root %q", root)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.Wrapf(err, "stating root %q", abs)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("root %q is not a directory", abs)
	}
	return &Resolver{root: abs}, nil
}

func (r *Resolver) Root() string {
	return r.root
}

// Resolve percent-decodes the target, normalizes `.` and `..`
// segments lexically, and stats the result. Normalization never
// consults the filesystem, so a symlink swapped in mid-request
// cannot widen what the lexical check already approved. Any `..`
// that would climb above the root fails with ErrTraversal rather
// than being clamped.
func (r *Resolver) Resolve(target string) (Resolved, error) {
	// The query is ignored by this server.
	if i := strings.IndexByte(target, '?'); i >= 0 {
		target = target[:i]
	}

	decoded, err := url.PathUnescape(target)
	if err != nil {
		return Resolved{}, ErrBadEscape
	}

	rel, err := normalize(decoded)
	if err != nil {
		return Resolved{}, err
	}

	abs := filepath.Join(r.root, filepath.FromSlash(rel))
	if abs != r.root && !strings.HasPrefix(abs, r.root+string(filepath.Separator)) {
		return Resolved{}, ErrTraversal
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return Resolved{}, ErrNotFound
		}
		return Resolved{}, errors.Wrapf(err, "stating %q", abs)
	}
	return Resolved{Path: abs, IsDir: info.IsDir()}, nil
}

// normalize resolves dot segments against an empty stack. The
// target is always taken as root-relative: a leading slash names
// the root itself, never the host filesystem.
func normalize(p string) (string, error) {
	var stack []string
	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(stack) == 0 {
				return "", ErrTraversal
			}
			stack = stack[:len(stack)-1]
		default:
			if strings.ContainsRune(seg, '\x00') {
				return "", ErrBadEscape
			}
			stack = append(stack, seg)
		}
	}
	return strings.Join(stack, "/"), nil
}
