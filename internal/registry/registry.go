package registry

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"github.com/naclports/portlist/internal/logger"
)

const (
	// PortsDir is the directory, relative to the tree root, holding one
	// subdirectory per port
	PortsDir = "ports"
	// InfoFilename is the per-port metadata file
	InfoFilename = "pkg_info"
)

var (
	// ErrPortsDirNotFound indicates the tree has no ports directory
	ErrPortsDirNotFound = errors.New("ports directory not found")
	// ErrPackageNotFound indicates no port with the requested name exists
	ErrPackageNotFound = errors.New("package not found")
	// ErrDuplicatePackage indicates two pkg_info files declare the same NAME
	ErrDuplicatePackage = errors.New("duplicate package name")
	// ErrInvalidPkgInfo indicates a pkg_info file could not be parsed
	ErrInvalidPkgInfo = errors.New("invalid pkg_info")
)

// Lister enumerates ports. The report generator only depends on this.
type Lister interface {
	List() ([]*Package, error)
}

// Registry is a read-only snapshot of every port under a naclports tree
type Registry struct {
	fs       afero.Fs
	root     string
	packages []*Package
	byName   map[string]*Package
}

// New loads every pkg_info under <root>/ports. The walk is lexical, which
// fixes the enumeration order returned by List.
func New(fs afero.Fs, root string) (*Registry, error) {
	r := &Registry{
		fs:     fs,
		root:   root,
		byName: make(map[string]*Package),
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

// Root returns the tree root the registry was loaded from.
func (r *Registry) Root() string {
	return r.root
}

func (r *Registry) load() error {
	log := logger.Logger()
	portsDir := filepath.Join(r.root, PortsDir)

	st, err := r.fs.Stat(portsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrPortsDirNotFound, portsDir)
		}
		return fmt.Errorf("failed to stat ports directory: %w", err)
	}
	if !st.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrPortsDirNotFound, portsDir)
	}

	return afero.Walk(r.fs, portsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || info.Name() != InfoFilename {
			return nil
		}

		pkg, err := r.readInfo(path)
		if err != nil {
			return err
		}
		if prev, ok := r.byName[pkg.Name]; ok {
			return fmt.Errorf("%w: %q in %s and %s", ErrDuplicatePackage, pkg.Name, prev.Root, pkg.Root)
		}

		log.Debugw("loaded port", "name", pkg.Name, "root", pkg.Root, "upstream", pkg.IsUpstream())
		r.byName[pkg.Name] = pkg
		r.packages = append(r.packages, pkg)
		return nil
	})
}

func (r *Registry) readInfo(path string) (*Package, error) {
	f, err := r.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	pkg, err := ParseInfo(f, path)
	if err != nil {
		return nil, err
	}
	pkg.Root = filepath.Dir(path)
	return pkg, nil
}

// ParseInfo parses pkg_info content. name is only used in error messages.
func ParseInfo(rd io.Reader, name string) (*Package, error) {
	pkg := &Package{}
	scanner := bufio.NewScanner(rd)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %s:%d: expected KEY=VALUE", ErrInvalidPkgInfo, name, lineNo)
		}
		key = strings.TrimSpace(key)
		value = unquote(strings.TrimSpace(value))

		switch key {
		case "NAME":
			pkg.Name = value
		case "VERSION":
			pkg.Version = value
		case "URL":
			pkg.URL = value
		case "URL_FILENAME":
			pkg.URLFilename = value
		case "LICENSE":
			pkg.License = value
		case "DEPENDS":
			pkg.Depends = strings.Fields(value)
		default:
			logger.Logger().Debugw("ignoring pkg_info key", "file", name, "line", lineNo, "key", key)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	if pkg.Name == "" {
		return nil, fmt.Errorf("%w: %s: NAME is required", ErrInvalidPkgInfo, name)
	}
	return pkg, nil
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// List returns all ports in enumeration order
func (r *Registry) List() ([]*Package, error) {
	return slices.Clone(r.packages), nil
}

// Get returns the port with the given name
func (r *Registry) Get(name string) (*Package, error) {
	pkg, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, name)
	}
	return pkg, nil
}

// SortByName orders packages by name, keeping the relative order of equal names.
func SortByName(pkgs []*Package) {
	slices.SortStableFunc(pkgs, func(a, b *Package) int {
		return strings.Compare(a.Name, b.Name)
	})
}

var _ Lister = (*Registry)(nil)
