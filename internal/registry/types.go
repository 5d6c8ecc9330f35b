package registry

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// PatchFilename is the conventional name of a port's patch file, relative to
// the port root.
const PatchFilename = "nacl.patch"

// Package describes a single port as recorded in its pkg_info file
type Package struct {
	Name        string   `yaml:"name" json:"name"`                                     // Unique port name (NAME)
	Version     string   `yaml:"version,omitempty" json:"version,omitempty"`           // Upstream version (VERSION)
	URL         string   `yaml:"url,omitempty" json:"url,omitempty"`                   // Upstream archive URL (URL)
	URLFilename string   `yaml:"url_filename,omitempty" json:"url_filename,omitempty"` // Archive name override (URL_FILENAME)
	License     string   `yaml:"license,omitempty" json:"license,omitempty"`           // LICENSE
	Depends     []string `yaml:"depends,omitempty" json:"depends,omitempty"`           // DEPENDS
	Root        string   `yaml:"root" json:"root"`                                     // Directory holding pkg_info
}

// IsUpstream reports whether the port is built from an upstream archive.
func (p *Package) IsUpstream() bool {
	return p.URL != ""
}

// ArchiveFilename returns the name of the upstream archive. It is empty for
// local ports and for ports fetched from git.
func (p *Package) ArchiveFilename() string {
	if p.URLFilename != "" {
		return p.URLFilename
	}
	if p.URL == "" || strings.Contains(p.URL, ".git") {
		return ""
	}
	u, err := url.Parse(p.URL)
	if err != nil || u.Path == "" {
		return path.Base(p.URL)
	}
	return path.Base(u.Path)
}

// PatchPath returns where the port's patch file lives, whether or not it exists.
func (p *Package) PatchPath() string {
	return filepath.Join(p.Root, PatchFilename)
}
