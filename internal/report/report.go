// Package report renders the port listing as Google Code wiki markup.
package report

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/naclports/portlist/internal/logger"
	"github.com/naclports/portlist/internal/registry"
)

// NoPatch is the patch cell for ports without a patch file
const NoPatch = "_none_"

// Options controls link construction
type Options struct {
	BaseDir   string // Tree root; links are relative to it
	SourceURL string // Source-browsing prefix, no trailing slash
	Generator string // Path of the generating tool, relative to the tree root
}

// Summary counts the rows written to each table
type Summary struct {
	Upstream int
	Local    int
}

// Generator writes the report for the ports a Lister yields
type Generator struct {
	fs     afero.Fs
	lister registry.Lister
	opts   Options
}

// New returns a generator that lists ports through lister and checks patch
// files on fs.
func New(fs afero.Fs, lister registry.Lister, opts Options) *Generator {
	return &Generator{fs: fs, lister: lister, opts: opts}
}

// FormatSize renders a byte count as "<n> B" below 1 KiB, else as whole KiB
// (truncated).
func FormatSize(size int64) string {
	if size < 1024 {
		return fmt.Sprintf("%d B", size)
	}
	return fmt.Sprintf("%d KiB", size/1024)
}

// Generate writes the full report to w.
func (g *Generator) Generate(w io.Writer) (Summary, error) {
	var sum Summary

	pkgs, err := g.lister.List()
	if err != nil {
		return sum, fmt.Errorf("failed to list packages: %w", err)
	}

	var upstream, local []*registry.Package
	for _, pkg := range pkgs {
		if pkg.IsUpstream() {
			upstream = append(upstream, pkg)
		} else {
			local = append(local, pkg)
		}
	}
	registry.SortByName(upstream)

	if err := g.writeHeader(w); err != nil {
		return sum, err
	}

	for _, pkg := range upstream {
		if err := g.writeUpstreamRow(w, pkg); err != nil {
			return sum, err
		}
		sum.Upstream++
	}
	if err := writeTotal(w, sum.Upstream); err != nil {
		return sum, err
	}

	if _, err := fmt.Fprint(w, "= Local Ports (not based on upstream sources) =\n\n"); err != nil {
		return sum, err
	}
	for _, pkg := range local {
		link, err := g.sourceLink(pkg.Root, pkg.Name)
		if err != nil {
			return sum, err
		}
		if _, err := fmt.Fprintf(w, "|| %-70s ||\n", link); err != nil {
			return sum, err
		}
		sum.Local++
	}
	if err := writeTotal(w, sum.Local); err != nil {
		return sum, err
	}

	logger.Logger().Debugw("report complete", "upstream", sum.Upstream, "local", sum.Local)
	return sum, nil
}

func (g *Generator) writeHeader(w io.Writer) error {
	generator := g.opts.Generator
	_, err := fmt.Fprintf(w, `#summary List of ports available in naclports.
= List of available !NaCl ports =

Port are listed in alphabetical order, with links to the upstream
source archive and the patch used when building for !NaCl.
This listing is auto-generated by the
[%s/%s %s]
script.

|| *Name* || *Upstream Archive* || *!NaCl Patch* ||
`, g.opts.SourceURL, generator, path.Base(generator))
	return err
}

func (g *Generator) writeUpstreamRow(w io.Writer, pkg *registry.Package) error {
	patch, err := g.patchCell(pkg)
	if err != nil {
		return err
	}
	archive := pkg.ArchiveFilename()
	if archive == "" {
		archive = pkg.Name
	}
	url := fmt.Sprintf("[%s %s]", pkg.URL, archive)
	pkgLink, err := g.sourceLink(pkg.Root, pkg.Name)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "|| %-70s || %-70s || %s ||\n", pkgLink, url, patch)
	return err
}

// patchCell returns the linked patch size, or NoPatch when there is no patch.
func (g *Generator) patchCell(pkg *registry.Package) (string, error) {
	patchPath := pkg.PatchPath()
	st, err := g.fs.Stat(patchPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Logger().Debugw("no patch", "name", pkg.Name)
			return NoPatch, nil
		}
		return "", fmt.Errorf("failed to stat patch for %s: %w", pkg.Name, err)
	}
	logger.Logger().Debugw("found patch", "name", pkg.Name, "size", st.Size())
	return g.sourceLink(patchPath, FormatSize(st.Size()))
}

func (g *Generator) sourceLink(target, text string) (string, error) {
	rel, err := g.relPath(target)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("[%s/%s %s]", g.opts.SourceURL, rel, text), nil
}

func (g *Generator) relPath(target string) (string, error) {
	rel, err := filepath.Rel(g.opts.BaseDir, target)
	if err != nil {
		return "", fmt.Errorf("failed to relativize %s: %w", target, err)
	}
	return filepath.ToSlash(rel), nil
}

func writeTotal(w io.Writer, n int) error {
	_, err := fmt.Fprintf(w, "\n_Total = %d_\n\n", n)
	return err
}
