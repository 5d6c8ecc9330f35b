package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/naclports/portlist/internal/registry"
	"github.com/naclports/portlist/internal/report"
)

type listEntry struct {
	Name     string   `json:"name" yaml:"name"`
	Version  string   `json:"version,omitempty" yaml:"version,omitempty"`
	Upstream bool     `json:"upstream" yaml:"upstream"`
	URL      string   `json:"url,omitempty" yaml:"url,omitempty"`
	Archive  string   `json:"archive,omitempty" yaml:"archive,omitempty"`
	License  string   `json:"license,omitempty" yaml:"license,omitempty"`
	Depends  []string `json:"depends,omitempty" yaml:"depends,omitempty"`
	Path     string   `json:"path" yaml:"path"`
	Patch    int64    `json:"patch_bytes" yaml:"patch_bytes"` // -1 when the port has no patch
}

type listResp struct {
	Ports []listEntry `json:"ports" yaml:"ports"`
	Count int         `json:"count" yaml:"count"`
}

var (
	listJSON     bool
	listYAML     bool
	listUpstream bool
	listLocal    bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List ports",
	Long: `List ports in the tree, sorted by name, with optional filtering.

Examples:
  portlist list                 # Table of all ports
  portlist list --upstream      # Only ports built from an upstream archive
  portlist list --local         # Only ports with no upstream source
  portlist list --json          # Output JSON for piping
  portlist list --yaml          # Output YAML`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output JSON")
	listCmd.Flags().BoolVar(&listYAML, "yaml", false, "output YAML")
	listCmd.Flags().BoolVar(&listUpstream, "upstream", false, "only upstream ports")
	listCmd.Flags().BoolVar(&listLocal, "local", false, "only local ports")
	listCmd.MarkFlagsMutuallyExclusive("json", "yaml")
	listCmd.MarkFlagsMutuallyExclusive("upstream", "local")
}

func runList(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	pkgs, err := reg.List()
	if err != nil {
		return err
	}
	registry.SortByName(pkgs)

	resp := listResp{Ports: []listEntry{}}
	for _, pkg := range pkgs {
		if (listUpstream && !pkg.IsUpstream()) || (listLocal && pkg.IsUpstream()) {
			continue
		}
		entry, err := newListEntry(pkg)
		if err != nil {
			return err
		}
		resp.Ports = append(resp.Ports, entry)
	}
	resp.Count = len(resp.Ports)

	out := cmd.OutOrStdout()
	switch {
	case listJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case listYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(resp); err != nil {
			return err
		}
		return enc.Close()
	}

	if resp.Count == 0 {
		fmt.Fprintln(out, "No ports found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tARCHIVE\tPATCH")
	for _, p := range resp.Ports {
		version := p.Version
		if version == "" {
			version = "-"
		}
		archive := p.Archive
		if !p.Upstream {
			archive = "(local)"
		} else if archive == "" {
			archive = "-"
		}
		patch := "-"
		if p.Patch >= 0 {
			patch = report.FormatSize(p.Patch)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, version, archive, patch)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nTotal: %d port(s)\n", resp.Count)
	return nil
}

func newListEntry(pkg *registry.Package) (listEntry, error) {
	entry := listEntry{
		Name:     pkg.Name,
		Version:  pkg.Version,
		Upstream: pkg.IsUpstream(),
		URL:      pkg.URL,
		Archive:  pkg.ArchiveFilename(),
		License:  pkg.License,
		Depends:  pkg.Depends,
		Path:     pkg.Root,
		Patch:    -1,
	}
	st, err := fsys.Stat(pkg.PatchPath())
	switch {
	case err == nil:
		entry.Patch = st.Size()
	case !errors.Is(err, fs.ErrNotExist):
		return entry, fmt.Errorf("failed to stat patch for %s: %w", pkg.Name, err)
	}
	return entry, nil
}
