package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := t.TempDir()
	t.Setenv("PORTLIST_ROOT", root)

	cfg, err := Load(NewViper(), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.SourceURL != DefaultSourceURL {
		t.Errorf("Expected source URL %q, got %q", DefaultSourceURL, cfg.SourceURL)
	}
	if cfg.Generator != DefaultGenerator {
		t.Errorf("Expected generator %q, got %q", DefaultGenerator, cfg.Generator)
	}
	if cfg.Verbose {
		t.Error("Expected verbose to default to false")
	}
	if cfg.Root != root {
		t.Errorf("Expected root %q, got %q", root, cfg.Root)
	}
}

func TestLoad_Precedence(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "portlist.yaml")
	writeFile(t, cfgFile, "root: /from/file\nsrc_url: https://file.example/src/\ngenerator: tools/gen\n")

	t.Run("file over default", func(t *testing.T) {
		cfg, err := Load(NewViper(), cfgFile)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.SourceURL != "https://file.example/src" {
			t.Errorf("Expected trailing slash trimmed file URL, got %q", cfg.SourceURL)
		}
		if cfg.Root != "/from/file" {
			t.Errorf("Expected root from file, got %q", cfg.Root)
		}
		if cfg.Generator != "tools/gen" {
			t.Errorf("Expected generator from file, got %q", cfg.Generator)
		}
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("PORTLIST_SRC_URL", "https://env.example/src")

		cfg, err := Load(NewViper(), cfgFile)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.SourceURL != "https://env.example/src" {
			t.Errorf("Expected env URL, got %q", cfg.SourceURL)
		}
	})

	t.Run("override over env", func(t *testing.T) {
		t.Setenv("PORTLIST_SRC_URL", "https://env.example/src")

		v := NewViper()
		v.Set(KeySourceURL, "https://flag.example/src")
		cfg, err := Load(v, cfgFile)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.SourceURL != "https://flag.example/src" {
			t.Errorf("Expected flag URL, got %q", cfg.SourceURL)
		}
	})
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(NewViper(), filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Expected error for missing explicit config file")
	}
}

func TestLoad_MalformedDefaultFile(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	if err := os.MkdirAll(filepath.Join(xdg, "portlist"), 0o700); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(xdg, "portlist", "config.yaml"), "root: [unterminated\n")

	if _, err := Load(NewViper(), ""); err == nil {
		t.Fatal("Expected error for malformed config file")
	}
}

func TestLoad_EmptySourceURL(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("PORTLIST_ROOT", t.TempDir())

	v := NewViper()
	v.Set(KeySourceURL, "")
	if _, err := Load(v, ""); err == nil {
		t.Fatal("Expected error for empty src_url")
	}
}

func TestLoad_HomeExpansion(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	home := t.TempDir()
	t.Setenv("HOME", home)
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		root string
		want string
	}{
		{"~", home},
		{"~/naclports/src", filepath.Join(home, "naclports", "src")},
		{"~user/naclports", filepath.Join(cwd, "~user", "naclports")},
	}

	for _, tt := range tests {
		t.Run(tt.root, func(t *testing.T) {
			v := NewViper()
			v.Set(KeyRoot, tt.root)
			cfg, err := Load(v, "")
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if cfg.Root != tt.want {
				t.Errorf("Expected root %q, got %q", tt.want, cfg.Root)
			}
		})
	}
}
