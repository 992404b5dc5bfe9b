package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PARX_CONTENT_URL", "SUPABASE_URL", "VITE_SUPABASE_URL",
		"PARX_CONTENT_API_KEY", "SUPABASE_ANON_KEY", "VITE_SUPABASE_ANON_KEY",
		"PARX_CONTENT_DATABASE_PATH",
	} {
		t.Setenv(k, "")
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "parxsite ") {
		t.Errorf("output = %q", out)
	}
}

func TestSitemapSkipsWithoutContentStore(t *testing.T) {
	isolateEnv(t)
	dist := t.TempDir()
	t.Setenv("PARX_DIST_DIR", dist)

	if _, err := run(t, "sitemap"); err != nil {
		t.Fatalf("sitemap: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dist, "sitemap.xml")); !os.IsNotExist(err) {
		t.Error("sitemap must not be written when the content store is not configured")
	}
}

func TestSeedPrerenderAndSitemap(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	dist := filepath.Join(dir, "dist")
	if err := os.MkdirAll(dist, 0o755); err != nil {
		t.Fatal(err)
	}
	shell := "<!doctype html>\n<html>\n<head>\n<title>Parx Group</title>\n</head>\n<body></body>\n</html>\n"
	if err := os.WriteFile(filepath.Join(dist, "index.html"), []byte(shell), 0o644); err != nil {
		t.Fatal(err)
	}
	articles := `[
		{"slug":"flood-cover","title":"Flood Cover","featured_image":"https://cdn.example.com/f.jpg","published_at":"2024-04-01T00:00:00Z","published":true},
		{"slug":"draft","title":"Draft","featured_image":"https://cdn.example.com/d.jpg","published":false}
	]`
	seedFile := filepath.Join(dir, "articles.json")
	if err := os.WriteFile(seedFile, []byte(articles), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PARX_DIST_DIR", dist)
	t.Setenv("PARX_CONTENT_DATABASE_PATH", filepath.Join(dir, "data", "articles.db"))

	out, err := run(t, "seed", seedFile)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !strings.Contains(out, "seeded 2 articles") {
		t.Errorf("seed output = %q", out)
	}

	if _, err := run(t, "prerender", "--articles"); err != nil {
		t.Fatalf("prerender: %v", err)
	}
	page, err := os.ReadFile(filepath.Join(dist, "insights", "flood-cover", "index.html"))
	if err != nil {
		t.Fatalf("article shell not written: %v", err)
	}
	if !strings.Contains(string(page), "<title>Flood Cover | Parx Group Insights</title>") {
		t.Errorf("article shell:\n%s", page)
	}
	if _, err := os.Stat(filepath.Join(dist, "insights", "draft")); !os.IsNotExist(err) {
		t.Error("unpublished article was prerendered")
	}

	if _, err := run(t, "sitemap"); err != nil {
		t.Fatalf("sitemap: %v", err)
	}
	sm, err := os.ReadFile(filepath.Join(dist, "sitemap.xml"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(string(sm), "<url>") != 10 {
		t.Errorf("sitemap:\n%s", sm)
	}
}

func TestSeedRequiresDatabase(t *testing.T) {
	isolateEnv(t)
	if _, err := run(t, "seed", "missing.json"); err == nil {
		t.Fatal("expected an error without content.database_path")
	}
}
