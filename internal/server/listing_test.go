package server

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/marcocampos/hows/internal/config"
)

func TestDirectoryListing(t *testing.T) {
	site, _ := newTestSite(t, nil)
	if err := os.MkdirAll(filepath.Join(site.WebRoot, "docs", "img"), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	writeTestFile(t, filepath.Join(site.WebRoot, "docs", "a.txt"), "hello")

	resp := get(site, "/docs/")
	if resp.StatusCode != 200 {
		t.Fatalf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if resp.ContentType() != "text/html" {
		t.Errorf("Content-Type = %q, want text/html", resp.ContentType())
	}

	body := string(resp.Body)
	dirLink := "<li><a href='docs/img'>docs/img/</a></li>"
	fileLink := "<li><a href='docs/a.txt'>docs/a.txt</a></li>"
	dirIdx := strings.Index(body, dirLink)
	fileIdx := strings.Index(body, fileLink)
	if dirIdx < 0 || fileIdx < 0 {
		t.Fatalf("listing missing links:\n%s", body)
	}
	if dirIdx > fileIdx {
		t.Errorf("directories must be listed before files:\n%s", body)
	}
	if got := strings.Count(body, "<li>"); got != 2 {
		t.Errorf("got %d links, want 2", got)
	}
	for _, want := range []string{"<title>Index of /docs/</title>", "<h1>Index of /docs/</h1>", "<p>2 items (5 B)</p>"} {
		if !strings.Contains(body, want) {
			t.Errorf("listing missing %q:\n%s", want, body)
		}
	}
}

func TestDirectoryListingOrdering(t *testing.T) {
	site, _ := newTestSite(t, nil)
	for _, name := range []string{"b.txt", "a.txt"} {
		writeTestFile(t, filepath.Join(site.WebRoot, name), name)
	}
	for _, name := range []string{"zeta", "alpha"} {
		if err := os.Mkdir(filepath.Join(site.WebRoot, name), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
	}

	body := string(get(site, "/").Body)
	order := []string{"href='alpha'", "href='zeta'", "href='a.txt'", "href='b.txt'"}
	last := -1
	for _, link := range order {
		idx := strings.Index(body, link)
		if idx < 0 {
			t.Fatalf("listing missing %s:\n%s", link, body)
		}
		if idx < last {
			t.Errorf("%s out of order:\n%s", link, body)
		}
		last = idx
	}
	if !strings.Contains(body, "<h1>Index of /</h1>") {
		t.Errorf("missing heading:\n%s", body)
	}
}

func TestDirectoryListingHrefsAreRootRelative(t *testing.T) {
	site, _ := newTestSite(t, nil)
	writeTestFile(t, filepath.Join(site.WebRoot, "a", "b", "c.txt"), "c")

	body := string(get(site, "/a/b/").Body)
	if !strings.Contains(body, "<li><a href='a/b/c.txt'>a/b/c.txt</a></li>") {
		t.Errorf("unexpected listing:\n%s", body)
	}
	if strings.Contains(body, site.WebRoot) {
		t.Errorf("listing leaks the web root path:\n%s", body)
	}
}

func TestDirectoryListingDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.AllowDirList = false
	site, _ := newTestSite(t, cfg)
	writeTestFile(t, filepath.Join(site.WebRoot, "docs", "a.txt"), "a")

	resp := get(site, "/docs/")
	if resp.StatusCode != 403 {
		t.Fatalf("StatusCode = %d, want 403", resp.StatusCode)
	}
	if len(resp.Body) != 0 {
		t.Errorf("Body = %q, want empty", resp.Body)
	}
	if got := resp.Headers.Get("Content-Length"); got != "0" {
		t.Errorf("Content-Length = %q, want 0", got)
	}
}

func TestDirectoryAutoIndex(t *testing.T) {
	for _, allow := range []bool{true, false} {
		cfg := config.Default()
		cfg.AllowDirList = allow
		site, _ := newTestSite(t, cfg)
		writeTestFile(t, filepath.Join(site.WebRoot, "docs", "index.html"), "<h1>docs</h1>")

		viaDir := get(site, "/docs/")
		direct := get(site, "/docs/index.html")
		if viaDir.StatusCode != direct.StatusCode || viaDir.StatusCode != 200 {
			t.Errorf("AllowDirList=%v: status %d, direct %d", allow, viaDir.StatusCode, direct.StatusCode)
		}
		if viaDir.ContentType() != direct.ContentType() {
			t.Errorf("AllowDirList=%v: Content-Type %q, direct %q", allow, viaDir.ContentType(), direct.ContentType())
		}
		if string(viaDir.Body) != string(direct.Body) {
			t.Errorf("AllowDirList=%v: body %q, direct %q", allow, viaDir.Body, direct.Body)
		}
	}
}

func TestDirectoryAutoIndexOrder(t *testing.T) {
	cfg := config.Default()
	cfg.AutoExtensions = []string{"html", "php"}
	site, runner := newTestSite(t, cfg)
	writeTestFile(t, filepath.Join(site.WebRoot, "index.php"), "<?php")
	writeTestFile(t, filepath.Join(site.WebRoot, "index.html"), "static")

	resp := get(site, "/")
	if string(resp.Body) != "static" {
		t.Errorf("Body = %q, want index.html content", resp.Body)
	}
	if len(runner.calls) != 0 {
		t.Errorf("runner should not be called, got %v", runner.calls)
	}

	site.Config.AutoExtensions = []string{"php", "html"}
	resp = get(site, "/")
	if string(resp.Body) != "<p>rendered</p>" {
		t.Errorf("Body = %q, want rendered index.php", resp.Body)
	}
}

func TestDirectoryAutoIndexDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.AutoExtensions = nil
	site, _ := newTestSite(t, cfg)
	writeTestFile(t, filepath.Join(site.WebRoot, "index.html"), "static")

	resp := get(site, "/")
	if resp.StatusCode != 200 {
		t.Fatalf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(string(resp.Body), "<li><a href='index.html'>index.html</a></li>") {
		t.Errorf("expected a listing, got:\n%s", resp.Body)
	}
}

func TestDirectoryIndexMustBeFile(t *testing.T) {
	site, _ := newTestSite(t, nil)
	if err := os.MkdirAll(filepath.Join(site.WebRoot, "index.html"), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	body := string(get(site, "/").Body)
	if !strings.Contains(body, "<li><a href='index.html'>index.html/</a></li>") {
		t.Errorf("a directory named index.html should be listed, got:\n%s", body)
	}
}
