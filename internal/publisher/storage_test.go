package publisher

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestFSWriter(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := NewFSWriter(fs, "out")
	ctx := context.Background()

	if err := w.WriteFile(ctx, textRequest("/nested/page.html", "<p>hi</p>", "text/html", CategoryPage)); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := afero.ReadFile(fs, "out/nested/page.html")
	if err != nil || string(data) != "<p>hi</p>" {
		t.Fatalf("unexpected file %q, %v", data, err)
	}

	if err := w.WriteFile(ctx, WriteFileRequest{Path: "x"}); err == nil {
		t.Fatal("expected missing content error")
	}
	if err := w.WriteFile(ctx, WriteFileRequest{Content: strings.NewReader("x")}); err == nil {
		t.Fatal("expected missing path error")
	}

	if err := w.RemoveAll(ctx, ""); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	if exists, _ := afero.DirExists(fs, "out"); exists {
		t.Fatal("expected output directory to be removed")
	}
}

func TestFSWriterRefusesRootRemoval(t *testing.T) {
	w := NewFSWriter(afero.NewMemMapFs(), "")
	if err := w.RemoveAll(context.Background(), "/"); err == nil {
		t.Fatal("expected refusal to remove the filesystem root")
	}
}

func TestFSWriterRefusesPathsOutsideRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := NewFSWriter(fs, "/srv/public")
	ctx := context.Background()

	for _, p := range []string{"../../etc/evil.html", "a/../../evil.html", ".."} {
		err := w.WriteFile(ctx, textRequest(p, "x", "text/html", CategoryPage))
		if !errors.Is(err, ErrPathOutsideRoot) {
			t.Fatalf("WriteFile(%q): expected ErrPathOutsideRoot, got %v", p, err)
		}
	}
	if err := w.EnsureDir(ctx, "../outside"); !errors.Is(err, ErrPathOutsideRoot) {
		t.Fatalf("EnsureDir: expected ErrPathOutsideRoot, got %v", err)
	}
	if err := w.RemoveAll(ctx, "../"); !errors.Is(err, ErrPathOutsideRoot) {
		t.Fatalf("RemoveAll: expected ErrPathOutsideRoot, got %v", err)
	}
	if exists, _ := afero.Exists(fs, "/etc/evil.html"); exists {
		t.Fatal("expected nothing written outside the root")
	}

	if err := w.WriteFile(ctx, textRequest("a/../inside.html", "x", "text/html", CategoryPage)); err != nil {
		t.Fatalf("WriteFile inside root: %v", err)
	}
	if exists, _ := afero.Exists(fs, "/srv/public/inside.html"); !exists {
		t.Fatal("expected cleaned path to stay inside the root")
	}
}

func TestTextRequestChecksum(t *testing.T) {
	req := textRequest("a.css", "body{}", "text/css", CategoryStyles)
	if req.Size != 6 || req.Checksum != checksum("body{}") || len(req.Checksum) != 64 {
		t.Fatalf("unexpected request %+v", req)
	}
}
