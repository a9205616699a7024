// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package volumes

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/dockvault/internal/logging"
)

func TestMain(m *testing.M) {
	logging.Init(logging.Config{Level: "disabled"})
	os.Exit(m.Run())
}

// makeVolume creates root/name with a file of the given size
func makeVolume(t *testing.T, root, name string, size int) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	if size > 0 {
		if err := os.WriteFile(filepath.Join(dir, "nested", "data.bin"), make([]byte, size), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestDiscover_ListsDirectoriesSorted(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	makeVolume(t, root, "postgres_data", 2048)
	makeVolume(t, root, "app_config", 0)
	makeVolume(t, root, "nextcloud", 10)
	// Plain files are not volumes
	if err := os.WriteFile(filepath.Join(root, "README"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	d := NewDiscoverer(root, time.Minute)
	t.Cleanup(d.Close)

	got, err := d.Discover(context.Background(), []string{"nextcloud", "gone"})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	names := make([]string, len(got))
	for i, v := range got {
		names[i] = v.Name
	}
	if strings.Join(names, ",") != "app_config,nextcloud,postgres_data" {
		t.Fatalf("names = %v", names)
	}

	for _, v := range got {
		if v.Path != filepath.Join(root, v.Name) {
			t.Errorf("%s: Path = %q", v.Name, v.Path)
		}
		if v.Selected != (v.Name == "nextcloud") {
			t.Errorf("%s: Selected = %v", v.Name, v.Selected)
		}
		if v.SizeBytes == nil {
			t.Errorf("%s: SizeBytes not set", v.Name)
		}
	}

	pg := got[2]
	if *pg.SizeBytes != 2048 {
		t.Errorf("postgres_data SizeBytes = %d, want 2048", *pg.SizeBytes)
	}
	if pg.Size != "2.0 kB" {
		t.Errorf("postgres_data Size = %q, want 2.0 kB", pg.Size)
	}
	if got[0].Size != "0 B" {
		t.Errorf("app_config Size = %q, want 0 B", got[0].Size)
	}
}

func TestDiscover_MissingRoot(t *testing.T) {
	t.Parallel()

	d := NewDiscoverer(filepath.Join(t.TempDir(), "absent"), 0)
	t.Cleanup(d.Close)

	got, err := d.Discover(context.Background(), nil)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Discover() = %v, want empty non-nil slice", got)
	}
}

func TestDiscover_RootIsFile(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(root, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	d := NewDiscoverer(root, time.Minute)
	t.Cleanup(d.Close)

	if _, err := d.Discover(context.Background(), nil); err == nil {
		t.Error("Discover() should fail when the root is not a directory")
	}
}

func TestDiscover_FollowsSymlinkedVolume(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	target := makeVolume(t, t.TempDir(), "elsewhere", 5)
	if err := os.Symlink(target, filepath.Join(root, "linked")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	d := NewDiscoverer(root, time.Minute)
	t.Cleanup(d.Close)

	got, err := d.Discover(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "linked" {
		t.Fatalf("Discover() = %+v", got)
	}
}

func TestDiscover_UnknownSize(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	makeVolume(t, root, "locked", 10)

	d := NewDiscoverer(root, time.Minute)
	t.Cleanup(d.Close)
	d.measure = func(context.Context, string) (int64, error) {
		return 0, errors.New("permission denied")
	}

	got, err := d.Discover(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Size != UnknownSize {
		t.Errorf("Size = %q, want %q", got[0].Size, UnknownSize)
	}
	if got[0].SizeBytes != nil {
		t.Errorf("SizeBytes = %v, want nil", *got[0].SizeBytes)
	}
}

func TestDiscover_CachesSizes(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	makeVolume(t, root, "a", 1)
	makeVolume(t, root, "b", 1)

	var calls atomic.Int32
	d := NewDiscoverer(root, time.Hour)
	t.Cleanup(d.Close)
	d.measure = func(ctx context.Context, path string) (int64, error) {
		calls.Add(1)
		return DirSize(ctx, path)
	}

	for i := 0; i < 3; i++ {
		if _, err := d.Discover(context.Background(), nil); err != nil {
			t.Fatal(err)
		}
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("measure called %d times, want 2", n)
	}

	d.Invalidate()
	if _, err := d.Discover(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if n := calls.Load(); n != 4 {
		t.Errorf("measure called %d times after Invalidate, want 4", n)
	}
}

func TestDiscover_CancelledContext(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	makeVolume(t, root, "a", 1)

	d := NewDiscoverer(root, time.Minute)
	t.Cleanup(d.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := d.Discover(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Discover() error = %v, want context.Canceled", err)
	}
}

func TestDirSize(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	files := map[string]int{
		"a.txt":           100,
		"sub/b.txt":       200,
		"sub/deep/c.txt":  300,
		"sub/empty.txt":   0,
		"other/d.bin.gz":  50,
		"other/.hidden":   7,
		"sub/deep/e/f.db": 1,
	}
	var want int64
	for name, size := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, make([]byte, size), 0o600); err != nil {
			t.Fatal(err)
		}
		want += int64(size)
	}
	// Symlinks are not followed
	_ = os.Symlink(filepath.Join(root, "a.txt"), filepath.Join(root, "link"))

	got, err := DirSize(context.Background(), root)
	if err != nil {
		t.Fatalf("DirSize() error = %v", err)
	}
	if got != want {
		t.Errorf("DirSize() = %d, want %d", got, want)
	}
}

func TestDirSize_MissingPath(t *testing.T) {
	t.Parallel()

	if _, err := DirSize(context.Background(), filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("DirSize() should fail for a missing path")
	}
}
