// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

/*
discovery.go - Docker Volume Discovery

Every directory directly under the volumes root is one backup candidate. The
container mounts /var/lib/docker/volumes read-only at that root, so each
candidate corresponds to a named Docker volume.

Size Measurement:
  - Sizes are the sum of regular file sizes below the volume, symlinks are
    not followed
  - Any walk error (permission denied, vanished directory) reports the size
    as "Unknown" and omits size_bytes
  - Measured sizes are cached per path for the configured TTL; Invalidate
    drops them after a backup so the dashboard reflects fresh numbers
*/

//nolint:staticcheck // File documentation, not package doc
package volumes

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/tomtom215/dockvault/internal/cache"
	"github.com/tomtom215/dockvault/internal/logging"
	"github.com/tomtom215/dockvault/internal/metrics"
)

// UnknownSize is displayed when a volume cannot be measured
const UnknownSize = "Unknown"

// DefaultSizeTTL is used when NewDiscoverer receives a zero TTL
const DefaultSizeTTL = 5 * time.Minute

// Volume is one backup candidate under the volumes root
type Volume struct {
	// Directory name, used as the volume identifier everywhere
	Name string `json:"name"`

	// Absolute path of the volume directory
	Path string `json:"path"`

	// Human readable size, "Unknown" when it could not be measured
	Size string `json:"size"`

	// Size in bytes, omitted when unknown
	SizeBytes *int64 `json:"size_bytes,omitempty"`

	// Whether the volume is part of the saved selection
	Selected bool `json:"selected"`
}

// SizeFunc measures the size of a directory
type SizeFunc func(ctx context.Context, path string) (int64, error)

// Discoverer lists volumes under a root directory
type Discoverer struct {
	root    string
	sizes   *cache.Cache[int64]
	measure SizeFunc
}

// NewDiscoverer creates a discoverer for root. Measured sizes are reused for
// sizeTTL; a zero sizeTTL selects DefaultSizeTTL.
func NewDiscoverer(root string, sizeTTL time.Duration) *Discoverer {
	if sizeTTL <= 0 {
		sizeTTL = DefaultSizeTTL
	}
	return &Discoverer{
		root:    root,
		sizes:   cache.New[int64](sizeTTL),
		measure: DirSize,
	}
}

// Root returns the volumes root directory
func (d *Discoverer) Root() string {
	return d.root
}

// Discover returns the volumes under the root sorted by name, marking those
// present in selected. A missing root yields an empty list.
func (d *Discoverer) Discover(ctx context.Context, selected []string) ([]Volume, error) {
	start := time.Now()

	entries, err := os.ReadDir(d.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logging.Ctx(ctx).Warn().Str("root", d.root).Msg("Volumes root does not exist")
			metrics.RecordVolumeScan(0, time.Since(start))
			return []Volume{}, nil
		}
		return nil, fmt.Errorf("failed to read volumes root %s: %w", d.root, err)
	}

	volumes := make([]Volume, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(d.root, entry.Name())
		// Stat follows symlinks so a linked volume directory is still listed
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			continue
		}

		vol := Volume{
			Name:     entry.Name(),
			Path:     path,
			Size:     UnknownSize,
			Selected: slices.Contains(selected, entry.Name()),
		}
		if size, ok := d.size(ctx, path); ok {
			vol.Size = humanize.Bytes(uint64(size)) //nolint:gosec // size is never negative
			vol.SizeBytes = &size
			metrics.RecordVolumeSize(vol.Name, size)
		}
		volumes = append(volumes, vol)
	}

	slices.SortFunc(volumes, func(a, b Volume) int {
		return strings.Compare(a.Name, b.Name)
	})

	metrics.RecordVolumeScan(len(volumes), time.Since(start))
	return volumes, nil
}

// Invalidate drops all cached sizes
func (d *Discoverer) Invalidate() {
	d.sizes.Clear()
}

// Close stops the size cache sweeper
func (d *Discoverer) Close() {
	d.sizes.Close()
}

func (d *Discoverer) size(ctx context.Context, path string) (int64, bool) {
	if size, ok := d.sizes.Get(path); ok {
		return size, true
	}

	size, err := d.measure(ctx, path)
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("path", path).Msg("Could not measure volume size")
		return 0, false
	}
	d.sizes.Set(path, size)
	return size, true
}

// DirSize returns the total size of regular files below root.
// A symlinked root is resolved; symlinks below it are not followed.
func DirSize(ctx context.Context, root string) (int64, error) {
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return 0, err
	}

	var total int64
	err = filepath.WalkDir(resolved, func(_ string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
