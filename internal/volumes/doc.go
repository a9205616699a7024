// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

// Package volumes discovers the Docker volumes available for backup.
//
// A volume is any directory directly under the volumes root. Discover reports
// each one with a human readable size and whether it is part of the saved
// selection.
//
// Usage:
//
//	disc := volumes.NewDiscoverer("/volumes", 5*time.Minute)
//	defer disc.Close()
//	vols, err := disc.Discover(ctx, store.SelectedVolumes())
package volumes
