// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package backup

import (
	"os"
)

// Environment variable names understood by restic and rclone
const (
	EnvResticRepository = "RESTIC_REPOSITORY"
	EnvResticPassword   = "RESTIC_PASSWORD"
	EnvRcloneConfig     = "RCLONE_CONFIG"
)

// Environment resolves the variables every restic invocation needs
type Environment struct {
	// Repository location, rclone:<remote>:<folder>
	Repository string

	// Repository password; empty means "not configured"
	Password string

	// Path to the rclone configuration file
	RcloneConfig string

	// base returns the inherited environment (os.Environ in production)
	base func() []string
}

// NewEnvironment builds the environment from engine configuration
func NewEnvironment(cfg Config) *Environment {
	return &Environment{
		Repository:   RepositoryURL(cfg.Rclone.Remote, cfg.Rclone.Folder),
		Password:     cfg.Restic.Password,
		RcloneConfig: cfg.Rclone.ConfigPath,
		base:         os.Environ,
	}
}

// RepositoryURL returns the restic repository string for an rclone remote
func RepositoryURL(remote, folder string) string {
	return "rclone:" + remote + ":" + folder
}

// HasPassword reports whether a repository password is configured
func (e *Environment) HasPassword() bool {
	return e.Password != ""
}

// Overrides returns only the variables set by the resolver
func (e *Environment) Overrides() []string {
	vars := []string{
		EnvRcloneConfig + "=" + e.RcloneConfig,
		EnvResticRepository + "=" + e.Repository,
	}
	if e.Password != "" {
		vars = append(vars, EnvResticPassword+"="+e.Password)
	}
	return vars
}

// Vars returns the inherited environment with the overrides appended.
// Later entries win, so the resolved values replace inherited ones.
func (e *Environment) Vars() []string {
	var inherited []string
	if e.base != nil {
		inherited = e.base()
	}
	overrides := e.Overrides()

	vars := make([]string, 0, len(inherited)+len(overrides))
	vars = append(vars, inherited...)
	return append(vars, overrides...)
}
