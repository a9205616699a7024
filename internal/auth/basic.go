// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Realm is the HTTP Basic Auth realm presented to browsers
const Realm = "Docker Volume Backup"

// Authentication errors
var (
	ErrNoCredentials      = errors.New("no credentials provided")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// BasicAuthManager verifies HTTP Basic Auth credentials against one
// configured user. The password may be configured as a bcrypt hash or
// in plain text.
type BasicAuthManager struct {
	username string

	// bcrypt hash when AUTH_PASSWORD is a hash
	passwordHash []byte

	// SHA-256 of a plain text AUTH_PASSWORD
	plainDigest [sha256.Size]byte
}

// NewBasicAuthManager creates a Basic Auth manager.
// A password starting with $2a$, $2b$ or $2y$ must be a valid bcrypt hash.
func NewBasicAuthManager(username, password string) (*BasicAuthManager, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}

	m := &BasicAuthManager{username: username}
	if looksLikeBcrypt(password) {
		if _, err := bcrypt.Cost([]byte(password)); err != nil {
			return nil, fmt.Errorf("invalid bcrypt password hash: %w", err)
		}
		m.passwordHash = []byte(password)
		return m, nil
	}

	m.plainDigest = sha256.Sum256([]byte(password))
	return m, nil
}

// Username returns the configured username
func (m *BasicAuthManager) Username() string {
	return m.username
}

// ValidateCredentials validates an Authorization header.
// Returns the username if valid.
func (m *BasicAuthManager) ValidateCredentials(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrNoCredentials
	}
	if !strings.HasPrefix(authHeader, "Basic ") {
		return "", fmt.Errorf("%w: unsupported authorization scheme", ErrInvalidCredentials)
	}

	credentials, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(authHeader, "Basic "))
	if err != nil {
		return "", fmt.Errorf("%w: failed to decode credentials", ErrInvalidCredentials)
	}

	username, password, ok := strings.Cut(string(credentials), ":")
	if !ok {
		return "", fmt.Errorf("%w: invalid credentials format", ErrInvalidCredentials)
	}

	if !m.Validate(username, password) {
		return username, ErrInvalidCredentials
	}
	return username, nil
}

// Validate reports whether username and password match the configured user.
// Both comparisons always run so timing does not reveal which one failed.
func (m *BasicAuthManager) Validate(username, password string) bool {
	usernameMatch := subtle.ConstantTimeCompare([]byte(username), []byte(m.username)) == 1

	var passwordMatch bool
	if m.passwordHash != nil {
		passwordMatch = bcrypt.CompareHashAndPassword(m.passwordHash, []byte(password)) == nil
	} else {
		digest := sha256.Sum256([]byte(password))
		passwordMatch = subtle.ConstantTimeCompare(digest[:], m.plainDigest[:]) == 1
	}

	return usernameMatch && passwordMatch
}

// GetWWWAuthenticateHeader returns the WWW-Authenticate header value sent
// with 401 responses
func (m *BasicAuthManager) GetWWWAuthenticateHeader() string {
	return `Basic realm="` + Realm + `", charset="UTF-8"`
}

func looksLikeBcrypt(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
