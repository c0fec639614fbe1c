package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// UserRecord represents a registered account on this device.
type UserRecord struct {
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"` // bcrypt output, never plaintext
}

// UserSet is the full ordered collection of registered accounts, persisted as one blob.
type UserSet []UserRecord

// NormalizeUsername trims surrounding whitespace; case is preserved for storage.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// Find returns the record whose username matches case-insensitively.
func (s UserSet) Find(username string) (UserRecord, bool) {
	username = NormalizeUsername(username)
	for _, u := range s {
		if strings.EqualFold(u.Username, username) {
			return u, true
		}
	}
	return UserRecord{}, false
}

// Contains reports whether a case-insensitive match exists.
func (s UserSet) Contains(username string) bool {
	_, ok := s.Find(username)
	return ok
}

// MarshalUserSet encodes the set as a JSON array of {username, passwordHash}.
func MarshalUserSet(s UserSet) (string, error) {
	if s == nil {
		s = UserSet{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode user set: %w", err)
	}
	return string(b), nil
}

// ParseUserSet decodes a persisted blob. An empty blob is an empty set.
func ParseUserSet(blob string) (UserSet, error) {
	if strings.TrimSpace(blob) == "" {
		return UserSet{}, nil
	}
	var s UserSet
	if err := json.Unmarshal([]byte(blob), &s); err != nil {
		return nil, fmt.Errorf("failed to decode user set: %w", err)
	}
	if s == nil {
		s = UserSet{}
	}
	return s, nil
}
