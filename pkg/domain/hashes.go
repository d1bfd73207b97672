package domain

import (
	"encoding/hex"
	"strings"

	dErrors "deedgate/pkg/domain-errors"
)

// HashHexLen is the wire length of every SHA-256 value in the system.
const HashHexLen = 64

// ContentHash is the SHA-256 of a document's raw bytes as 64 lowercase hex characters.
type ContentHash string

// RecordHash is the fingerprint binding a document to its declared property facts.
// It is write-once: once stored it is never re-derived from a listing.
type RecordHash string

func ParseContentHash(s string) (ContentHash, error) {
	h, err := parseHash(s, "content hash")
	return ContentHash(h), err
}

func ParseRecordHash(s string) (RecordHash, error) {
	h, err := parseHash(s, "record hash")
	return RecordHash(h), err
}

func (h ContentHash) String() string { return string(h) }
func (h RecordHash) String() string  { return string(h) }

func (h ContentHash) IsZero() bool { return h == "" }
func (h RecordHash) IsZero() bool  { return h == "" }

// Short returns a log-friendly prefix of the hash.
func (h RecordHash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// parseHash accepts upper or lower case input and always returns the lowercase wire form.
func parseHash(s, label string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	if len(s) != HashHexLen {
		return "", dErrors.New(dErrors.CodeInvalidInput, label+" must be 64 hex characters")
	}
	s = strings.ToLower(s)
	if _, err := hex.DecodeString(s); err != nil {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	return s, nil
}
