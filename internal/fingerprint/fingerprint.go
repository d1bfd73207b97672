// Package fingerprint binds a document to its declared property facts.
//
// A record hash is SHA-256(contentHashHex || SHA-256(canonicalJSON(facts))hex), all hex
// lowercase. The canonical JSON is the wire contract with every other producer of record
// hashes (the browser client included), so the key order and the string escaping below
// must not change.
package fingerprint

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"

	"deedgate/pkg/domain"
)

// Facts are the nine declared property fields covered by the record hash, in canonical order.
// Values are hashed exactly as given: no trimming, no case folding.
type Facts struct {
	Owner         string `json:"owner"`
	OwnerID       string `json:"ownerId"`
	PropertyTitle string `json:"propertyTitle"`
	PropertyType  string `json:"propertyType"`
	Location      string `json:"location"`
	Size          string `json:"size"`
	Beds          string `json:"beds"`
	Baths         string `json:"baths"`
	Year          string `json:"year"`
}

// FieldNames lists the canonical key order.
var FieldNames = []string{
	"owner", "ownerId", "propertyTitle", "propertyType", "location", "size", "beds", "baths", "year",
}

// Fingerprint holds every hash derived for one submission.
type Fingerprint struct {
	ContentHash  domain.ContentHash
	MetadataHash string
	RecordHash   domain.RecordHash
}

// FactsFromMap builds the fixed-key form from fields supplied in any order.
// Missing keys become the empty string; unknown keys are ignored.
func FactsFromMap(fields map[string]string) Facts {
	return Facts{
		Owner:         fields["owner"],
		OwnerID:       fields["ownerId"],
		PropertyTitle: fields["propertyTitle"],
		PropertyType:  fields["propertyType"],
		Location:      fields["location"],
		Size:          fields["size"],
		Beds:          fields["beds"],
		Baths:         fields["baths"],
		Year:          fields["year"],
	}
}

// ContentHash returns the SHA-256 of raw document bytes.
func ContentHash(data []byte) domain.ContentHash {
	sum := sha256.Sum256(data)
	return domain.ContentHash(hex.EncodeToString(sum[:]))
}

// ContentHashReader streams r through SHA-256. Only I/O errors are returned.
func ContentHashReader(r io.Reader) (domain.ContentHash, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return domain.ContentHash(hex.EncodeToString(h.Sum(nil))), nil
}

// CanonicalJSON serializes facts in canonical key order without HTML escaping,
// producing the same bytes as JSON.stringify for the same strings.
func CanonicalJSON(f Facts) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a struct of strings cannot fail.
	_ = enc.Encode(f)
	out := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	return unescapeLineSeparators(out)
}

// MetadataHash is the hex SHA-256 of the canonical JSON.
func MetadataHash(f Facts) string {
	sum := sha256.Sum256(CanonicalJSON(f))
	return hex.EncodeToString(sum[:])
}

// BuildRecordHash combines a content hash with the metadata hash of facts.
func BuildRecordHash(contentHash domain.ContentHash, f Facts) domain.RecordHash {
	return combine(contentHash, MetadataHash(f))
}

// Build hashes a document and its facts in one pass.
func Build(data []byte, f Facts) Fingerprint {
	contentHash := ContentHash(data)
	metadataHash := MetadataHash(f)
	return Fingerprint{
		ContentHash:  contentHash,
		MetadataHash: metadataHash,
		RecordHash:   combine(contentHash, metadataHash),
	}
}

func combine(contentHash domain.ContentHash, metadataHash string) domain.RecordHash {
	sum := sha256.Sum256([]byte(string(contentHash) + metadataHash))
	return domain.RecordHash(hex.EncodeToString(sum[:]))
}

// unescapeLineSeparators reverts encoding/json's \u2028 and \u2029 escapes, which
// JSON.stringify leaves as raw characters. Escaped backslashes are skipped pairwise so
// a literal `\\u2028` in the input is left alone.
func unescapeLineSeparators(b []byte) []byte {
	if !bytes.Contains(b, []byte(`\u202`)) {
		return b
	}
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 >= len(b) {
			out = append(out, b[i])
			continue
		}
		if b[i+1] == 'u' && i+6 <= len(b) {
			switch string(b[i+2 : i+6]) {
			case "2028":
				out = append(out, "\u2028"...)
				i += 5
				continue
			case "2029":
				out = append(out, "\u2029"...)
				i += 5
				continue
			}
		}
		out = append(out, b[i], b[i+1])
		i++
	}
	return out
}
