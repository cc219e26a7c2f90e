// Package ledger computes content fingerprints and change verdicts so that
// repeated extraction runs over an unchanged corpus are no-ops.
package ledger

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"github.com/teranos/azsku/errors"
)

// VolatileField is excluded from entity fingerprints.
const VolatileField = "last_updated_azure"

// DocumentFingerprint is the hex sha256 of a document's raw bytes.
func DocumentFingerprint(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// CompositeFingerprint combines the fingerprints of every document an entity
// was read from. Paths are sorted so the result is order independent.
func CompositeFingerprint(fingerprints map[string]string) string {
	paths := make([]string, 0, len(fingerprints))
	for p := range fingerprints {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	for _, p := range paths {
		b.WriteString(p)
		b.WriteByte('=')
		b.WriteString(fingerprints[p])
		b.WriteByte('\n')
	}
	return DocumentFingerprint([]byte(b.String()))
}

// Recompute rebuilds a composite fingerprint for deps from current document
// fingerprints. ok is false when a dependency no longer exists.
func Recompute(deps []string, current map[string]string) (string, bool) {
	subset := make(map[string]string, len(deps))
	for _, d := range deps {
		fp, ok := current[d]
		if !ok {
			return "", false
		}
		subset[d] = fp
	}
	return CompositeFingerprint(subset), true
}

// EntityFingerprint hashes the canonical JSON form of v with the volatile
// timestamp removed. v must serialize to a JSON object.
func EntityFingerprint(v any) (string, error) {
	canonical, err := Canonical(v)
	if err != nil {
		return "", err
	}
	return DocumentFingerprint(canonical), nil
}

// Canonical returns v as JSON with object keys sorted and the volatile
// timestamp removed.
func Canonical(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize entity")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, errors.Wrap(err, "entity does not serialize to an object")
	}
	delete(fields, VolatileField)
	out, err := json.Marshal(fields)
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize canonical entity")
	}
	return out, nil
}

// Verdict is the outcome of comparing a fresh fingerprint with the recorded one.
type Verdict int

const (
	New Verdict = iota
	Changed
	Unchanged
)

func (v Verdict) String() string {
	switch v {
	case New:
		return "new"
	case Changed:
		return "changed"
	case Unchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// Compare decides the verdict for current given the previous fingerprint.
// found is false when nothing was recorded before.
func Compare(previous, current string, found bool) Verdict {
	switch {
	case !found:
		return New
	case previous == current:
		return Unchanged
	default:
		return Changed
	}
}
