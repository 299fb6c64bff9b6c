// Package hasher computes content hashes and diffs a discovered file set
// against what the metadata store already knows about.
package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strconv"
)

// HashContent returns the hex-encoded SHA-256 digest of b.
func HashContent(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// HashFile reads path and returns its content alongside its hash.
func HashFile(path string) ([]byte, string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return b, HashContent(b), nil
}

// Discovered describes one file found by the walker, prior to hashing.
type Discovered struct {
	RelPath string
	AbsPath string
	Size    int64
}

// Diff partitions a discovered file set into added, modified, unchanged and
// removed relative to what the metadata store persisted on the prior run.
type Diff struct {
	Added     []Discovered
	Modified  []Discovered
	Unchanged []Discovered
	Removed   []string
}

// ContentCache records the bytes read while hashing a file, keyed by its
// relative path, so the pipeline's parse phase does not re-read it.
type ContentCache map[string][]byte

// ComputeDiff classifies each discovered file as added, modified or
// unchanged against existingHashes/existingSizes (both keyed by relative
// path), and reports any persisted path absent from discovered as removed.
//
// A file whose on-disk size differs from the persisted size is classified
// modified without being read. Otherwise the file is read, its bytes
// recorded in cache (so later phases can reuse them), and it is
// classified by hash equality.
func ComputeDiff(discovered []Discovered, existingHashes, existingSizes map[string]string, cache ContentCache) (Diff, error) {
	var diff Diff
	seen := make(map[string]bool, len(discovered))

	for _, d := range discovered {
		seen[d.RelPath] = true

		existingHash, known := existingHashes[d.RelPath]
		if !known {
			b, _, err := HashFile(d.AbsPath)
			if err != nil {
				return diff, err
			}
			cache[d.RelPath] = b
			diff.Added = append(diff.Added, d)
			continue
		}

		if existingSizes != nil {
			if sizeStr, ok := existingSizes[d.RelPath]; ok && sizeStr != "" {
				if sizeStr != sizeOf(d.Size) {
					diff.Modified = append(diff.Modified, d)
					continue
				}
			}
		}

		b, hash, err := HashFile(d.AbsPath)
		if err != nil {
			return diff, err
		}
		cache[d.RelPath] = b

		if hash == existingHash {
			diff.Unchanged = append(diff.Unchanged, d)
		} else {
			diff.Modified = append(diff.Modified, d)
		}
	}

	for path := range existingHashes {
		if !seen[path] {
			diff.Removed = append(diff.Removed, path)
		}
	}

	return diff, nil
}

func sizeOf(n int64) string {
	return strconv.FormatInt(n, 10)
}
