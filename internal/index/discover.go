package index

import (
	"fmt"

	"repoknowledge/internal/hasher"
	"repoknowledge/internal/langdetect"
	"repoknowledge/internal/walker"
)

// discover runs phase 1.
func (p *Pipeline) discover(root string) ([]walker.FileInfo, error) {
	return walker.Discover(root, langdetect.Extensions(), p.Config.IgnorePatterns)
}

// diff runs phase 2. On a full reindex, the metadata and vector stores are
// cleared first and every discovered file is classified added (by passing
// ComputeDiff empty "existing" maps, which naturally routes every path
// through its added branch, content cache included).
func (p *Pipeline) diff(opts Options, discovered []walker.FileInfo) (hasher.Diff, hasher.ContentCache, error) {
	disc := make([]hasher.Discovered, len(discovered))
	for i, f := range discovered {
		disc[i] = hasher.Discovered{RelPath: f.RelPath, AbsPath: f.Path, Size: f.Size}
	}
	cache := make(hasher.ContentCache)

	if opts.Full {
		if err := p.Store.ClearAll(); err != nil {
			return hasher.Diff{}, nil, fmt.Errorf("clear metadata store: %w", err)
		}
		if err := p.Vectors.Recreate(); err != nil {
			return hasher.Diff{}, nil, fmt.Errorf("recreate vector store: %w", err)
		}
		diff, err := hasher.ComputeDiff(disc, map[string]string{}, map[string]string{}, cache)
		return diff, cache, err
	}

	hashes, err := p.Store.FileHashes()
	if err != nil {
		return hasher.Diff{}, nil, fmt.Errorf("load existing file hashes: %w", err)
	}
	existingHashes := make(map[string]string, len(hashes))
	existingSizes := make(map[string]string, len(hashes))
	for path, fh := range hashes {
		existingHashes[path] = fh.Hash
		existingSizes[path] = fmt.Sprintf("%d", fh.Size)
	}

	diff, err := hasher.ComputeDiff(disc, existingHashes, existingSizes, cache)
	return diff, cache, err
}

// applyRemovals evicts every file absent from discovery, metadata row
// first, then its vector-store rows (§9 dual-store consistency order).
func (p *Pipeline) applyRemovals(removed []string) error {
	for _, relPath := range removed {
		if _, _, err := p.Store.DeleteFile(relPath); err != nil {
			return fmt.Errorf("delete file %s: %w", relPath, err)
		}
		if err := p.Vectors.DeleteByFilePath(relPath); err != nil {
			return fmt.Errorf("delete vectors for %s: %w", relPath, err)
		}
	}
	return nil
}

// clearModified drops a modified file's symbols/chunks/edges/dependencies
// and vectors ahead of re-parsing, preserving the file's id.
func (p *Pipeline) clearModified(modified []hasher.Discovered) error {
	for _, d := range modified {
		id, ok, err := p.Store.GetFileID(d.RelPath)
		if err != nil {
			return fmt.Errorf("lookup file id for %s: %w", d.RelPath, err)
		}
		if !ok {
			continue
		}
		if err := p.Store.ClearFileContents(id); err != nil {
			return fmt.Errorf("clear contents of %s: %w", d.RelPath, err)
		}
		if err := p.Vectors.DeleteByFilePath(d.RelPath); err != nil {
			return fmt.Errorf("delete vectors for %s: %w", d.RelPath, err)
		}
	}
	return nil
}
