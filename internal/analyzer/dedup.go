package analyzer

import (
	"image"
	"sync"

	"github.com/corona10/goimagehash"
)

// DuplicateFilter remembers the difference hashes of photos seen in one batch.
// It is safe for concurrent use.
type DuplicateFilter struct {
	threshold int

	mu     sync.Mutex
	hashes []*goimagehash.ImageHash
}

// NewDuplicateFilter returns a filter that treats hashes closer than
// threshold bits as the same photo. A threshold of 0 disables it.
func NewDuplicateFilter(threshold int) *DuplicateFilter {
	return &DuplicateFilter{threshold: threshold}
}

// Seen reports whether img is perceptually identical to a photo already
// passed to Seen. Unique photos are remembered. If hashing fails, or the
// photo has no horizontal gradient at all (a flat color hashes to zero),
// the photo is treated as unique and not remembered.
func (d *DuplicateFilter) Seen(img image.Image) bool {
	if d == nil || d.threshold <= 0 {
		return false
	}
	hash, err := goimagehash.DifferenceHash(img)
	if err != nil || hash.GetHash() == 0 {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, h := range d.hashes {
		dist, err := hash.Distance(h)
		if err == nil && dist < d.threshold {
			return true
		}
	}
	d.hashes = append(d.hashes, hash)
	return false
}

// Reset forgets every remembered hash.
func (d *DuplicateFilter) Reset() {
	d.mu.Lock()
	d.hashes = nil
	d.mu.Unlock()
}
