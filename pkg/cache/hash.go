package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/matzehuels/dirmap/pkg/fstree"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Fingerprint summarizes a tree's root path, shape, names and sizes as 16
// hex digits. Trees that would render differently have different
// fingerprints.
func Fingerprint(root *fstree.Node) string {
	d := xxhash.New()
	var num [8]byte
	if root != nil {
		_, _ = d.WriteString(root.Path)
	}
	fstree.Walk(root, func(n *fstree.Node) bool {
		_, _ = d.WriteString(n.Name)
		binary.LittleEndian.PutUint64(num[:], uint64(n.Size))
		_, _ = d.Write(num[:])
		binary.LittleEndian.PutUint64(num[:], uint64(len(n.Children)))
		_, _ = d.Write(num[:])
		if n.IsDir {
			_, _ = d.Write([]byte{1})
		} else {
			_, _ = d.Write([]byte{0})
		}
		return true
	})
	return fmt.Sprintf("%016x", d.Sum64())
}

// ETag returns a quoted HTTP entity tag for data.
func ETag(data []byte) string {
	return strconv.Quote(fmt.Sprintf("%016x", xxhash.Sum64(data)))
}
