// Package storage defines the vault file-system abstraction consumed by
// the upload pipeline and its surfaces.
package storage

// Provider is the interface for vault file operations. All paths are
// relative to the vault root.
type Provider interface {
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// ListImages returns the vault-relative paths of every image file
	// under dir (empty for the whole vault).
	ListImages(dir string) ([]string, error)
	// Resolve maps a link target found in the note at notePath to a
	// vault-relative path, trying vault-root relative first and then
	// note-directory relative. The boolean is false when neither exists.
	Resolve(notePath, target string) (string, bool)
}
