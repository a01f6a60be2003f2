// Package archive stores generated readings as Markdown files, one directory
// per user.
package archive

import "time"

// FileMeta describes one archived document.
type FileMeta struct {
	Path      string
	Checksum  string
	UpdatedAt time.Time
}

// Provider is the interface for archive file operations. Paths are relative
// to the archive root.
type Provider interface {
	// List returns metadata for every .md file under dir.
	List(dir string) ([]FileMeta, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
}

// PathFor returns the archive path of a reading.
func PathFor(userID, readingID string) string {
	return sanitize(userID) + "/" + sanitize(readingID) + ".md"
}

// sanitize keeps ids to a single safe path element.
func sanitize(s string) string {
	b := []byte(s)
	for i, c := range b {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			b[i] = '_'
		}
	}
	if len(b) == 0 {
		return "_"
	}
	return string(b)
}
