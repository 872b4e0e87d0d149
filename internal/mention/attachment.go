// ABOUTME: Attachment model backing inline @name references: files, folders, apps
// ABOUTME: RefMap binds each display token to its path or app marker

package mention

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Kind distinguishes attachment variants.
type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
	KindApp    Kind = "app"
)

// appMarker prefixes RefMap values that stand for an application rather
// than a filesystem path.
const appMarker = "app:"

// MediaCounts is a folder's cached count of media files by kind.
type MediaCounts struct {
	Images int
	Videos int
	Audio  int
}

// Total returns the combined media file count.
func (m MediaCounts) Total() int {
	return m.Images + m.Videos + m.Audio
}

// Attachment is one entity shown alongside the input text. Created when a
// reference resolves; removed with Remove or when the input clears.
type Attachment struct {
	ID   string
	Name string // display name, without the leading '@'
	Kind Kind
	Path string // filesystem path; empty for apps

	Media MediaCounts // folders only
	Icon  []byte      // apps only
	Open  bool        // apps only: whether the app is currently open
}

// newAttachmentID mints an attachment id.
func newAttachmentID() string {
	return uuid.NewString()
}

// RefMap maps a display token ("@name") to a filesystem path or an opaque
// "app:<name>" marker. Every attachment currently shown has exactly one
// entry. Mutated only by its owning component.
type RefMap map[string]string

// Clone returns a copy of the map.
func (m RefMap) Clone() RefMap {
	out := make(RefMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// IsApp reports whether a RefMap value is an app marker.
func IsApp(value string) bool {
	return strings.HasPrefix(value, appMarker)
}

// AppName extracts the bare app name from an app marker value.
func AppName(value string) string {
	return strings.TrimPrefix(value, appMarker)
}

// displayName derives the token name for a filesystem path.
func displayName(path string) string {
	return filepath.Base(strings.TrimRight(path, "/"))
}
