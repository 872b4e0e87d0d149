// ABOUTME: Media file counting for folder attachments, by extension kind
// ABOUTME: Top-level directory scan; unreadable folders count as empty

package mention

import (
	"os"
	"path/filepath"
	"strings"
)

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".webp": true, ".bmp": true, ".tiff": true, ".heic": true,
}

var videoExts = map[string]bool{
	".mp4": true, ".mov": true, ".avi": true, ".mkv": true,
	".webm": true, ".m4v": true,
}

var audioExts = map[string]bool{
	".mp3": true, ".wav": true, ".flac": true, ".m4a": true,
	".aac": true, ".ogg": true,
}

// CountMedia counts media files in the top level of dir by kind.
// A read failure returns zero counts; a folder attachment stays usable
// without them.
func CountMedia(dir string) MediaCounts {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return MediaCounts{}
	}

	var counts MediaCounts
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		switch {
		case imageExts[ext]:
			counts.Images++
		case videoExts[ext]:
			counts.Videos++
		case audioExts[ext]:
			counts.Audio++
		}
	}
	return counts
}
