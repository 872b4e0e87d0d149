// ABOUTME: Installed-application catalog backing @app attachments
// ABOUTME: Linux .desktop entries and macOS .app bundles; icons loaded concurrently

package apps

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// AppInfo describes one installed application.
type AppInfo struct {
	Name        string // canonical name used in app markers
	DisplayName string
	Path        string // .desktop file or .app bundle
	Icon        []byte // PNG/JPEG/WebP payload; nil when unresolvable
	IconWidth   int
	IconHeight  int
	Open        bool // whether the app appears to be running

	iconRef string // Icon= value from the .desktop entry, pre-resolution
}

// Catalog is an immutable scan result. Lookup is case-insensitive over
// canonical and display names.
type Catalog struct {
	apps   []AppInfo
	byName map[string]int
}

// Scan enumerates installed applications from the platform's default
// locations. Individual unreadable entries or icons never fail the scan.
func Scan(ctx context.Context) (*Catalog, error) {
	return ScanDirs(ctx, defaultAppDirs(), defaultIconDirs())
}

// ScanDirs enumerates applications under appDirs, resolving icons against
// iconDirs. Split out from Scan for tests.
func ScanDirs(ctx context.Context, appDirs, iconDirs []string) (*Catalog, error) {
	var apps []AppInfo
	for _, dir := range appDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if app, ok := parseEntry(dir, entry.Name()); ok {
				apps = append(apps, app)
			}
		}
	}

	if err := loadIcons(ctx, apps, iconDirs); err != nil {
		return nil, err
	}
	markRunning(apps)

	sort.Slice(apps, func(i, j int) bool {
		return strings.ToLower(apps[i].DisplayName) < strings.ToLower(apps[j].DisplayName)
	})

	byName := make(map[string]int, len(apps)*2)
	for i, app := range apps {
		byName[strings.ToLower(app.Name)] = i
		byName[strings.ToLower(app.DisplayName)] = i
	}
	return &Catalog{apps: apps, byName: byName}, nil
}

// Apps returns all applications sorted by display name.
func (c *Catalog) Apps() []AppInfo {
	out := make([]AppInfo, len(c.apps))
	copy(out, c.apps)
	return out
}

// Resolve finds an application by canonical or display name.
func (c *Catalog) Resolve(name string) (AppInfo, bool) {
	i, ok := c.byName[strings.ToLower(name)]
	if !ok {
		return AppInfo{}, false
	}
	return c.apps[i], true
}

// AppIcon returns the icon payload for name. Satisfies the mention
// package's resolver interface.
func (c *Catalog) AppIcon(name string) ([]byte, bool) {
	app, ok := c.Resolve(name)
	if !ok || app.Icon == nil {
		return nil, false
	}
	return app.Icon, true
}

// AppOpen reports whether name resolves to an app that appears to be
// running. Satisfies the mention package's resolver interface.
func (c *Catalog) AppOpen(name string) bool {
	app, ok := c.Resolve(name)
	return ok && app.Open
}

// parseEntry builds an AppInfo from one directory entry, by platform
// convention: *.desktop files on Linux, *.app bundles on macOS.
func parseEntry(dir, name string) (AppInfo, bool) {
	path := filepath.Join(dir, name)
	switch {
	case strings.HasSuffix(name, ".desktop"):
		return parseDesktopFile(path)
	case strings.HasSuffix(name, ".app"):
		display := strings.TrimSuffix(name, ".app")
		return AppInfo{Name: display, DisplayName: display, Path: path}, true
	default:
		return AppInfo{}, false
	}
}

// desktopEntry holds the fields of a .desktop file this catalog consumes.
type desktopEntry struct {
	name      string
	icon      string
	exec      string
	entryType string
	noDisplay bool
	hidden    bool
}

// parseDesktopFile reads the [Desktop Entry] section of a freedesktop
// .desktop file.
func parseDesktopFile(path string) (AppInfo, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return AppInfo{}, false
	}

	var de desktopEntry
	inEntry := false
	for line := range strings.Lines(string(data)) {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "[") {
			inEntry = line == "[Desktop Entry]"
			continue
		}
		if !inEntry || line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		switch strings.TrimSpace(key) {
		case "Name":
			if de.name == "" {
				de.name = strings.TrimSpace(value)
			}
		case "Icon":
			de.icon = strings.TrimSpace(value)
		case "Exec":
			de.exec = strings.TrimSpace(value)
		case "Type":
			de.entryType = strings.TrimSpace(value)
		case "NoDisplay":
			de.noDisplay = strings.TrimSpace(value) == "true"
		case "Hidden":
			de.hidden = strings.TrimSpace(value) == "true"
		}
	}

	if de.name == "" || de.noDisplay || de.hidden {
		return AppInfo{}, false
	}
	if de.entryType != "" && de.entryType != "Application" {
		return AppInfo{}, false
	}

	return AppInfo{
		Name:        strings.TrimSuffix(filepath.Base(path), ".desktop"),
		DisplayName: de.name,
		Path:        path,
		iconRef:     de.icon,
	}, true
}

func defaultAppDirs() []string {
	if runtime.GOOS == "darwin" {
		return []string{"/Applications", "/System/Applications"}
	}
	home, _ := os.UserHomeDir()
	dirs := []string{"/usr/share/applications", "/usr/local/share/applications"}
	if home != "" {
		dirs = append(dirs, filepath.Join(home, ".local", "share", "applications"))
	}
	return dirs
}

func defaultIconDirs() []string {
	return []string{
		"/usr/share/pixmaps",
		"/usr/share/icons/hicolor/256x256/apps",
		"/usr/share/icons/hicolor/128x128/apps",
		"/usr/share/icons/hicolor/64x64/apps",
		"/usr/share/icons/hicolor/48x48/apps",
	}
}

// markRunning flips Open for apps whose executable name appears in the
// process table. Best effort; unsupported platforms leave Open false.
func markRunning(apps []AppInfo) {
	procs, err := os.ReadDir("/proc")
	if err != nil {
		return
	}
	running := make(map[string]bool)
	for _, p := range procs {
		if !p.IsDir() {
			continue
		}
		comm, err := os.ReadFile(filepath.Join("/proc", p.Name(), "comm"))
		if err != nil {
			continue
		}
		running[strings.ToLower(strings.TrimSpace(string(comm)))] = true
	}
	for i := range apps {
		if running[strings.ToLower(apps[i].Name)] {
			apps[i].Open = true
		}
	}
}
