// ABOUTME: Concurrent icon resolution and decoding for the app catalog
// ABOUTME: Icon names resolve against theme dirs; a bad icon never fails the scan

package apps

import (
	"bytes"
	"context"
	"image"
	"os"
	"path/filepath"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// iconLoadConcurrency bounds the parallel icon reads during a scan.
const iconLoadConcurrency = 8

var iconExtensions = []string{".png", ".jpg", ".jpeg", ".webp"}

// loadIcons resolves and decodes icons for all apps in place. Missing or
// undecodable icons leave Icon nil; only context cancellation fails the call.
func loadIcons(ctx context.Context, apps []AppInfo, iconDirs []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(iconLoadConcurrency)

	for i := range apps {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := resolveIconPath(apps[i].iconRef, iconDirs)
			if path == "" {
				return nil
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return nil
			}
			cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
			if err != nil {
				return nil
			}
			apps[i].Icon = data
			apps[i].IconWidth = cfg.Width
			apps[i].IconHeight = cfg.Height
			return nil
		})
	}
	return g.Wait()
}

// resolveIconPath maps a .desktop Icon= value to a readable file. Absolute
// paths are taken as-is; bare names search iconDirs with known extensions.
func resolveIconPath(ref string, iconDirs []string) string {
	if ref == "" {
		return ""
	}
	if filepath.IsAbs(ref) {
		if _, err := os.Stat(ref); err == nil {
			return ref
		}
		return ""
	}
	for _, dir := range iconDirs {
		for _, ext := range iconExtensions {
			candidate := filepath.Join(dir, ref+ext)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}
