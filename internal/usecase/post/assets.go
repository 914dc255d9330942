package post

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/kokoromi/redraft/internal/domain/model/post"
)

// buildAssetInfos fingerprints existing files into asset references.
// Missing paths are skipped, matching the tolerant original behavior.
func buildAssetInfos(fs afero.Fs, paths []string) []post.Asset {
	var out []post.Asset
	for _, p := range paths {
		info, err := fs.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		sum, err := hashFile(fs, p)
		if err != nil {
			continue
		}
		out = append(out, post.Asset{
			Path:      p,
			Kind:      "image",
			SizeBytes: info.Size(),
			SHA256:    sum,
			Validated: true,
		})
	}
	return out
}

func hashFile(fs afero.Fs, path string) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// copyAssetsInto copies source files into the post's assets directory for
// isolation and returns the destination paths.
func copyAssetsInto(fs afero.Fs, destDir string, paths []string) ([]string, error) {
	if err := fs.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create assets dir: %w", err)
	}
	var copied []string
	for _, src := range paths {
		if ok, err := afero.Exists(fs, src); err != nil || !ok {
			continue
		}
		dst := filepath.Join(destDir, filepath.Base(src))
		if err := copyFile(fs, src, dst); err != nil {
			return nil, fmt.Errorf("copy asset %s: %w", src, err)
		}
		copied = append(copied, dst)
	}
	return copied, nil
}

func copyFile(fs afero.Fs, src, dst string) error {
	in, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := fs.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
