package deploy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ourxmas-backend/internal/models"
)

// localImageNames keeps each image's own filename, reduced to its base name
// and made unique within the bundle.
func localImageNames(images []models.ImageAsset) []string {
	names := make([]string, len(images))
	used := map[string]bool{IndexFile: true, AudioFile: true}
	for i, img := range images {
		name := safeBaseName(img.Filename)
		if name == "" {
			name = objectImageName(i)
		}
		if used[name] {
			name = fmt.Sprintf("%d_%s", i+1, name)
		}
		used[name] = true
		names[i] = name
	}
	return names
}

func localAudioName(a *models.AudioAsset, imageNames []string) string {
	if a == nil || len(a.Data) == 0 {
		return AudioFile
	}
	name := safeBaseName(a.Filename)
	if name == "" || name == IndexFile {
		return AudioFile
	}
	for _, n := range imageNames {
		if n == name {
			return AudioFile
		}
	}
	return name
}

func safeBaseName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return ""
	}
	return name
}

// deployLocal writes the bundle under PreviewDir/<project>/ and returns the
// loopback preview URL.
func (d *Deployer) deployLocal(ctx context.Context, b Bundle) (string, error) {
	dir := filepath.Join(d.opts.PreviewDir, b.ProjectID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &UpstreamWriteError{ProjectID: b.ProjectID, Key: dir, Err: err}
	}

	write := func(name string, data []byte) error {
		p := filepath.Join(dir, name)
		if err := ctx.Err(); err != nil {
			return &UpstreamWriteError{ProjectID: b.ProjectID, Key: p, Err: err}
		}
		if err := os.WriteFile(p, data, 0o644); err != nil {
			d.log.Error("preview write failed", "project_id", b.ProjectID, "path", p, "error", err)
			return &UpstreamWriteError{ProjectID: b.ProjectID, Key: p, Err: err}
		}
		return nil
	}

	names := localImageNames(b.Images)
	for i, name := range names {
		if err := write(name, b.Images[i].Data); err != nil {
			return "", err
		}
	}
	if err := write(localAudioName(b.Audio, names), audioData(b.Audio)); err != nil {
		return "", err
	}
	if err := write(IndexFile, []byte(b.HTML)); err != nil {
		return "", err
	}

	base := strings.TrimSuffix(d.opts.PreviewBaseURL, "/")
	return fmt.Sprintf("%s/preview/%s/%s", base, b.ProjectID, IndexFile), nil
}
