// Package deploy publishes a rendered experience page and its assets either
// to an object store or to a local preview directory.
package deploy

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"ourxmas-backend/internal/logger"
	"ourxmas-backend/internal/models"
)

const (
	IndexFile = "index.html"
	AudioFile = "audio.mp3"

	ContentTypeHTML  = "text/html; charset=utf-8"
	ContentTypeJPEG  = "image/jpeg"
	ContentTypeAudio = "audio/mpeg"
)

//go:embed assets/default_audio.mp3
var defaultAudio []byte

var ErrDeployerNotConfigured = errors.New("object store deployer not configured")

// UpstreamWriteError reports the object or file whose write aborted a
// deployment. Objects written before it are left in place.
type UpstreamWriteError struct {
	ProjectID string
	Key       string
	Err       error
}

func (e *UpstreamWriteError) Error() string {
	return fmt.Sprintf("deploy %s: write %s: %v", e.ProjectID, e.Key, e.Err)
}

func (e *UpstreamWriteError) Unwrap() error { return e.Err }

// ObjectStore is the minimal put-only contract the deployer needs.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
}

type Bundle struct {
	ProjectID string
	Target    models.DeployTarget
	HTML      string
	Images    []models.ImageAsset
	Audio     *models.AudioAsset
}

type Options struct {
	// Domain is the zone under which each project gets its own host.
	Domain         string
	PreviewDir     string
	PreviewBaseURL string
	Workers        int
	Timeout        time.Duration
}

type Deployer struct {
	store ObjectStore
	opts  Options
	log   *logger.Logger
}

// New returns a Deployer. store may be nil, in which case object-store
// deployments fail with ErrDeployerNotConfigured.
func New(store ObjectStore, opts Options, log *logger.Logger) *Deployer {
	if opts.Workers < 1 {
		opts.Workers = 4
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Deployer{store: store, opts: opts, log: log.With("component", "Deployer")}
}

// Ready reports whether target can be deployed to.
func (d *Deployer) Ready(target models.DeployTarget) error {
	if target == models.DeployTargetObjectStore && d.store == nil {
		return ErrDeployerNotConfigured
	}
	return nil
}

// ImagePaths returns the relative paths the page must reference for images
// deployed to target.
func (d *Deployer) ImagePaths(target models.DeployTarget, images []models.ImageAsset) []string {
	if target == models.DeployTargetLocal {
		return localImageNames(images)
	}
	paths := make([]string, len(images))
	for i := range images {
		paths[i] = objectImageName(i)
	}
	return paths
}

// Deploy writes the bundle and returns its public URL.
func (d *Deployer) Deploy(ctx context.Context, b Bundle) (string, error) {
	if err := d.Ready(b.Target); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	defer cancel()

	start := time.Now()
	var (
		url string
		err error
	)
	switch b.Target {
	case models.DeployTargetObjectStore:
		url, err = d.deployObjectStore(ctx, b)
	case models.DeployTargetLocal:
		url, err = d.deployLocal(ctx, b)
	default:
		return "", fmt.Errorf("unknown deploy target %q", b.Target)
	}
	if err != nil {
		return "", err
	}

	d.log.Info("deployment complete",
		"project_id", b.ProjectID,
		"target", b.Target,
		"images", len(b.Images),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return url, nil
}

func (d *Deployer) publicURL(projectID string) string {
	return fmt.Sprintf("https://%s.%s", projectID, strings.TrimPrefix(d.opts.Domain, "."))
}

func audioData(a *models.AudioAsset) []byte {
	if a != nil && len(a.Data) > 0 {
		return a.Data
	}
	return defaultAudio
}

// DefaultAudio returns the bundled track used when no music was uploaded.
func DefaultAudio() []byte {
	return defaultAudio
}

// AudioPath returns the page-relative path the audio track is written to.
func (d *Deployer) AudioPath(target models.DeployTarget, audio *models.AudioAsset, images []models.ImageAsset) string {
	if target == models.DeployTargetLocal {
		return localAudioName(audio, localImageNames(images))
	}
	return AudioFile
}
