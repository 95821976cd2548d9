package deploy

import (
	"context"
	"fmt"
	"path"

	"golang.org/x/sync/errgroup"
)

func objectImageName(i int) string {
	return fmt.Sprintf("image%d.jpeg", i+1)
}

// deployObjectStore uploads images and audio concurrently and writes
// index.html only once every asset is in place.
func (d *Deployer) deployObjectStore(ctx context.Context, b Bundle) (string, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.Workers)

	put := func(key string, data []byte, contentType string) func() error {
		return func() error {
			if err := gctx.Err(); err != nil {
				return &UpstreamWriteError{ProjectID: b.ProjectID, Key: key, Err: err}
			}
			if err := d.store.PutObject(gctx, key, data, contentType); err != nil {
				d.log.Error("object write failed", "project_id", b.ProjectID, "key", key, "error", err)
				return &UpstreamWriteError{ProjectID: b.ProjectID, Key: key, Err: err}
			}
			return nil
		}
	}

	for i, img := range b.Images {
		contentType := img.ContentType
		if contentType == "" {
			contentType = ContentTypeJPEG
		}
		g.Go(put(path.Join(b.ProjectID, objectImageName(i)), img.Data, contentType))
	}
	g.Go(put(path.Join(b.ProjectID, AudioFile), audioData(b.Audio), ContentTypeAudio))

	if err := g.Wait(); err != nil {
		return "", err
	}

	indexKey := path.Join(b.ProjectID, IndexFile)
	if err := d.store.PutObject(ctx, indexKey, []byte(b.HTML), ContentTypeHTML); err != nil {
		d.log.Error("object write failed", "project_id", b.ProjectID, "key", indexKey, "error", err)
		return "", &UpstreamWriteError{ProjectID: b.ProjectID, Key: indexKey, Err: err}
	}

	return d.publicURL(b.ProjectID), nil
}
