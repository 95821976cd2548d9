// Package validator turns a parsed generate form into a GenerationRequest,
// aggregating one error per field.
package validator

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
	"ourxmas-backend/internal/imageproc"
	"ourxmas-backend/internal/logger"
	"ourxmas-backend/internal/models"
)

const (
	MinImages     = 5
	MaxImages     = 15
	MaxNameLen    = 63
	MaxMusicBytes = 10 * 1024 * 1024

	FieldProjectName  = "projectName"
	FieldYouTubeURL   = "youtubeUrl"
	FieldBodyImages   = "bodyImages"
	FieldMusic        = "music"
	FieldTreeType     = "treeType"
	FieldMainTitle    = "mainTitle"
	FieldLoveText     = "loveText"
	FieldTreeColor    = "treeColor"
	FieldAccentColor  = "accentColor"
	FieldFoliageCount = "foliageCount"
	FieldDeployTo     = "deployTo"

	bodyImagePrefix = "bodyImage"
)

const (
	DefaultTreeType     = "tree1"
	DefaultMainTitle    = "MERRY CHRISTMAS"
	DefaultLoveText     = "I LOVE YOU ❤️"
	DefaultTreeColor    = "#004225"
	DefaultAccentColor  = "#FFD700"
	DefaultFoliageCount = 15000
	DefaultDeployTo     = models.DeployTargetObjectStore
)

var projectNamePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// ValidationError maps a form field to the first problem found with it.
type ValidationError struct {
	Errors map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for field, msg := range e.Errors {
		fields = append(fields, field+": "+msg)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, "; ")
}

type fieldErrors map[string]string

// add keeps the first message recorded for a field.
func (f fieldErrors) add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

type Validator struct {
	workers int
	log     *logger.Logger
}

// New returns a Validator that transcodes at most workers images at a time.
func New(workers int, log *logger.Logger) *Validator {
	if workers < 1 {
		workers = 1
	}
	return &Validator{workers: workers, log: log.With("component", "Validator")}
}

// ValidateProjectName checks an already normalized project name.
func ValidateProjectName(name string) (bool, string) {
	if strings.TrimSpace(name) == "" {
		return false, "Project name is required"
	}
	name = strings.TrimSpace(name)
	if !projectNamePattern.MatchString(name) {
		return false, "Project name can only contain letters (A-Z, a-z) and numbers (0-9)"
	}
	if len(name) > MaxNameLen {
		return false, fmt.Sprintf("Project name must be %d characters or less", MaxNameLen)
	}
	return true, ""
}

// NormalizeProjectName trims and lowercases a submitted project name.
func NormalizeProjectName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Validate runs every field check and returns either a populated request or a
// *ValidationError carrying all field errors. A non-validation error is only
// returned when ctx is cancelled during transcoding.
func (v *Validator) Validate(ctx context.Context, form *models.Form) (*models.GenerationRequest, error) {
	errs := fieldErrors{}

	rawName, _ := form.Value(FieldProjectName)
	projectName := NormalizeProjectName(rawName)
	if ok, msg := ValidateProjectName(projectName); !ok {
		errs.add(FieldProjectName, msg)
	}

	var videoID string
	if rawURL, _ := form.Value(FieldYouTubeURL); strings.TrimSpace(rawURL) != "" {
		videoID = ExtractYouTubeVideoID(rawURL)
		if videoID == "" {
			errs.add(FieldYouTubeURL, "Invalid YouTube URL. Please provide a valid YouTube video link.")
		}
	}

	images, music := v.collectFiles(form, errs)

	switch {
	case len(images) < MinImages:
		errs[FieldBodyImages] = fmt.Sprintf("Please upload at least %d images (currently: %d)", MinImages, len(images))
	case len(images) > MaxImages:
		errs[FieldBodyImages] = fmt.Sprintf("Maximum %d images allowed (currently: %d)", MaxImages, len(images))
	}

	foliage := DefaultFoliageCount
	if raw := textOr(form, FieldFoliageCount, ""); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			errs.add(FieldFoliageCount, "Foliage count must be a positive integer")
		} else {
			foliage = n
		}
	}

	target := models.DeployTarget(strings.ToLower(textOr(form, FieldDeployTo, string(DefaultDeployTo))))
	if !target.Valid() {
		errs.add(FieldDeployTo, fmt.Sprintf("Deployment target must be %q or %q", models.DeployTargetObjectStore, models.DeployTargetLocal))
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	if err := v.transcode(ctx, images); err != nil {
		return nil, err
	}

	return &models.GenerationRequest{
		ProjectName:    projectName,
		TreeType:       textOr(form, FieldTreeType, DefaultTreeType),
		MainTitle:      textOr(form, FieldMainTitle, DefaultMainTitle),
		LoveText:       textOr(form, FieldLoveText, DefaultLoveText),
		TreeColor:      textOr(form, FieldTreeColor, DefaultTreeColor),
		AccentColor:    textOr(form, FieldAccentColor, DefaultAccentColor),
		FoliageCount:   foliage,
		DeployTo:       target,
		BodyImages:     images,
		Music:          music,
		YouTubeVideoID: videoID,
	}, nil
}

// collectFiles walks file parts in submission order. Repeated filenames are
// skipped silently and unknown fields are dropped.
func (v *Validator) collectFiles(form *models.Form, errs fieldErrors) ([]models.ImageAsset, *models.AudioAsset) {
	seen := make(map[string]bool)
	var images []models.ImageAsset
	var music *models.AudioAsset

	for _, field := range form.Files() {
		part := field.File
		if part.Filename == "" || seen[part.Filename] {
			continue
		}
		seen[part.Filename] = true

		contentType := part.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		switch {
		case isBodyImageField(field.Name):
			if err := imageproc.Check(part.Filename, contentType, len(part.Data)); err != nil {
				errs.add(FieldBodyImages, err.Error())
				continue
			}
			images = append(images, models.ImageAsset{
				Field:       field.Name,
				Filename:    part.Filename,
				ContentType: contentType,
				Data:        part.Data,
				Size:        int64(len(part.Data)),
			})
		case field.Name == FieldMusic:
			if music != nil {
				continue
			}
			if msg := checkMusic(part.Filename, contentType, len(part.Data)); msg != "" {
				errs.add(FieldMusic, msg)
				continue
			}
			music = &models.AudioAsset{Filename: part.Filename, ContentType: "audio/mpeg", Data: part.Data}
		}
	}

	return images, music
}

// transcode converts images in place on a bounded pool.
func (v *Validator) transcode(ctx context.Context, images []models.ImageAsset) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.workers)

	for i := range images {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img := &images[i]
			res := imageproc.Transcode(img.Data, img.Filename)
			if res.FallbackUsed {
				v.log.Warn("image conversion failed, keeping original", "filename", img.Filename, "error", res.FallbackErr)
			}
			img.Data = res.Data
			img.Filename = res.Filename
			img.ContentType = res.ContentType
			img.Size = int64(len(res.Data))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("transcode images: %w", err)
	}
	return nil
}

func isBodyImageField(name string) bool {
	return strings.HasPrefix(name, bodyImagePrefix) || name == FieldBodyImages
}

func checkMusic(filename, contentType string, size int) string {
	if imageproc.Extension(filename) != ".mp3" && strings.ToLower(contentType) != "audio/mpeg" {
		return fmt.Sprintf("Invalid music type: %s. Allowed format: MP3", filename)
	}
	if size > MaxMusicBytes {
		return fmt.Sprintf("Music '%s' exceeds 10 MB limit", filename)
	}
	return ""
}

// textOr returns the trimmed field value, or def when the field is absent or
// blank.
func textOr(form *models.Form, name, def string) string {
	v, ok := form.Value(name)
	if !ok {
		return def
	}
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
