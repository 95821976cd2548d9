// Package render builds the static experience page by literal token
// substitution into an HTML template chosen by style key.
package render

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"

	"ourxmas-backend/internal/models"
)

const DefaultStyle = "tree1"

const (
	TokenImageList      = "{{IMAGE_LIST}}"
	TokenLoveText       = "{{LOVE_TEXT}}"
	TokenPhotoCount     = "{{PHOTO_COUNT}}"
	TokenFoliageCount   = "{{FOLIAGE_COUNT}}"
	TokenMainTitle      = "{{MAIN_TITLE}}"
	TokenTreeColor      = "{{TREE_COLOR}}"
	TokenAccentColor    = "{{ACCENT_COLOR}}"
	TokenYouTubeVideoID = "{{YOUTUBE_VIDEO_ID}}"
	TokenAudioSrc       = "{{AUDIO_SRC}}"

	DefaultAudioSrc = "audio.mp3"
)

var ErrTemplateNotFound = errors.New("template not found")

var styleKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

//go:embed templates/*.html
var embeddedTemplates embed.FS

type TemplateSource interface {
	// ReadTemplate returns the document for a style key, or an error wrapping
	// ErrTemplateNotFound.
	ReadTemplate(style string) (string, error)
}

// FSSource reads "<style>.html" from a file system.
type FSSource struct {
	fsys fs.FS
}

func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{fsys: fsys}
}

func (s *FSSource) ReadTemplate(style string) (string, error) {
	if !styleKeyPattern.MatchString(style) {
		return "", fmt.Errorf("style %q: %w", style, ErrTemplateNotFound)
	}
	data, err := fs.ReadFile(s.fsys, style+".html")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("style %q: %w", style, ErrTemplateNotFound)
		}
		return "", fmt.Errorf("read template %q: %w", style, err)
	}
	return string(data), nil
}

// EmbeddedSource serves the templates compiled into the binary.
func EmbeddedSource() *FSSource {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		panic(err)
	}
	return NewFSSource(sub)
}

// LayeredSource tries each source in order and moves on only when a source
// reports the template as missing.
type LayeredSource []TemplateSource

func (l LayeredSource) ReadTemplate(style string) (string, error) {
	for _, src := range l {
		doc, err := src.ReadTemplate(style)
		if err == nil {
			return doc, nil
		}
		if !errors.Is(err, ErrTemplateNotFound) {
			return "", err
		}
	}
	return "", fmt.Errorf("style %q: %w", style, ErrTemplateNotFound)
}

type Config struct {
	TreeType       string
	MainTitle      string
	LoveText       string
	TreeColor      string
	AccentColor    string
	FoliageCount   int
	YouTubeVideoID string
	// AudioSrc is the page-relative audio path; empty means DefaultAudioSrc.
	AudioSrc string
}

func ConfigFromRequest(req *models.GenerationRequest) Config {
	return Config{
		TreeType:       req.TreeType,
		MainTitle:      req.MainTitle,
		LoveText:       req.LoveText,
		TreeColor:      req.TreeColor,
		AccentColor:    req.AccentColor,
		FoliageCount:   req.FoliageCount,
		YouTubeVideoID: req.YouTubeVideoID,
	}
}

type Renderer struct {
	source TemplateSource
}

func New(source TemplateSource) *Renderer {
	return &Renderer{source: source}
}

// ImagePaths returns image1.jpeg … imageN.jpeg.
func ImagePaths(n int) []string {
	paths := make([]string, n)
	for i := range paths {
		paths[i] = fmt.Sprintf("image%d.jpeg", i+1)
	}
	return paths
}

func (r *Renderer) Render(cfg Config, imageCount int) (string, error) {
	return r.RenderWithImages(cfg, ImagePaths(imageCount))
}

// RenderWithImages is Render with explicit relative image paths.
func (r *Renderer) RenderWithImages(cfg Config, images []string) (string, error) {
	doc, err := r.load(cfg.TreeType)
	if err != nil {
		return "", err
	}

	if images == nil {
		images = []string{}
	}
	audioSrc := cfg.AudioSrc
	if audioSrc == "" {
		audioSrc = DefaultAudioSrc
	}
	values := []struct {
		token string
		value interface{}
	}{
		{TokenImageList, images},
		{TokenLoveText, cfg.LoveText},
		{TokenPhotoCount, len(images)},
		{TokenFoliageCount, cfg.FoliageCount},
		{TokenMainTitle, cfg.MainTitle},
		{TokenTreeColor, cfg.TreeColor},
		{TokenAccentColor, cfg.AccentColor},
		{TokenYouTubeVideoID, cfg.YouTubeVideoID},
		{TokenAudioSrc, audioSrc},
	}

	pairs := make([]string, 0, len(values)*2)
	for _, v := range values {
		encoded, err := json.Marshal(v.value)
		if err != nil {
			return "", fmt.Errorf("encode %s: %w", v.token, err)
		}
		pairs = append(pairs, v.token, string(encoded))
	}

	return strings.NewReplacer(pairs...).Replace(doc), nil
}

func (r *Renderer) load(style string) (string, error) {
	if style == "" {
		style = DefaultStyle
	}
	doc, err := r.source.ReadTemplate(style)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, ErrTemplateNotFound) || style == DefaultStyle {
		return "", err
	}
	return r.source.ReadTemplate(DefaultStyle)
}
