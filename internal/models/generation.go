package models

type DeployTarget string

const (
	DeployTargetObjectStore DeployTarget = "s3"
	DeployTargetLocal       DeployTarget = "local"
)

func (t DeployTarget) Valid() bool {
	return t == DeployTargetObjectStore || t == DeployTargetLocal
}

// ImageAsset is an uploaded body image. After validation it is always JPEG
// encoded unless transcoding fell back to the original bytes.
type ImageAsset struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
	Size        int64
}

type AudioAsset struct {
	Filename    string
	ContentType string
	Data        []byte
}

// GenerationRequest is the validated, defaulted form of a generate call.
type GenerationRequest struct {
	ProjectName    string
	TreeType       string
	MainTitle      string
	LoveText       string
	TreeColor      string
	AccentColor    string
	FoliageCount   int
	DeployTo       DeployTarget
	BodyImages     []ImageAsset
	Music          *AudioAsset
	YouTubeVideoID string
}
