package entity

import "time"

// Job statuses
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// SourceImage is one uploaded input image.
type SourceImage struct {
	Name string `json:"name"`
	Data []byte `json:"-"`
}

type SourceInfo struct {
	Name        string  `json:"name"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Orientation string  `json:"orientation"`
	AspectRatio float64 `json:"aspect_ratio"`
	Size        int64   `json:"size"`
	SizeHuman   string  `json:"size_human,omitempty"`
}

// Composite is the stored metadata of an asynchronous composite job.
type Composite struct {
	ID              string       `json:"id"`
	Status          string       `json:"status"`
	Format          string       `json:"format"`
	DownscaleFactor float64      `json:"downscale_factor"`
	Sources         []SourceInfo `json:"sources,omitempty"`
	Strategy        string       `json:"strategy,omitempty"`
	Layout          string       `json:"layout,omitempty"`
	Width           int          `json:"width,omitempty"`
	Height          int          `json:"height,omitempty"`
	Score           float64      `json:"score,omitempty"`
	FileSize        int64        `json:"file_size,omitempty"`
	Error           string       `json:"error,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	CompletedAt     *time.Time   `json:"completed_at,omitempty"`
}

// CompositeTask is the Kafka message asking the processor to build a composite.
type CompositeTask struct {
	CompositeID     string   `json:"composite_id"`
	Sources         []string `json:"sources"`
	DownscaleFactor float64  `json:"downscale_factor"`
	Format          string   `json:"format"`
}

// ComposeOptions left empty fall back to the service defaults. A nil
// DownscaleFactor means the request did not set one.
type ComposeOptions struct {
	DownscaleFactor *float64
	Format          string
}

// ComposeResult is a synchronously built composite, already encoded.
type ComposeResult struct {
	Data        []byte
	ContentType string
	Strategy    string
	Width       int
	Height      int
	Cached      bool
}

type UploadResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type CompositeResponse struct {
	ID       string       `json:"id"`
	Status   string       `json:"status"`
	Strategy string       `json:"strategy,omitempty"`
	Width    int          `json:"width,omitempty"`
	Height   int          `json:"height,omitempty"`
	Score    float64      `json:"score,omitempty"`
	Sources  []SourceInfo `json:"sources,omitempty"`
	FileURL  string       `json:"file_url,omitempty"`
	Error    string       `json:"error,omitempty"`
}

type OrientationSummary struct {
	Portrait  int `json:"portrait"`
	Landscape int `json:"landscape"`
	Square    int `json:"square"`
}

type CandidateInfo struct {
	Layout string  `json:"layout"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Score  float64 `json:"score"`
}

// Analysis describes uploaded images and the arrangement they would get, without rendering.
type Analysis struct {
	Sources        []SourceInfo       `json:"sources"`
	Orientations   OrientationSummary `json:"orientations"`
	TotalSize      int64              `json:"total_size"`
	TotalSizeHuman string             `json:"total_size_human"`
	Strategy       string             `json:"strategy"`
	Candidates     []CandidateInfo    `json:"candidates"`
	Best           CandidateInfo      `json:"best"`
	OutputWidth    int                `json:"output_width"`
	OutputHeight   int                `json:"output_height"`
}
