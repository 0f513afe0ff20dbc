package publish

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/drewsiph/sitekeeper/internal/common"
)

// NoteInput is a note publish request. Tags and language fall back to the
// site defaults when empty.
type NoteInput struct {
	Content  string `validate:"required"`
	Tags     []string
	Language string
	Location string
	Datetime time.Time
}

// PostInput is a post publish request.
type PostInput struct {
	Title   string `validate:"required"`
	Content string `validate:"required"`
	Tags    []string
	Date    time.Time
	Layout  string
	Feature int
}

// StoryInput is a story publish request: one image or video plus metadata.
type StoryInput struct {
	Filename string `validate:"required"`
	MIME     string
	Data     []byte
	Caption  string
	Alt      string
	Tags     []string `validate:"required,min=1"`
}

func (in StoryInput) isVideo() bool {
	return strings.HasPrefix(in.MIME, "video/")
}

// PhotoInput is a photo publish request. Alt and Albums are hard
// requirements; nothing is uploaded without them.
type PhotoInput struct {
	Filename    string `validate:"required"`
	MIME        string
	Data        []byte
	Caption     string
	Alt         string   `validate:"required"`
	Albums      []string `validate:"required,min=1"`
	Location    string
	Featured    bool
	Datetime    string
	Ratio       float64
	Orientation string `validate:"omitempty,oneof=landscape portrait square"`
}

// checkMedia enforces the file constraints shared by story and photo
// publishes: a file must be present, carry an accepted mime type, and fit
// the size cap.
func checkMedia(data []byte, mime string, imageOnly bool) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: no file provided", common.ErrorValidation)
	}
	isImage := strings.HasPrefix(mime, "image/")
	isVideo := strings.HasPrefix(mime, "video/")
	if imageOnly && !isImage {
		return fmt.Errorf("%w: unsupported media type %q", common.ErrorValidation, mime)
	}
	if !imageOnly && !isImage && !isVideo {
		return fmt.Errorf("%w: unsupported media type %q", common.ErrorValidation, mime)
	}
	if len(data) > common.MaxUploadSize {
		return fmt.Errorf("%w: file exceeds %d bytes", common.ErrorValidation, common.MaxUploadSize)
	}
	return nil
}

// noteInputs builds the flat workflow input map. Optional keys are omitted
// rather than sent as empty strings.
func noteInputs(in NoteInput) map[string]string {
	tags := "note"
	if len(in.Tags) > 0 {
		tags = strings.Join(in.Tags, ",")
	}
	lang := in.Language
	if lang == "" {
		lang = "en"
	}

	inputs := map[string]string{
		"content":  in.Content,
		"tags":     tags,
		"lang":     lang,
		"datetime": in.Datetime.UTC().Format(time.RFC3339),
	}
	if in.Location != "" {
		inputs["location"] = in.Location
	}
	return inputs
}

func postInputs(in PostInput) map[string]string {
	layout := in.Layout
	if layout == "" {
		layout = "default"
	}

	inputs := map[string]string{
		"title":   in.Title,
		"content": in.Content,
		"date":    in.Date.Format("2006-01-02"),
		"layout":  layout,
	}
	if len(in.Tags) > 0 {
		inputs["tags"] = strings.Join(in.Tags, ",")
	}
	if in.Feature != 0 {
		inputs["feature"] = strconv.Itoa(in.Feature)
	}
	return inputs
}
