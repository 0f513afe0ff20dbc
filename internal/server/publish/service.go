// Package publish implements the per-content-type publish pipelines and the
// direct edit/delete flows against already-published documents.
//
// Notes and posts go out as fire-and-forget workflow dispatches: success
// means "accepted for processing", never "the file exists". Stories and
// photos run a two-phase pipeline: media upload, then a dispatch that
// appends the item to its collection out-of-band. The append happens in the
// remote system rather than through a direct collection write so this
// process never races the same background job on a read-modify-write.
package publish

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/drewsiph/sitekeeper/internal/cloudflare"
	"github.com/drewsiph/sitekeeper/internal/common"
	"github.com/drewsiph/sitekeeper/internal/github"
	"github.com/drewsiph/sitekeeper/internal/logging"
	"github.com/drewsiph/sitekeeper/internal/server/models"
)

// Gateway is the slice of the remote document gateway the orchestrator
// needs. *github.Client satisfies it; tests supply fakes.
type Gateway interface {
	ReadFile(ctx context.Context, path string) (*github.File, error)
	WriteFile(ctx context.Context, path, body, sha, message string) (string, error)
	DeleteFile(ctx context.Context, path, sha, message string) error
	ReadCollection(ctx context.Context, path string, items any) (string, error)
	WriteCollection(ctx context.Context, path string, items any, sha, message string) (string, error)
	DispatchWorkflow(ctx context.Context, workflowID string, inputs map[string]string) error
}

// MediaStore is the slice of the upload client the orchestrator needs.
type MediaStore interface {
	UploadImage(ctx context.Context, filename string, data []byte, metadata any) (*cloudflare.UploadResult, error)
	UploadVideo(ctx context.Context, filename string, data []byte) (*cloudflare.UploadResult, error)
}

// Archiver mirrors original asset bytes to cold storage. Best-effort: the
// implementation logs failures and never returns them into the pipeline.
type Archiver interface {
	Store(ctx context.Context, id, filename string, data []byte)
}

type Service struct {
	media    MediaStore
	archiver Archiver
	validate *validator.Validate
	logger   logging.Logger
}

// NewService builds the orchestrator. archiver may be nil when no archive
// bucket is configured.
func NewService(media MediaStore, archiver Archiver, logger logging.Logger) *Service {
	return &Service{
		media:    media,
		archiver: archiver,
		validate: validator.New(),
		logger:   logger,
	}
}

// PublishNote validates the note and dispatches the notes workflow. The
// gateway call is fire-and-forget, so a nil return means the note was
// accepted for processing, not that it is live.
func (s *Service) PublishNote(ctx context.Context, gw Gateway, a *Attempt, in NoteInput) error {
	a.advance(StateValidating)
	if err := s.validate.Struct(in); err != nil {
		a.advance(StateFailedValidation)
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	a.advance(StateDispatching)
	if err := gw.DispatchWorkflow(ctx, common.NotesWorkflow, noteInputs(in)); err != nil {
		a.advance(StateFailedDispatch)
		return err
	}

	a.advance(StateSucceeded)
	s.logger.Info(ctx, "note accepted for publishing", "workflow", common.NotesWorkflow)
	return nil
}

// PublishPost validates the post and dispatches the posts workflow.
func (s *Service) PublishPost(ctx context.Context, gw Gateway, a *Attempt, in PostInput) error {
	a.advance(StateValidating)
	if err := s.validate.Struct(in); err != nil {
		a.advance(StateFailedValidation)
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	a.advance(StateDispatching)
	if err := gw.DispatchWorkflow(ctx, common.PostsWorkflow, postInputs(in)); err != nil {
		a.advance(StateFailedDispatch)
		return err
	}

	a.advance(StateSucceeded)
	s.logger.Info(ctx, "post accepted for publishing", "workflow", common.PostsWorkflow, "title", in.Title)
	return nil
}

// PublishStory runs the two-phase story pipeline. On an indexing failure the
// uploaded asset already exists in the media store; the returned item lets
// the caller retry indexing without re-uploading.
func (s *Service) PublishStory(ctx context.Context, gw Gateway, a *Attempt, in StoryInput) (*models.StoryItem, error) {
	a.advance(StateValidating)
	if err := s.validate.Struct(in); err != nil {
		a.advance(StateFailedValidation)
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	if err := checkMedia(in.Data, in.MIME, false); err != nil {
		a.advance(StateFailedValidation)
		return nil, err
	}

	a.advance(StateUploading)
	var (
		res *cloudflare.UploadResult
		err error
	)
	if in.isVideo() {
		res, err = s.media.UploadVideo(ctx, in.Filename, in.Data)
	} else {
		res, err = s.media.UploadImage(ctx, in.Filename, in.Data, storyUploadMetadata(in))
	}
	if err != nil {
		a.advance(StateFailedUpload)
		return nil, err
	}
	if s.archiver != nil {
		s.archiver.Store(ctx, res.ID, in.Filename, in.Data)
	}

	item := buildStoryItem(in, res)

	a.advance(StateIndexing)
	if err := s.dispatchAppend(ctx, gw, common.StoriesPath, item); err != nil {
		a.advance(StateFailedIndexing)
		return item, fmt.Errorf("%w: %v", common.ErrorIndexing, err)
	}

	a.advance(StateSucceeded)
	s.logger.Info(ctx, "story published", "id", item.ID, "video", item.IsVideo())
	return item, nil
}

// PublishPhoto runs the two-phase photo pipeline. Validation rejects the
// request before any network call when alt or albums are missing.
func (s *Service) PublishPhoto(ctx context.Context, gw Gateway, a *Attempt, in PhotoInput) (*models.PhotoItem, error) {
	a.advance(StateValidating)
	if err := s.validate.Struct(in); err != nil {
		a.advance(StateFailedValidation)
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	if err := checkMedia(in.Data, in.MIME, true); err != nil {
		a.advance(StateFailedValidation)
		return nil, err
	}

	a.advance(StateUploading)
	res, err := s.media.UploadImage(ctx, in.Filename, in.Data, photoUploadMetadata(in))
	if err != nil {
		a.advance(StateFailedUpload)
		return nil, err
	}
	if s.archiver != nil {
		s.archiver.Store(ctx, res.ID, in.Filename, in.Data)
	}

	item := buildPhotoItem(in, res)

	a.advance(StateIndexing)
	if err := s.dispatchAppend(ctx, gw, common.PhotosPath, item); err != nil {
		a.advance(StateFailedIndexing)
		return item, fmt.Errorf("%w: %v", common.ErrorIndexing, err)
	}

	a.advance(StateSucceeded)
	s.logger.Info(ctx, "photo published", "id", item.ID, "albums", in.Albums)
	return item, nil
}

// dispatchAppend hands a serialized collection item to the media workflow,
// which appends it to the collection document out-of-band.
func (s *Service) dispatchAppend(ctx context.Context, gw Gateway, path string, item any) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encoding item: %w", err)
	}
	inputs := map[string]string{
		"filepath": path,
		"filedata": base64.StdEncoding.EncodeToString(data),
	}
	return gw.DispatchWorkflow(ctx, common.MediaWorkflow, inputs)
}

func storyUploadMetadata(in StoryInput) map[string]any {
	return map[string]any{
		"caption": nullable(in.Caption),
		"alt":     nullable(in.Alt),
		"tags":    in.Tags,
	}
}

func photoUploadMetadata(in PhotoInput) map[string]any {
	return map[string]any{
		"caption":     nullable(in.Caption),
		"alt":         in.Alt,
		"albums":      in.Albums,
		"location":    nullable(in.Location),
		"featured":    in.Featured,
		"datetime":    nullable(in.Datetime),
		"ratio":       in.Ratio,
		"orientation": in.Orientation,
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func buildStoryItem(in StoryInput, res *cloudflare.UploadResult) *models.StoryItem {
	item := &models.StoryItem{
		Uploaded: res.Uploaded.UTC().Format(time.RFC3339),
		ID:       res.ID,
		Filename: res.Filename,
		Meta: models.StoryMeta{
			Alt:     in.Alt,
			Caption: in.Caption,
			Tags:    in.Tags,
		},
		RequireSignedURLs: false,
	}

	if in.isVideo() {
		// the downstream job detects videos by the playback field
		item.Meta.URL = res.PublicURL
		title := in.Caption
		item.Meta.Title = &title
		item.Thumbnail = res.ThumbnailURL
		item.Playback = &models.Playback{HLS: res.PublicURL}
	} else {
		item.Variants = []string{res.PublicURL, res.ThumbnailURL}
	}
	return item
}

func buildPhotoItem(in PhotoInput, res *cloudflare.UploadResult) *models.PhotoItem {
	return &models.PhotoItem{
		Uploaded: res.Uploaded.UTC().Format(time.RFC3339),
		ID:       res.ID,
		Filename: res.Filename,
		Meta: models.PhotoMeta{
			Ratio:       in.Ratio,
			Orientation: in.Orientation,
			Caption:     nullable(in.Caption),
			Alt:         in.Alt,
			Featured:    in.Featured,
			Albums:      in.Albums,
			Location:    nullable(in.Location),
			Datetime:    nullable(in.Datetime),
		},
		Variants:          []string{res.PublicURL, res.ThumbnailURL},
		RequireSignedURLs: false,
	}
}
