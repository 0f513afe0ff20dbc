package publish

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/drewsiph/sitekeeper/internal/cloudflare"
	"github.com/drewsiph/sitekeeper/internal/common"
	"github.com/drewsiph/sitekeeper/internal/github"
	"github.com/drewsiph/sitekeeper/internal/logging"
	"github.com/drewsiph/sitekeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dispatchCall struct {
	workflowID string
	inputs     map[string]string
}

type fakeGateway struct {
	Gateway

	dispatches  []dispatchCall
	dispatchErr error

	writes    int
	writeErr  error
	writeSHA  string
	readFile  *github.File
	readErr   error
	deleteErr error
}

func (f *fakeGateway) DispatchWorkflow(ctx context.Context, workflowID string, inputs map[string]string) error {
	f.dispatches = append(f.dispatches, dispatchCall{workflowID, inputs})
	return f.dispatchErr
}

func (f *fakeGateway) WriteFile(ctx context.Context, path, body, sha, message string) (string, error) {
	f.writes++
	return f.writeSHA, f.writeErr
}

func (f *fakeGateway) ReadFile(ctx context.Context, path string) (*github.File, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.readFile, nil
}

func (f *fakeGateway) DeleteFile(ctx context.Context, path, sha, message string) error {
	return f.deleteErr
}

func (f *fakeGateway) WriteCollection(ctx context.Context, path string, items any, sha, message string) (string, error) {
	f.writes++
	return f.writeSHA, f.writeErr
}

type fakeMedia struct {
	images    int
	videos    int
	result    *cloudflare.UploadResult
	uploadErr error
	lastMeta  any
}

func (f *fakeMedia) UploadImage(ctx context.Context, filename string, data []byte, metadata any) (*cloudflare.UploadResult, error) {
	f.images++
	f.lastMeta = metadata
	return f.result, f.uploadErr
}

func (f *fakeMedia) UploadVideo(ctx context.Context, filename string, data []byte) (*cloudflare.UploadResult, error) {
	f.videos++
	return f.result, f.uploadErr
}

func newTestService(media *fakeMedia) *Service {
	return NewService(media, nil, logging.NewJSONLogger())
}

func uploadResult() *cloudflare.UploadResult {
	return &cloudflare.UploadResult{
		ID:           "asset-1",
		Uploaded:     time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Filename:     "pic.jpg",
		PublicURL:    "https://imagedelivery.net/h/asset-1/public",
		ThumbnailURL: "https://imagedelivery.net/h/asset-1/thumbnail",
	}
}

func TestPublishNote_InputMap(t *testing.T) {
	gw := &fakeGateway{}
	s := newTestService(&fakeMedia{})
	a := NewAttempt()

	in := NoteInput{
		Content:  "hello world",
		Datetime: time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
	}
	require.NoError(t, s.PublishNote(context.Background(), gw, a, in))

	require.Len(t, gw.dispatches, 1)
	call := gw.dispatches[0]
	assert.Equal(t, common.NotesWorkflow, call.workflowID)
	assert.Equal(t, "hello world", call.inputs["content"])
	assert.Equal(t, "note", call.inputs["tags"], "tags default when none given")
	assert.Equal(t, "en", call.inputs["lang"])
	assert.Equal(t, "2024-05-01T12:30:00Z", call.inputs["datetime"])
	_, hasLocation := call.inputs["location"]
	assert.False(t, hasLocation, "empty optional keys are omitted")

	assert.Equal(t, StateSucceeded, a.State())
}

func TestPublishNote_ValidationNeverReachesNetwork(t *testing.T) {
	gw := &fakeGateway{}
	s := newTestService(&fakeMedia{})
	a := NewAttempt()

	err := s.PublishNote(context.Background(), gw, a, NoteInput{})
	assert.ErrorIs(t, err, common.ErrorValidation)
	assert.Empty(t, gw.dispatches)
	assert.Equal(t, StateFailedValidation, a.State())
}

func TestPublishNote_DispatchFailure(t *testing.T) {
	gw := &fakeGateway{dispatchErr: fmt.Errorf("boom: %w", common.ErrorDispatch)}
	s := newTestService(&fakeMedia{})
	a := NewAttempt()

	err := s.PublishNote(context.Background(), gw, a, NoteInput{Content: "x", Datetime: time.Now()})
	assert.ErrorIs(t, err, common.ErrorDispatch)
	assert.Equal(t, StateFailedDispatch, a.State())
}

func TestPublishPost_FeatureZeroOmitted(t *testing.T) {
	gw := &fakeGateway{}
	s := newTestService(&fakeMedia{})

	in := PostInput{Title: "T", Content: "C", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, s.PublishPost(context.Background(), gw, NewAttempt(), in))

	call := gw.dispatches[0]
	assert.Equal(t, common.PostsWorkflow, call.workflowID)
	assert.Equal(t, "2024-03-01", call.inputs["date"])
	assert.Equal(t, "default", call.inputs["layout"])
	_, hasFeature := call.inputs["feature"]
	assert.False(t, hasFeature)
	_, hasTags := call.inputs["tags"]
	assert.False(t, hasTags)

	in.Feature = 2
	in.Tags = []string{"go", "notes"}
	require.NoError(t, s.PublishPost(context.Background(), gw, NewAttempt(), in))
	call = gw.dispatches[1]
	assert.Equal(t, "2", call.inputs["feature"])
	assert.Equal(t, "go,notes", call.inputs["tags"])
}

func TestPublishPhoto_RejectedBeforeAnyNetworkCall(t *testing.T) {
	gw := &fakeGateway{}
	media := &fakeMedia{result: uploadResult()}
	s := newTestService(media)

	for _, in := range []PhotoInput{
		{Filename: "a.jpg", MIME: "image/jpeg", Data: []byte("x"), Albums: []string{"travel"}}, // missing alt
		{Filename: "a.jpg", MIME: "image/jpeg", Data: []byte("x"), Alt: "a photo"},             // missing albums
	} {
		a := NewAttempt()
		_, err := s.PublishPhoto(context.Background(), gw, a, in)
		assert.ErrorIs(t, err, common.ErrorValidation)
		assert.Equal(t, StateFailedValidation, a.State())
	}

	assert.Zero(t, media.images, "no upload call may be issued")
	assert.Empty(t, gw.dispatches, "no dispatch call may be issued")
}

func TestPublishPhoto_TwoPhase(t *testing.T) {
	gw := &fakeGateway{}
	media := &fakeMedia{result: uploadResult()}
	s := newTestService(media)
	a := NewAttempt()

	in := PhotoInput{
		Filename:    "a.jpg",
		MIME:        "image/jpeg",
		Data:        []byte("jpeg"),
		Alt:         "a pier at dusk",
		Albums:      []string{"travel"},
		Ratio:       1.5,
		Orientation: "landscape",
	}
	item, err := s.PublishPhoto(context.Background(), gw, a, in)
	require.NoError(t, err)
	assert.Equal(t, 1, media.images)
	assert.Equal(t, StateSucceeded, a.State())

	assert.Equal(t, "asset-1", item.ID)
	assert.Equal(t, []string{"travel"}, item.Meta.Albums)
	require.Len(t, item.Variants, 2)
	assert.Equal(t, "https://imagedelivery.net/h/asset-1/public", item.Variants[0])
	assert.Equal(t, "https://imagedelivery.net/h/asset-1/thumbnail", item.Variants[1])
	assert.False(t, item.RequireSignedURLs)

	// the dispatch carries the item, base64 encoded, aimed at photos.json
	require.Len(t, gw.dispatches, 1)
	call := gw.dispatches[0]
	assert.Equal(t, common.MediaWorkflow, call.workflowID)
	assert.Equal(t, common.PhotosPath, call.inputs["filepath"])

	decoded, err := base64.StdEncoding.DecodeString(call.inputs["filedata"])
	require.NoError(t, err)
	var sent models.PhotoItem
	require.NoError(t, json.Unmarshal(decoded, &sent))
	assert.Equal(t, "a pier at dusk", sent.Meta.Alt)
	assert.Nil(t, sent.Meta.Caption)
}

func TestPublishStory_UploadFailureAbortsBeforeIndexing(t *testing.T) {
	gw := &fakeGateway{}
	media := &fakeMedia{uploadErr: fmt.Errorf("%w: provider down", common.ErrorUpload)}
	s := newTestService(media)
	a := NewAttempt()

	in := StoryInput{Filename: "a.jpg", MIME: "image/jpeg", Data: []byte("x"), Tags: []string{"life"}}
	_, err := s.PublishStory(context.Background(), gw, a, in)

	assert.ErrorIs(t, err, common.ErrorUpload)
	assert.NotErrorIs(t, err, common.ErrorIndexing)
	assert.Empty(t, gw.dispatches, "phase 2 must not run after an upload failure")
	assert.Equal(t, StateFailedUpload, a.State())
}

func TestPublishStory_IndexingFailureIsDistinct(t *testing.T) {
	gw := &fakeGateway{dispatchErr: fmt.Errorf("boom: %w", common.ErrorDispatch)}
	media := &fakeMedia{result: uploadResult()}
	s := newTestService(media)
	a := NewAttempt()

	in := StoryInput{Filename: "a.jpg", MIME: "image/jpeg", Data: []byte("x"), Tags: []string{"life"}}
	item, err := s.PublishStory(context.Background(), gw, a, in)

	assert.ErrorIs(t, err, common.ErrorIndexing)
	assert.NotErrorIs(t, err, common.ErrorUpload)
	require.NotNil(t, item, "the uploaded item is returned so indexing can be retried")
	assert.Equal(t, "asset-1", item.ID)
	assert.Equal(t, StateFailedIndexing, a.State())
}

func TestPublishStory_VideoShape(t *testing.T) {
	gw := &fakeGateway{}
	media := &fakeMedia{result: &cloudflare.UploadResult{
		ID:           "vid-1",
		Uploaded:     time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC),
		Filename:     "clip.mp4",
		PublicURL:    "https://videodelivery.net/vid-1/manifest/video.m3u8",
		ThumbnailURL: "https://videodelivery.net/vid-1/thumbnails/thumbnail.jpg",
	}}
	s := newTestService(media)

	in := StoryInput{Filename: "clip.mp4", MIME: "video/mp4", Data: []byte("x"), Caption: "at the lake", Tags: []string{"life"}}
	item, err := s.PublishStory(context.Background(), gw, NewAttempt(), in)
	require.NoError(t, err)

	assert.Equal(t, 1, media.videos)
	assert.Zero(t, media.images)
	assert.True(t, item.IsVideo())
	require.NotNil(t, item.Playback)
	assert.Equal(t, "https://videodelivery.net/vid-1/manifest/video.m3u8", item.Playback.HLS)
	assert.Empty(t, item.Variants)
	require.NotNil(t, item.Meta.Title)
	assert.Equal(t, "at the lake", *item.Meta.Title)
}

func TestPublishStory_OversizedFileRejected(t *testing.T) {
	gw := &fakeGateway{}
	media := &fakeMedia{result: uploadResult()}
	s := newTestService(media)

	in := StoryInput{
		Filename: "big.jpg",
		MIME:     "image/jpeg",
		Data:     make([]byte, common.MaxUploadSize+1),
		Tags:     []string{"life"},
	}
	_, err := s.PublishStory(context.Background(), gw, NewAttempt(), in)
	assert.ErrorIs(t, err, common.ErrorValidation)
	assert.Zero(t, media.images)
}

func TestUpdateNote_ConflictSurfacedVerbatim(t *testing.T) {
	gw := &fakeGateway{writeErr: fmt.Errorf("write _notes/a.md: %w", common.ErrorConflict)}
	s := newTestService(&fakeMedia{})

	raw := "---\ndate: 2024-01-02\ntags:\n  - old\nlocation: x\n---\n\nbody"
	_, err := s.UpdateNote(context.Background(), gw, "_notes/a.md", "sha-1", raw, []string{"new"}, "y", "body2")

	assert.ErrorIs(t, err, common.ErrorConflict)
	assert.Equal(t, 1, gw.writes, "a conflicting write is never retried")
}

func TestPublishStatus(t *testing.T) {
	gw := &fakeGateway{readFile: &github.File{Body: "old", SHA: "sha-old"}, writeSHA: "sha-new"}
	s := newTestService(&fakeMedia{})

	at := time.Date(2024, 5, 1, 8, 15, 0, 0, time.FixedZone("EDT", -4*3600))
	require.NoError(t, s.PublishStatus(context.Background(), gw, "out riding", at))
	assert.Equal(t, 1, gw.writes)
}

func TestPublishStatus_FirstEverCreates(t *testing.T) {
	gw := &fakeGateway{readErr: fmt.Errorf("read status.txt: %w", common.ErrorNotFound)}
	s := newTestService(&fakeMedia{})

	require.NoError(t, s.PublishStatus(context.Background(), gw, "hello", time.Now()))
	assert.Equal(t, 1, gw.writes)
}

func TestAttempt_TerminalStatesAreSticky(t *testing.T) {
	a := NewAttempt()
	a.advance(StateValidating)
	a.advance(StateFailedValidation)
	a.advance(StateSucceeded)
	assert.Equal(t, StateFailedValidation, a.State())

	a.Reset()
	assert.Equal(t, StateIdle, a.State())
}
