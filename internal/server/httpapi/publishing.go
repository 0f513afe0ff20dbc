package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/drewsiph/sitekeeper/internal/common"
	"github.com/drewsiph/sitekeeper/internal/server/batch"
	"github.com/drewsiph/sitekeeper/internal/server/publish"
)

type notePublishRequest struct {
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	Language string   `json:"language"`
	Location string   `json:"location"`
	Datetime string   `json:"datetime"`
}

type acceptedResponse struct {
	Status string `json:"status"`
	State  string `json:"state"`
}

// accepted is what a successful dispatch reports: the workflow was accepted
// for processing, not that the content is live.
func accepted(state publish.State) acceptedResponse {
	return acceptedResponse{Status: "accepted", State: state.String()}
}

func (s *Server) publishNote(w http.ResponseWriter, r *http.Request) {
	_, remote := s.session(r)

	var req notePublishRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	datetime := time.Now()
	if req.Datetime != "" {
		parsed, err := time.Parse(time.RFC3339, req.Datetime)
		if err != nil {
			s.writeError(w, fmt.Errorf("%w: bad datetime %q", common.ErrorValidation, req.Datetime))
			return
		}
		datetime = parsed
	}

	attempt := publish.NewAttempt()
	err := s.publisher.PublishNote(r.Context(), remote, attempt, publish.NoteInput{
		Content:  req.Content,
		Tags:     req.Tags,
		Language: req.Language,
		Location: req.Location,
		Datetime: datetime,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, accepted(attempt.State()))
}

type postPublishRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
	Date    string   `json:"date"`
	Layout  string   `json:"layout"`
	Feature int      `json:"feature"`
}

func (s *Server) publishPost(w http.ResponseWriter, r *http.Request) {
	_, remote := s.session(r)

	var req postPublishRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			s.writeError(w, fmt.Errorf("%w: bad date %q", common.ErrorValidation, req.Date))
			return
		}
		date = parsed
	}

	attempt := publish.NewAttempt()
	err := s.publisher.PublishPost(r.Context(), remote, attempt, publish.PostInput{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
		Date:    date,
		Layout:  req.Layout,
		Feature: req.Feature,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, accepted(attempt.State()))
}

// readUpload pulls one uploaded file out of a multipart form.
func readUpload(fh *multipart.FileHeader) (data []byte, mime string, err error) {
	f, err := fh.Open()
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	defer f.Close()

	data, err = io.ReadAll(io.LimitReader(f, common.MaxUploadSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	return data, fh.Header.Get("Content-Type"), nil
}

func (s *Server) parseUploadForm(r *http.Request) (*multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(common.MaxUploadSize + 1); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	_, fh, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("%w: file field is required", common.ErrorValidation)
	}
	return fh, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *Server) publishStory(w http.ResponseWriter, r *http.Request) {
	_, remote := s.session(r)

	fh, err := s.parseUploadForm(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	data, mime, err := readUpload(fh)
	if err != nil {
		s.writeError(w, err)
		return
	}

	attempt := publish.NewAttempt()
	item, err := s.publisher.PublishStory(r.Context(), remote, attempt, publish.StoryInput{
		Filename: fh.Filename,
		MIME:     mime,
		Data:     data,
		Caption:  r.FormValue("caption"),
		Alt:      r.FormValue("alt"),
		Tags:     splitList(r.FormValue("tags")),
	})
	if err != nil {
		// the asset exists but is not indexed; hand the built item back so
		// the caller can retry indexing without re-uploading
		if errors.Is(err, common.ErrorIndexing) && item != nil {
			s.writeJSON(w, http.StatusBadGateway, map[string]any{
				"error": err.Error(),
				"item":  item,
			})
			return
		}
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, item)
}

func photoInputFromForm(fh *multipart.FileHeader, get func(string) string) (publish.PhotoInput, error) {
	data, mime, err := readUpload(fh)
	if err != nil {
		return publish.PhotoInput{}, err
	}

	ratio := 0.0
	if v := get("ratio"); v != "" {
		if ratio, err = strconv.ParseFloat(v, 64); err != nil {
			return publish.PhotoInput{}, fmt.Errorf("%w: bad ratio %q", common.ErrorValidation, v)
		}
	}

	return publish.PhotoInput{
		Filename:    fh.Filename,
		MIME:        mime,
		Data:        data,
		Caption:     get("caption"),
		Alt:         get("alt"),
		Albums:      splitList(get("albums")),
		Location:    get("location"),
		Featured:    get("featured") == "true",
		Datetime:    get("datetime"),
		Ratio:       ratio,
		Orientation: get("orientation"),
	}, nil
}

func (s *Server) publishPhoto(w http.ResponseWriter, r *http.Request) {
	_, remote := s.session(r)

	fh, err := s.parseUploadForm(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	in, err := photoInputFromForm(fh, r.FormValue)
	if err != nil {
		s.writeError(w, err)
		return
	}

	attempt := publish.NewAttempt()
	item, err := s.publisher.PublishPhoto(r.Context(), remote, attempt, in)
	if err != nil {
		if errors.Is(err, common.ErrorIndexing) && item != nil {
			s.writeJSON(w, http.StatusBadGateway, map[string]any{
				"error": err.Error(),
				"item":  item,
			})
			return
		}
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, item)
}

// photoBatchMeta is the per-file metadata accompanying a batch upload,
// aligned by index with the files field.
type photoBatchMeta struct {
	Caption     string   `json:"caption"`
	Alt         string   `json:"alt"`
	Albums      []string `json:"albums"`
	Location    string   `json:"location"`
	Featured    bool     `json:"featured"`
	Datetime    string   `json:"datetime"`
	Ratio       float64  `json:"ratio"`
	Orientation string   `json:"orientation"`
}

func (s *Server) publishPhotoBatch(w http.ResponseWriter, r *http.Request) {
	_, remote := s.session(r)

	if err := r.ParseMultipartForm(common.MaxUploadSize + 1); err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", common.ErrorValidation, err))
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		s.writeError(w, fmt.Errorf("%w: files field is required", common.ErrorValidation))
		return
	}

	var metas []photoBatchMeta
	if err := json.Unmarshal([]byte(r.FormValue("metadata")), &metas); err != nil || len(metas) != len(files) {
		s.writeError(w, fmt.Errorf("%w: metadata must be an array matching the files", common.ErrorValidation))
		return
	}

	inputs := make([]publish.PhotoInput, len(files))
	names := make([]string, len(files))
	for i, fh := range files {
		data, mime, err := readUpload(fh)
		if err != nil {
			s.writeError(w, err)
			return
		}
		m := metas[i]
		inputs[i] = publish.PhotoInput{
			Filename:    fh.Filename,
			MIME:        mime,
			Data:        data,
			Caption:     m.Caption,
			Alt:         m.Alt,
			Albums:      m.Albums,
			Location:    m.Location,
			Featured:    m.Featured,
			Datetime:    m.Datetime,
			Ratio:       m.Ratio,
			Orientation: m.Orientation,
		}
		names[i] = fh.Filename
	}

	coordinator := batch.NewCoordinator(s.cfg.UploadBatchSize, s.logger)
	progress := coordinator.Run(r.Context(), names, func(ctx context.Context, i int) error {
		_, err := s.publisher.PublishPhoto(ctx, remote, publish.NewAttempt(), inputs[i])
		return err
	})

	s.writeJSON(w, http.StatusOK, progress)
}

type statusRequest struct {
	// Text is a pointer so a missing field can be told apart from an
	// empty string: empty clears the status.
	Text *string `json:"text"`
}

type statusResponse struct {
	Date string `json:"date"`
	Text string `json:"text"`
	Raw  string `json:"raw"`
}

func (s *Server) publishStatus(w http.ResponseWriter, r *http.Request) {
	_, remote := s.resourcesSession(r)

	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Text == nil {
		s.writeError(w, fmt.Errorf("%w: text is required", common.ErrorValidation))
		return
	}

	if err := s.publisher.PublishStatus(r.Context(), remote, *req.Text, time.Now()); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "published"})
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	_, remote := s.resourcesSession(r)

	f, err := remote.ReadFile(r.Context(), common.StatusPath)
	if err != nil {
		s.writeError(w, err)
		return
	}

	date, text, _ := strings.Cut(f.Body, "\n")
	s.writeJSON(w, http.StatusOK, statusResponse{Date: date, Text: text, Raw: f.Body})
}
