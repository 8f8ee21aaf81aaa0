package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/talkgym/talkgym-client/internal/audio"
)

// UploadResult is the remote location of an uploaded capture.
type UploadResult struct {
	AudioURL string `json:"audioUrl"`
	Filename string `json:"filename"`
}

// UploadAudio submits a finalized clip as a multipart body (field "audio",
// filename "recording.webm") with bearer authorization. Any transport or
// response failure surfaces as ErrUploadFailed; there is no built-in retry.
// The call is bounded by the configured upload timeout so a stalled transfer
// cannot hold the caller's uploading guard forever.
func (c *Client) UploadAudio(ctx context.Context, clip audio.Clip) (*UploadResult, error) {
	if c.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.uploadTimeout)
		defer cancel()
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("audio", audio.ClipFilename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if _, err := part.Write(clip.Data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/audio/upload", &body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if err := c.authorize(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: status %d", ErrUploadFailed, resp.StatusCode)
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUploadFailed, err)
	}

	c.log.Debug().Str("url", result.AudioURL).Int("bytes", len(clip.Data)).Msg("audio uploaded")
	return &result, nil
}

// DeleteAudio removes a previously uploaded object.
func (c *Client) DeleteAudio(ctx context.Context, filename string) error {
	path := "/api/audio/file/" + url.PathEscape(filename)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	if err := c.authorize(req); err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: status %d", ErrDeleteFailed, resp.StatusCode)
	}
	return nil
}

// AudioURL constructs the retrieval URL for an uploaded filename. Pure, no
// network call.
func (c *Client) AudioURL(filename string) string {
	return c.baseURL + "/api/audio/file/" + url.PathEscape(filename)
}
