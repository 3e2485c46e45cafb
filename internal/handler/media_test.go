package handler

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/lingochat/internal/media"
	"github.com/lingochat/internal/model"
)

func (s *testServer) upload(t *testing.T, userID, filename string, content []byte) (*http.Response, media.Upload) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	fw.Write(content)
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, s.URL+"/api/media", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-User-Id", userID)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	defer resp.Body.Close()
	var up media.Upload
	if resp.StatusCode == http.StatusCreated {
		decodeResponse(t, resp, &up)
	}
	return resp, up
}

func TestMediaUploadAndMediaOnlyMessage(t *testing.T) {
	s := newTestServer(t, 5)
	s.user(t, "alice", "en")
	s.user(t, "bob", "fr")

	gif := []byte("GIF89a-tiny-animation")
	resp, up := s.upload(t, "alice", "cat.gif", gif)
	if resp.StatusCode != http.StatusCreated || up.MediaType != model.MediaTypeImage {
		t.Fatalf("upload: status %d, %+v", resp.StatusCode, up)
	}

	var sent model.Message
	code := s.do(t, http.MethodPost, "/api/messages", "alice", map[string]string{
		"userId": "bob", "mediaType": string(up.MediaType), "mediaUrl": up.URL,
	}, &sent)
	if code != http.StatusCreated || sent.MediaURL != up.URL || sent.OriginalText != "" {
		t.Fatalf("media-only send: status %d, %+v", code, sent)
	}

	get, err := http.Get(s.URL + up.URL)
	if err != nil {
		t.Fatalf("get media: %v", err)
	}
	defer get.Body.Close()
	got, _ := io.ReadAll(get.Body)
	if get.StatusCode != http.StatusOK || !bytes.Equal(got, gif) || get.Header.Get("Content-Type") != "image/gif" {
		t.Fatalf("served media mismatch: status %d, %q", get.StatusCode, got)
	}

	if resp, _ := s.upload(t, "alice", "evil.exe", []byte("MZ")); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("blocked extension: status %d", resp.StatusCode)
	}
}
