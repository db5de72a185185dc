package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	errs "ChatApp/tools/errs"
)

func TestUploadSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.FormValue("file") == "" {
			t.Errorf("file field missing")
		}
		if r.FormValue("upload_preset") != "preset-1" {
			t.Errorf("upload_preset = %q", r.FormValue("upload_preset"))
		}
		_, _ = w.Write([]byte(`{"secure_url":"https://cdn.example.com/a.png"}`))
	}))
	defer srv.Close()

	up := NewHTTPUploader(Config{Endpoint: srv.URL, UploadPreset: "preset-1", Folder: "chat-app"})
	url, err := up.Upload(context.Background(), "data:image/png;base64,AAAA")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url != "https://cdn.example.com/a.png" {
		t.Fatalf("wrong url: %q", url)
	}
}

func TestUploadFallsBackToPlainURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"url":"http://cdn.example.com/b.png"}`))
	}))
	defer srv.Close()

	up := NewHTTPUploader(Config{Endpoint: srv.URL})
	url, err := up.Upload(context.Background(), "AAAA")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url != "http://cdn.example.com/b.png" {
		t.Fatalf("wrong url: %q", url)
	}
}

func TestUploadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid image"}}`))
	}))
	defer srv.Close()

	up := NewHTTPUploader(Config{Endpoint: srv.URL})
	_, err := up.Upload(context.Background(), "AAAA")
	if err == nil {
		t.Fatalf("rejected upload must fail")
	}
	if !errs.ErrMediaUpload.Is(err) {
		t.Fatalf("want MediaUpload error, got %v", err)
	}
}

func TestUploadEmptyData(t *testing.T) {
	up := NewHTTPUploader(Config{Endpoint: "http://unused"})
	if _, err := up.Upload(context.Background(), "  "); err == nil {
		t.Fatalf("empty data must fail")
	}
}

func TestUploadNoEndpoint(t *testing.T) {
	up := NewHTTPUploader(Config{})
	_, err := up.Upload(context.Background(), "AAAA")
	if err == nil {
		t.Fatalf("missing endpoint must fail")
	}
	if !errs.ErrMediaUpload.Is(err) {
		t.Fatalf("want MediaUpload error, got %v", err)
	}
}
