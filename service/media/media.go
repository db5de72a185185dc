package media

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	errs "ChatApp/tools/errs"
)

// Uploader 媒体托管的窄接口。上传失败必须让整个请求失败，
// 绝不能带着空URL继续落库/推送。
type Uploader interface {
	Upload(ctx context.Context, base64Data string) (string, error)
}

// Config Cloudinary 风格的 unsigned upload 端点
type Config struct {
	Endpoint     string // 形如 https://api.example.com/v1/upload
	UploadPreset string
	Folder       string
	Timeout      time.Duration // 默认 15s
}

type HTTPUploader struct {
	cfg    Config
	client *http.Client
}

func NewHTTPUploader(cfg Config) *HTTPUploader {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &HTTPUploader{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type uploadResp struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload 把 data-uri/base64 图片交给托管服务，返回可公开访问的URL
func (u *HTTPUploader) Upload(ctx context.Context, base64Data string) (string, error) {
	if strings.TrimSpace(base64Data) == "" {
		return "", errs.ErrArgs.WrapMsg("empty image data")
	}
	if u.cfg.Endpoint == "" {
		return "", errs.ErrMediaUpload.WrapMsg("media endpoint not configured")
	}

	form := url.Values{}
	form.Set("file", base64Data)
	if u.cfg.UploadPreset != "" {
		form.Set("upload_preset", u.cfg.UploadPreset)
	}
	if u.cfg.Folder != "" {
		form.Set("folder", u.cfg.Folder)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.cfg.Endpoint,
		bytes.NewBufferString(form.Encode()))
	if err != nil {
		return "", errs.ErrMediaUpload.WrapMsg(err.Error())
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := u.client.Do(req)
	if err != nil {
		return "", errs.ErrMediaUpload.WrapMsg(err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", errs.ErrMediaUpload.WrapMsg(err.Error())
	}

	var out uploadResp
	if err := json.Unmarshal(body, &out); err != nil {
		return "", errs.ErrMediaUpload.WrapMsg("bad upload response", "status", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK || (out.SecureURL == "" && out.URL == "") {
		msg := out.Error.Message
		if msg == "" {
			msg = "upload rejected"
		}
		return "", errs.ErrMediaUpload.WrapMsg(msg, "status", resp.StatusCode)
	}
	if out.SecureURL != "" {
		return out.SecureURL, nil
	}
	return out.URL, nil
}
