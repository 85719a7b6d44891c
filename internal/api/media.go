package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
)

const mediaPath = "/api/media"

var mediaKeys = []string{"id", "url"}

// List retrieves one page of uploaded media.
func (s MediaService) List(ctx context.Context, opts ListOptions) (*PaginatedResult[Media], error) {
	return listPage[Media](ctx, s, mediaPath, opts)
}

// Get retrieves a media item by ID.
func (s MediaService) Get(ctx context.Context, id string) (*Media, error) {
	return getEntity[Media](ctx, s, RequestSpec{Method: http.MethodGet, Path: resourcePath(mediaPath, id)}, mediaKeys...)
}

// Upload sends a file as multipart/form-data under the "file" field.
func (s MediaService) Upload(ctx context.Context, filename string, content []byte) (*Media, error) {
	return uploadMedia(ctx, s, filename, content)
}

func uploadMedia(ctx context.Context, r Requester, filename string, content []byte) (*Media, error) {
	if len(content) > MaxUploadSize {
		return nil, fmt.Errorf("file %s exceeds the %d MB upload limit", filename, MaxUploadSize/(1024*1024))
	}
	body, contentType, err := multipartBody(map[string]string{"fileName": filepath.Base(filename)}, "file", filepath.Base(filename), content)
	if err != nil {
		return nil, err
	}
	spec := RequestSpec{
		Method:  http.MethodPost,
		Path:    mediaPath,
		RawBody: body,
		Header:  http.Header{"Content-Type": []string{contentType}},
	}
	return getEntity[Media](ctx, r, spec, mediaKeys...)
}

// Delete deletes a media item.
func (s MediaService) Delete(ctx context.Context, id string) error {
	return sendNoContent(ctx, s, RequestSpec{Method: http.MethodDelete, Path: resourcePath(mediaPath, id)})
}

// multipartBody encodes form fields and one file part.
func multipartBody(fields map[string]string, fileField, filename string, content []byte) ([]byte, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", key, err)
		}
	}

	part, err := writer.CreateFormFile(fileField, filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file %s: %w", filename, err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, "", fmt.Errorf("failed to write file content %s: %w", filename, err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return body.Bytes(), writer.FormDataContentType(), nil
}
