package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyaivault/backend/middleware"
	"github.com/studyaivault/backend/service"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type uploadFile struct {
	name        string
	contentType string
	content     []byte
}

var pdfFile = &uploadFile{name: "notes.pdf", contentType: "application/pdf", content: []byte("%PDF-1.4")}

func multipartBody(t *testing.T, file *uploadFile, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if file != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="pdf"; filename=%q`, file.name))
		header.Set("Content-Type", file.contentType)
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(file.content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func newUploadRequest(t *testing.T, file *uploadFile, fields map[string]string) *http.Request {
	t.Helper()
	body, contentType := multipartBody(t, file, fields)
	req := httptest.NewRequest(http.MethodPost, "/api/pdfs/upload", body)
	req.Header.Set("Content-Type", contentType)
	identity := &middleware.Identity{
		UserID: primitive.NewObjectID(),
		Email:  "ada@example.com",
		Name:   "Ada Lovelace",
	}
	return req.WithContext(middleware.WithIdentity(req.Context(), identity))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (bool, string) {
	t.Helper()
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Success, resp.Message
}

func TestUpload_Validation(t *testing.T) {
	tests := []struct {
		name    string
		file    *uploadFile
		fields  map[string]string
		wantMsg string
	}{
		{
			"no file",
			nil,
			map[string]string{"title": "Linear Algebra Notes", "genre": "Mathematics"},
			"No PDF file provided",
		},
		{
			"wrong extension and mime",
			&uploadFile{name: "notes.txt", contentType: "text/plain", content: []byte("hi")},
			map[string]string{"title": "Linear Algebra Notes", "genre": "Mathematics"},
			"Only PDF files are allowed",
		},
		{
			// A pdf content type lets an unrecognized extension through,
			// so the request proceeds to field validation.
			"pdf mime with odd extension",
			&uploadFile{name: "notes.bin", contentType: "application/pdf", content: []byte("%PDF-1.4")},
			map[string]string{"genre": "Mathematics"},
			"Title and genre are required",
		},
		{
			"missing title",
			pdfFile,
			map[string]string{"genre": "Mathematics"},
			"Title and genre are required",
		},
		{
			"missing genre",
			pdfFile,
			map[string]string{"title": "Linear Algebra Notes"},
			"Title and genre are required",
		},
		{
			"whitespace title",
			pdfFile,
			map[string]string{"title": "   ", "genre": "Mathematics"},
			"Title and genre are required",
		},
		{
			"title too long",
			pdfFile,
			map[string]string{"title": strings.Repeat("a", 201), "genre": "Mathematics"},
			"PDF title cannot exceed 200 characters",
		},
		{
			"unknown genre",
			pdfFile,
			map[string]string{"title": "Linear Algebra Notes", "genre": "Underwater Basket Weaving"},
			"Invalid genre",
		},
		{
			"tags not a JSON array",
			pdfFile,
			map[string]string{"title": "Linear Algebra Notes", "genre": "Mathematics", "tags": "math,algebra"},
			"Tags must be a JSON array of strings",
		},
	}

	h := &UploadHandler{S3: &service.S3Service{}, MaxBytes: 1 << 20}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Upload(rec, newUploadRequest(t, tt.file, tt.fields))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			success, msg := decodeEnvelope(t, rec)
			assert.False(t, success)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestUpload_RequiresAuth(t *testing.T) {
	h := &UploadHandler{S3: &service.S3Service{}, MaxBytes: 1 << 20}
	body, contentType := multipartBody(t, pdfFile, map[string]string{"title": "Notes", "genre": "Mathematics"})
	req := httptest.NewRequest(http.MethodPost, "/api/pdfs/upload", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	_, msg := decodeEnvelope(t, rec)
	assert.Equal(t, "Access token required", msg)
}

func TestUpload_StorageUnconfigured(t *testing.T) {
	h := &UploadHandler{MaxBytes: 1 << 20}
	rec := httptest.NewRecorder()
	h.Upload(rec, newUploadRequest(t, pdfFile, map[string]string{"title": "Notes", "genre": "Mathematics"}))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	_, msg := decodeEnvelope(t, rec)
	assert.Equal(t, "Upload not configured", msg)
}

func TestFormInt(t *testing.T) {
	tests := []struct {
		value string
		want  int
	}{
		{"", 0},
		{"abc", 0},
		{"-5", 0},
		{"0", 0},
		{"2020", 2020},
		{" 341 ", 341},
	}
	for _, tt := range tests {
		body, contentType := multipartBody(t, nil, map[string]string{"pageCount": tt.value})
		req := httptest.NewRequest(http.MethodPost, "/", body)
		req.Header.Set("Content-Type", contentType)
		require.NoError(t, req.ParseMultipartForm(1<<20))

		assert.Equal(t, tt.want, formInt(req, "pageCount"), "value %q", tt.value)
	}
}
