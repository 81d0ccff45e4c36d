package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yishak-cs/cafe-pos/internal/models"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func (ts *testServer) upload(t *testing.T, role models.Role, path string, content []byte) (int, response) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "picture.bin")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+ts.tokens[role])
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec.Code, resp
}

func TestUploadMenuItemImage(t *testing.T) {
	uploads := t.TempDir()
	ts := newTestServer(t, Config{UploadDir: uploads, MaxUploadBytes: 1024})

	code, resp := ts.do(t, models.RoleManager, http.MethodPost, "/api/menu-items", map[string]any{
		"name": "Mocha", "price": 4.5, "category": "Hot Coffee", "stockQuantity": 20,
	})
	require.Equal(t, http.StatusCreated, code)
	item := decode[models.MenuItem](t, resp.Data)

	code, resp = ts.upload(t, models.RoleManager, "/api/menu-items/"+item.ID+"/image", pngHeader)
	require.Equal(t, http.StatusOK, code, resp.Error)
	updated := decode[models.MenuItem](t, resp.Data)
	assert.Equal(t, "/uploads/menu_"+item.ID+".png", updated.Image)

	stored, err := os.ReadFile(filepath.Join(uploads, "menu_"+item.ID+".png"))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)

	req := httptest.NewRequest(http.MethodGet, updated.Image, nil)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUploadRejections(t *testing.T) {
	ts := newTestServer(t, Config{MaxUploadBytes: 1024})

	code, resp := ts.do(t, models.RoleManager, http.MethodPost, "/api/menu-items", map[string]any{
		"name": "Tea", "price": 2, "category": "Tea", "stockQuantity": 20,
	})
	require.Equal(t, http.StatusCreated, code)
	item := decode[models.MenuItem](t, resp.Data)

	code, resp = ts.upload(t, models.RoleManager, "/api/menu-items/"+item.ID+"/image", []byte("#!/bin/sh\necho hi\n"))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Error, "only image uploads are allowed")

	big := append(append([]byte{}, pngHeader...), make([]byte, 2048)...)
	code, resp = ts.upload(t, models.RoleManager, "/api/menu-items/"+item.ID+"/image", big)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Error, "exceeds")

	code, _ = ts.upload(t, models.RoleManager, "/api/menu-items/missing/image", pngHeader)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = ts.upload(t, models.RoleWaiter, "/api/menu-items/"+item.ID+"/image", pngHeader)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestSanitizeID(t *testing.T) {
	assert.Equal(t, "abc-123", sanitizeID("abc-123"))
	assert.NotContains(t, sanitizeID("../../etc/passwd"), "/")
	assert.NotContains(t, sanitizeID("../../etc/passwd"), "..")
}
