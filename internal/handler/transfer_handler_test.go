package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func uploadFile(t *testing.T, r *gin.Engine, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestImportCSVUpload(t *testing.T) {
	r := newTestRouter(t)

	csvData := "student_id,name,age,grade,email,performance,course\n" +
		"STU100,Grace Hopper,35,B,grace@example.edu,82,Computer Science\n" +
		"STU101,Bad Row,not-a-number,B,bad@example.edu,50,Computer Science\n"

	w := uploadFile(t, r, "students.csv", csvData)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}

	env := decodeEnvelope(t, w)
	report := env.Data.(map[string]interface{})["report"].(map[string]interface{})
	if imported := report["imported"].(float64); imported != 1 {
		t.Errorf("imported = %v, want 1", imported)
	}
	if rejected := report["rejected"].(float64); rejected != 1 {
		t.Errorf("rejected = %v, want 1", rejected)
	}

	// The imported record is now readable.
	if w := doJSON(t, r, http.MethodGet, "/students/STU100", nil); w.Code != http.StatusOK {
		t.Errorf("get imported record status = %d", w.Code)
	}
}

func TestImportRejectsUnsupportedExtension(t *testing.T) {
	r := newTestRouter(t)

	w := uploadFile(t, r, "students.pdf", "whatever")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestImportRejectsMalformedFile(t *testing.T) {
	r := newTestRouter(t)

	w := uploadFile(t, r, "students.json", "{broken")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestImportRequiresFile(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/import", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
