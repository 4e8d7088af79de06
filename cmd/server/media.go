package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"example.com/tweetfeed/internal/models"
	"example.com/tweetfeed/internal/store"
	"github.com/google/uuid"
)

// multipartOverhead is the room left for boundaries and part headers on top of
// the file size limit.
const multipartOverhead = 16 << 10

// uploadMediaHandler stores the multipart "file" field under the upload
// directory and records it as detached media.
func (s *Server) uploadMediaHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+multipartOverhead)
	defer r.Body.Close()

	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeBadRequest(w, fmt.Sprintf("file exceeds %d bytes", s.maxUpload))
			return
		}
		writeBadRequest(w, "invalid multipart body")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, hdr, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "missing file field")
		return
	}
	defer file.Close()

	if hdr.Size > s.maxUpload {
		writeBadRequest(w, fmt.Sprintf("file exceeds %d bytes", s.maxUpload))
		return
	}

	name := uploadName(hdr.Filename)
	if name == "" {
		writeBadRequest(w, "invalid file name")
		return
	}

	stored, err := s.saveUpload(name, file)
	if err != nil {
		writeError(w, "http/medias", err)
		return
	}

	var media models.Media
	err = s.store.WithTx(r.Context(), func(tx store.Tx) error {
		var err error
		media, err = tx.CreateMedia(r.Context(), stored)
		return err
	})
	if err != nil {
		_ = os.Remove(filepath.Join(s.uploadDir, stored))
		writeError(w, "http/medias", err)
		return
	}

	logg.Info("http/medias", "Stored upload "+stored)
	writeOK(w, http.StatusCreated, map[string]any{"media_id": media.ID})
}

// uploadName strips any directory components a client put in the file name.
func uploadName(original string) string {
	name := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	switch name {
	case ".", "..", "/":
		return ""
	}
	return name
}

// saveUpload writes src to the upload directory as name, prefixing a uuid when
// the name is already taken. It returns the name actually used.
func (s *Server) saveUpload(name string, src io.Reader) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	stored := name
	f, err := os.OpenFile(filepath.Join(s.uploadDir, stored), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		stored = uuid.NewString() + "_" + name
		f, err = os.OpenFile(filepath.Join(s.uploadDir, stored), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	}
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("close upload file: %w", err)
	}
	return stored, nil
}
