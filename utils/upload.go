package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// SaveUploadedFile stores an uploaded file under uploadDir with a generated
// name (original extension kept) and returns the relative path stored on the
// record, e.g. "/uploads/3f1c....pdf".
func SaveUploadedFile(uploadDir string, file multipart.File, header *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %v", err)
	}

	name := uuid.New().String()
	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != "" {
		name += ext
	}

	dst, err := os.Create(filepath.Join(uploadDir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %v", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("failed to write upload file: %v", err)
	}

	return path.Join("/uploads", name), nil
}
