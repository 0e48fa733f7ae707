package utils

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalEvidence stores tip evidence on disk, served under URLPrefix.
type LocalEvidence struct {
	Dir       string
	URLPrefix string
}

// NewLocalEvidence creates dir if it doesn't exist.
func NewLocalEvidence(dir, urlPrefix string) (*LocalEvidence, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to ensure upload dir: %w", err)
	}
	return &LocalEvidence{Dir: dir, URLPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

func (l *LocalEvidence) Save(ctx context.Context, fileHeader *multipart.FileHeader, key string) (string, error) {
	clean := path.Clean("/" + key)[1:]
	if clean == "" || clean == "." {
		return "", fmt.Errorf("invalid evidence key %q", key)
	}
	if err := SaveFile(fileHeader, filepath.Join(l.Dir, filepath.FromSlash(clean))); err != nil {
		return "", err
	}
	return l.URLPrefix + "/" + clean, nil
}

// SaveFile saves the uploaded file to the given destination path
func SaveFile(fileHeader *multipart.FileHeader, destPath string) error {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, file)
	return err
}
