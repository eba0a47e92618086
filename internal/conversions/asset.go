package conversions

import (
	"context"
	"fmt"
	"io"
	"os"

	"resume-converter/internal/shared/storage/object"
)

// TemplateSource yields the DOCX template bytes used for composition.
type TemplateSource interface {
	Load(ctx context.Context) ([]byte, error)
}

// FileTemplateSource reads the template from the local filesystem.
type FileTemplateSource struct {
	Path string
}

func (s FileTemplateSource) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", s.Path, err)
	}
	return data, nil
}

// ObjectTemplateSource reads the template from an object store key.
type ObjectTemplateSource struct {
	Store object.ObjectStore
	Key   string
}

func (s ObjectTemplateSource) Load(ctx context.Context) ([]byte, error) {
	rc, err := s.Store.Open(ctx, s.Key)
	if err != nil {
		return nil, fmt.Errorf("open template %s: %w", s.Key, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", s.Key, err)
	}
	return data, nil
}

// StaticTemplateSource serves in-memory template bytes.
type StaticTemplateSource struct {
	Data []byte
}

func (s StaticTemplateSource) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Data, nil
}
