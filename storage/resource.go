package storage

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/tsawler/layoutseq/internal/logger"
	"github.com/tsawler/layoutseq/model"
)

// ResourceTypeLocal marks a resource archived on the local filesystem
const ResourceTypeLocal = "local"

// ResourceArchiver copies source documents into the resources directory so
// chunks can reference them
type ResourceArchiver struct {
	fs      afero.Fs
	config  Config
	log     logger.Logger
	newUUID func() string
}

// NewResourceArchiver creates an archiver working on fs
func NewResourceArchiver(fs afero.Fs, config Config, log logger.Logger) *ResourceArchiver {
	return &ResourceArchiver{
		fs:      fs,
		config:  config,
		log:     logger.OrNop(log),
		newUUID: uuid.NewString,
	}
}

// ArchiveName returns the archived file name of sourcePath: a random UUID
// whose first group is replaced by the first group of documentID, followed
// by the source extension
func (a *ResourceArchiver) ArchiveName(documentID, sourcePath string) string {
	groups := strings.Split(a.newUUID(), "-")
	if prefix, _, _ := strings.Cut(documentID, "-"); prefix != "" {
		groups[0] = prefix
	}
	return strings.Join(groups, "-") + filepath.Ext(sourcePath)
}

// Archive copies sourcePath and returns the reference to the copy
func (a *ResourceArchiver) Archive(documentID, sourcePath string) (model.Resource, error) {
	if sourcePath == "" {
		return model.Resource{}, fmt.Errorf("%w: empty source path", ErrInvalidPath)
	}
	if _, err := pathElement("document id", documentID); err != nil {
		return model.Resource{}, err
	}

	if err := a.fs.MkdirAll(a.config.ResourcesPath, 0o755); err != nil {
		return model.Resource{}, fmt.Errorf("creating %s: %w", a.config.ResourcesPath, err)
	}
	dst := filepath.Join(a.config.ResourcesPath, a.ArchiveName(documentID, sourcePath))

	if err := a.copyFile(sourcePath, dst); err != nil {
		return model.Resource{}, err
	}

	a.log.Info("resource archived", "source", sourcePath, "path", dst)
	return model.Resource{Type: ResourceTypeLocal, Path: dst}, nil
}

func (a *ResourceArchiver) copyFile(src, dst string) error {
	in, err := a.fs.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := a.fs.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}
