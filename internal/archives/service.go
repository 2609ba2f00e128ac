package archives

import (
	"context"
	"fmt"
	"os"

	"github.com/Xcraft-Inc/wimlib-imagex/internal/logging"
	"github.com/Xcraft-Inc/wimlib-imagex/internal/validation"
	"github.com/Xcraft-Inc/wimlib-imagex/internal/wimlib"

	"go.uber.org/zap"
)

// Imager is the slice of the wimlib adapter the synchronous API needs.
// *wimlib.Adapter satisfies it; tests substitute fakes.
type Imager interface {
	Info(ctx context.Context, inputPath string) (map[string]any, error)
	Dir(ctx context.Context, inputPath string) (string, error)
	Verify(ctx context.Context, inputPath string) error
	Update(ctx context.Context, inputPath string, cmd *wimlib.UpdateCommand, opts wimlib.Options) (string, error)
	Extract(ctx context.Context, inputPath, pathInArchive, outputDir string, opts wimlib.Options) (string, error)
}

type Service struct {
	imageLocation string
	imager        Imager
	index         *Index
	logger        *logging.Logger
}

func NewService(imageLocation string, imager Imager, index *Index, logger *logging.Logger) *Service {
	return &Service{
		imageLocation: imageLocation,
		imager:        imager,
		index:         index,
		logger:        logger,
	}
}

func (s *Service) List() []Archive {
	return s.index.List()
}

func (s *Service) Info(ctx context.Context, name string) (map[string]any, error) {
	path, err := validation.SanitizeArchivePath(s.imageLocation, name)
	if err != nil {
		return nil, err
	}
	return s.imager.Info(ctx, path)
}

func (s *Service) Dir(ctx context.Context, name string) (string, error) {
	path, err := validation.SanitizeArchivePath(s.imageLocation, name)
	if err != nil {
		return "", err
	}
	return s.imager.Dir(ctx, path)
}

func (s *Service) Verify(ctx context.Context, name string) error {
	path, err := validation.SanitizeArchivePath(s.imageLocation, name)
	if err != nil {
		return err
	}
	return s.imager.Verify(ctx, path)
}

func (s *Service) Update(ctx context.Context, name string, req UpdateRequest) (string, error) {
	path, err := validation.SanitizeArchivePath(s.imageLocation, name)
	if err != nil {
		return "", err
	}
	if req.Command == nil {
		return "", wimlib.ErrMissingUpdateCommand
	}

	s.logger.Info("updating archive",
		zap.String("archive", name),
		zap.String("op", string(req.Command.Op)))

	return s.imager.Update(ctx, path, req.Command, req.Options)
}

// ArchivePath resolves name under the image location for download handlers.
func (s *Service) ArchivePath(name string) (string, error) {
	return validation.SanitizeArchivePath(s.imageLocation, name)
}

// Delete removes the archive file. Deleting an archive that is already gone
// is not an error.
func (s *Service) Delete(name string) error {
	path, err := validation.SanitizeArchivePath(s.imageLocation, name)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug("archive already deleted", zap.String("archive", name))
			return nil
		}
		return fmt.Errorf("cannot delete archive: %w", err)
	}

	s.logger.Info("archive deleted", zap.String("archive", name))
	return nil
}

// Rename moves an archive to a new name inside the image location.
func (s *Service) Rename(oldName, newName string) error {
	oldPath, err := validation.SanitizeArchivePath(s.imageLocation, oldName)
	if err != nil {
		return fmt.Errorf("invalid source name: %w", err)
	}
	newPath, err := validation.SanitizeArchivePath(s.imageLocation, newName)
	if err != nil {
		return fmt.Errorf("invalid destination name: %w", err)
	}

	if _, err := os.Stat(newPath); err == nil {
		return fmt.Errorf("archive '%s' already exists", newName)
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("cannot rename archive: %w", err)
	}

	s.logger.Info("archive renamed",
		zap.String("from", oldName),
		zap.String("to", newName))
	return nil
}

// ExtractFile streams one file out of the archive via the tool's to-stdout
// mode and returns its content as text.
func (s *Service) ExtractFile(ctx context.Context, name, pathInArchive string, imageIndex int) (string, error) {
	if pathInArchive == "" {
		return "", fmt.Errorf("path in archive is required")
	}
	path, err := validation.SanitizeArchivePath(s.imageLocation, name)
	if err != nil {
		return "", err
	}

	opts := wimlib.Options{
		ToStdout:   true,
		NoGlobs:    true,
		ImageIndex: imageIndex,
	}
	return s.imager.Extract(ctx, path, pathInArchive, "", opts)
}
