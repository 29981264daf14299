package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/filedepot/filedepot_server/internal/response"
)

const (
	MiB = int64(1024 * 1024)

	DefaultVideoMaxSize = 4096 * MiB
	DefaultImageMaxSize = 200 * MiB

	extensionRejectedMessage = "必须上传 .jpg 或 .png 格式的图片"
	tooManyFilesMessage      = "too many files"
)

var (
	ErrFileTooLarge      = errors.New("file too large")
	ErrUnknownMediaType  = errors.New("unknown media type")
	ImageExtensions      = []string{"jpg", "jpeg", "png", "bmp", "gif", "tiff"}
	ErrExtensionRejected = response.NewError(extensionRejectedMessage)
	ErrTooManyFiles      = response.NewError(tooManyFilesMessage)
)

// Strategy is the storage policy for one media type.
type Strategy struct {
	MediaType MediaType
	Dir       string
	MaxSize   int64
	MaxFiles  int
	// AllowedExtensions holds lower-cased extensions. Empty means any.
	AllowedExtensions map[string]bool
}

func NewVideoStrategy(dir string, maxSize int64) *Strategy {
	if maxSize <= 0 {
		maxSize = DefaultVideoMaxSize
	}
	return &Strategy{
		MediaType: MediaTypeVideo,
		Dir:       dir,
		MaxSize:   maxSize,
		MaxFiles:  1,
	}
}

func NewImageStrategy(dir string, maxSize int64) *Strategy {
	if maxSize <= 0 {
		maxSize = DefaultImageMaxSize
	}
	allowed := make(map[string]bool, len(ImageExtensions))
	for _, ext := range ImageExtensions {
		allowed[ext] = true
	}
	return &Strategy{
		MediaType:         MediaTypeImage,
		Dir:               dir,
		MaxSize:           maxSize,
		MaxFiles:          1,
		AllowedExtensions: allowed,
	}
}

// Accept checks the original file name against the extension allow-list.
// Comparison is case-insensitive.
func (s *Strategy) Accept(original string) error {
	if len(s.AllowedExtensions) == 0 {
		return nil
	}
	if !s.AllowedExtensions[strings.ToLower(Extension(original))] {
		return ErrExtensionRejected
	}
	return nil
}

func (s *Strategy) CheckSize(size int64) error {
	if s.MaxSize > 0 && size > s.MaxSize {
		return fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, size, s.MaxSize)
	}
	return nil
}

// Selector picks the Strategy for a media type and names files.
type Selector struct {
	strategies map[MediaType]*Strategy
}

func NewSelector(strategies ...*Strategy) *Selector {
	selector := &Selector{strategies: make(map[MediaType]*Strategy, len(strategies))}
	for _, strategy := range strategies {
		selector.strategies[strategy.MediaType] = strategy
	}
	return selector
}

func (s *Selector) Strategy(mediaType MediaType) (*Strategy, error) {
	strategy, ok := s.strategies[mediaType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMediaType, mediaType)
	}
	return strategy, nil
}

func (s *Selector) DestinationFor(mediaType MediaType) (string, error) {
	strategy, err := s.Strategy(mediaType)
	if err != nil {
		return "", err
	}
	return strategy.Dir, nil
}

func (s *Selector) NameFor(original string) string {
	return GenerateName(original)
}

// Strategies returns the configured strategies, video first.
func (s *Selector) Strategies() []*Strategy {
	strategies := make([]*Strategy, 0, len(s.strategies))
	for _, mediaType := range []MediaType{MediaTypeVideo, MediaTypeImage} {
		if strategy, ok := s.strategies[mediaType]; ok {
			strategies = append(strategies, strategy)
		}
	}
	return strategies
}
