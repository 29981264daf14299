package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

type Service struct {
	selector *Selector
	backend  Backend
}

func NewService(selector *Selector, backend Backend) *Service {
	return &Service{
		selector: selector,
		backend:  backend,
	}
}

// CheckDestinations verifies every strategy's destination with the backend.
func (s *Service) CheckDestinations(ctx context.Context) error {
	for _, strategy := range s.selector.Strategies() {
		if err := s.backend.Check(ctx, strategy.Dir); err != nil {
			return fmt.Errorf("%s storage: %w", strategy.MediaType, err)
		}
	}
	return nil
}

func (s *Service) Strategy(mediaType MediaType) (*Strategy, error) {
	return s.selector.Strategy(mediaType)
}

func (s *Service) Strategies() []*Strategy {
	return s.selector.Strategies()
}

// Store validates upload against the media type's strategy and writes it
// under a generated name. Rejected uploads never reach the backend.
func (s *Service) Store(ctx context.Context, mediaType MediaType, upload *Upload) (*StoredFile, error) {
	strategy, err := s.selector.Strategy(mediaType)
	if err != nil {
		return nil, err
	}

	if err := strategy.Accept(upload.Filename); err != nil {
		return nil, err
	}
	if err := strategy.CheckSize(upload.Size); err != nil {
		return nil, err
	}

	data, err := upload.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer data.Close()

	dir, err := s.selector.DestinationFor(mediaType)
	if err != nil {
		return nil, err
	}
	name := s.selector.NameFor(upload.Filename)
	location, err := s.backend.Store(ctx, dir, name, data, upload.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	log.Info().
		Str("mediaType", string(mediaType)).
		Str("name", name).
		Str("original", upload.Filename).
		Int64("size", upload.Size).
		Msg("File stored")

	return &StoredFile{
		Name:      name,
		Path:      location,
		MediaType: mediaType,
		Size:      upload.Size,
	}, nil
}
