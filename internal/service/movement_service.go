package service

import (
	"alcyxob/boxing-app/internal/content"
	"alcyxob/boxing-app/internal/domain"
	"alcyxob/boxing-app/internal/repository"
	"alcyxob/boxing-app/internal/storage"
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	ErrMovementNotFound     = newError(ErrNotFound, "movement not found")
	ErrMovementNameRequired = newError(ErrValidation, "movementName is required")
	ErrMediaNotFound        = newError(ErrNotFound, "media not found")
)

// MediaLink is a temporary download URL for a movement's media item.
type MediaLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type MovementInput struct {
	MovementName    string                   `json:"movementName"`
	MovementDesc    string                   `json:"movementDesc"`
	MovementImage   string                   `json:"movementImage"`
	MovementContent []domain.MovementContent `json:"movementContent"`
}

// --- Service Interface ---
type MovementService interface {
	ListMovements(ctx context.Context) ([]domain.Movement, error)
	GetMovement(ctx context.Context, id primitive.ObjectID) (*domain.Movement, error)
	CreateMovement(ctx context.Context, in MovementInput) (*domain.Movement, error)
	UpdateMovement(ctx context.Context, id primitive.ObjectID, in MovementInput) (*domain.Movement, error)
	DeleteMovement(ctx context.Context, id primitive.ObjectID) error
	AddMedia(ctx context.Context, id primitive.ObjectID, file Upload) (*domain.Movement, error)
	MediaLink(ctx context.Context, id primitive.ObjectID, index int) (*MediaLink, error)
}

type movementService struct {
	repo           repository.MovementRepository
	storage        storage.FileStorage
	logger         *zap.Logger
	maxUploadBytes int64
}

// NewMovementService creates a new instance of movementService.
func NewMovementService(repo repository.MovementRepository, fileStorage storage.FileStorage, logger *zap.Logger, maxUploadBytes int64) MovementService {
	return &movementService{
		repo:           repo,
		storage:        fileStorage,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

func (s *movementService) ListMovements(ctx context.Context) ([]domain.Movement, error) {
	movements, err := s.repo.List(ctx)
	if err != nil {
		return nil, storageError("list movements", err)
	}
	return movements, nil
}

func (s *movementService) GetMovement(ctx context.Context, id primitive.ObjectID) (*domain.Movement, error) {
	movement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMovementNotFound
		}
		return nil, storageError("load movement", err)
	}
	return movement, nil
}

// prepareContent validates block types and renders text blocks to sanitized HTML.
func prepareContent(blocks []domain.MovementContent) ([]domain.MovementContent, error) {
	out := make([]domain.MovementContent, len(blocks))
	for i, b := range blocks {
		switch b.Type {
		case domain.ContentText:
			html, err := content.RenderMarkdown(b.Value)
			if err != nil {
				return nil, validationError("content block %d: %v", i+1, err)
			}
			b.HTML = html
		case domain.ContentImage, domain.ContentVideo:
			b.HTML = ""
		default:
			return nil, validationError("content block %d: unknown type %q", i+1, b.Type)
		}
		out[i] = b
	}
	return out, nil
}

func (s *movementService) apply(movement *domain.Movement, in MovementInput) error {
	name := strings.TrimSpace(in.MovementName)
	if name == "" {
		return ErrMovementNameRequired
	}
	blocks, err := prepareContent(in.MovementContent)
	if err != nil {
		return err
	}
	movement.MovementName = name
	movement.MovementDesc = strings.TrimSpace(in.MovementDesc)
	movement.MovementImage = strings.TrimSpace(in.MovementImage)
	movement.MovementContent = blocks
	return nil
}

func (s *movementService) CreateMovement(ctx context.Context, in MovementInput) (*domain.Movement, error) {
	movement := &domain.Movement{Media: []domain.Media{}}
	if err := s.apply(movement, in); err != nil {
		return nil, err
	}
	id, err := s.repo.Create(ctx, movement)
	if err != nil {
		return nil, storageError("create movement", err)
	}
	movement.ID = id
	return movement, nil
}

func (s *movementService) UpdateMovement(ctx context.Context, id primitive.ObjectID, in MovementInput) (*domain.Movement, error) {
	movement, err := s.GetMovement(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(movement, in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, movement); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMovementNotFound
		}
		return nil, storageError("update movement", err)
	}
	return movement, nil
}

// DeleteMovement removes the movement and, best effort, its uploaded media.
func (s *movementService) DeleteMovement(ctx context.Context, id primitive.ObjectID) error {
	movement, err := s.GetMovement(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMovementNotFound
		}
		return storageError("delete movement", err)
	}
	if s.storage != nil {
		for _, m := range movement.Media {
			if err := s.storage.DeleteObject(ctx, m.FileID); err != nil {
				s.logger.Warn("failed to delete media object", zap.String("key", m.FileID), zap.Error(err))
			}
		}
	}
	return nil
}

// AddMedia validates and stores file, then appends it to the movement's media list.
func (s *movementService) AddMedia(ctx context.Context, id primitive.ObjectID, file Upload) (*domain.Movement, error) {
	info, err := storage.ValidateMedia(file.Data, s.maxUploadBytes)
	if err != nil {
		return nil, validationError("file %q: %v", file.Name, err)
	}
	movement, err := s.GetMovement(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.storage == nil {
		return nil, storageError("store media", errors.New("object storage is not configured"))
	}

	key := storage.ObjectKey("movements/"+id.Hex(), info)
	url, err := s.storage.PutObject(ctx, key, info.ContentType, file.Data)
	if err != nil {
		return nil, storageError("store media", err)
	}
	movement.Media = append(movement.Media, domain.Media{
		URL:          url,
		Type:         info.Kind,
		FileID:       key,
		OriginalName: file.Name,
	})
	if err := s.repo.Update(ctx, movement); err != nil {
		return nil, storageError("update movement", err)
	}
	return movement, nil
}

// MediaLink signs a short-lived download URL for the media item at index.
func (s *movementService) MediaLink(ctx context.Context, id primitive.ObjectID, index int) (*MediaLink, error) {
	movement, err := s.GetMovement(ctx, id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(movement.Media) {
		return nil, ErrMediaNotFound
	}
	if s.storage == nil {
		return nil, storageError("sign media link", errors.New("object storage is not configured"))
	}
	url, err := s.storage.GeneratePresignedDownloadURL(ctx, movement.Media[index].FileID, storage.DefaultPresignedURLExpiry)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrMediaNotFound
		}
		return nil, storageError("sign media link", err)
	}
	return &MediaLink{URL: url, ExpiresAt: time.Now().UTC().Add(storage.DefaultPresignedURLExpiry)}, nil
}
