package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"github.com/devotionalai/api/internal/model"
	"github.com/devotionalai/api/internal/store"
)

// TaskTypeGeneration is the asynq task type for generation processing.
const TaskTypeGeneration = "generation:process"

// QueueGeneration is the asynq queue the worker tier consumes.
const QueueGeneration = "generation"

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// GenerationTaskPayload is the queued message. It carries only the record
// identifier; the worker re-reads the authoritative record from the store.
type GenerationTaskPayload struct {
	GenerationID string `json:"generationId"`
}

// Enqueuer hands generation tasks to the worker tier.
type Enqueuer interface {
	EnqueueGeneration(ctx context.Context, generationID string) error
}

// AsynqEnqueuer implements Enqueuer on an asynq client.
type AsynqEnqueuer struct {
	client *asynq.Client
}

func NewAsynqEnqueuer(client *asynq.Client) *AsynqEnqueuer {
	return &AsynqEnqueuer{client: client}
}

// EnqueueGeneration enqueues one generation by ID. MaxRetry is zero: a
// failed generation is terminal and resubmission means a new record.
func (e *AsynqEnqueuer) EnqueueGeneration(ctx context.Context, generationID string) error {
	data, err := json.Marshal(GenerationTaskPayload{GenerationID: generationID})
	if err != nil {
		return fmt.Errorf("failed to marshal task payload: %w", err)
	}
	task := asynq.NewTask(TaskTypeGeneration, data)
	_, err = e.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueGeneration),
		asynq.MaxRetry(0),
		asynq.Retention(24*time.Hour),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// GenerationService handles submission and read paths for generations.
type GenerationService struct {
	store    store.GenerationStore
	enqueuer Enqueuer
}

func NewGenerationService(st store.GenerationStore, enqueuer Enqueuer) *GenerationService {
	return &GenerationService{store: st, enqueuer: enqueuer}
}

// Submit creates a pending record (counting against the owner's quota in
// the same transaction) and enqueues it for the worker tier.
func (s *GenerationService) Submit(ctx context.Context, userID string, req *model.GenerationCreateRequest) (*model.Generation, error) {
	if req.Kind == model.KindLyricVideo && len(req.Lyrics) == 0 {
		return nil, fmt.Errorf("%w: lyric_video requires at least one lyric cue", ErrInvalidRequest)
	}

	gen, err := s.store.CreateGeneration(ctx, userID, model.GenerationParams{
		Kind:          req.Kind,
		InputText:     req.InputText,
		Language:      req.Language,
		VoiceStyle:    req.VoiceStyle,
		SelectedVoice: req.SelectedVoice,
		TemplateID:    req.TemplateID,
		Lyrics:        req.Lyrics,
	})
	if err != nil {
		return nil, err
	}

	if err := s.enqueuer.EnqueueGeneration(ctx, gen.ID); err != nil {
		// The record exists and has been counted; it will sit pending
		// until requeued by an operator.
		log.Error().Err(err).Str("generationId", gen.ID).Msg("failed to enqueue generation")
		return nil, err
	}

	log.Info().Str("generationId", gen.ID).Str("userId", userID).
		Str("kind", string(gen.Kind)).Msg("generation submitted")
	return gen, nil
}

// Get returns the record if owned by the caller.
func (s *GenerationService) Get(ctx context.Context, userID, id string) (*model.Generation, error) {
	return s.store.GetGeneration(ctx, id, userID)
}

// List returns a page of the caller's records in creation order.
func (s *GenerationService) List(ctx context.Context, userID string, offset, limit int) (*model.GenerationListResponse, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	generations, err := s.store.ListGenerations(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	return &model.GenerationListResponse{
		Generations: generations,
		Offset:      offset,
		Limit:       limit,
	}, nil
}
