package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"github.com/devotionalai/api/internal/client"
	"github.com/devotionalai/api/internal/model"
	"github.com/devotionalai/api/internal/notify"
	"github.com/devotionalai/api/internal/service"
	"github.com/devotionalai/api/internal/store"
)

// GenerationWorker processes generation tasks: it re-reads the authoritative
// record, marks it processing before any model call, produces the artifacts,
// uploads them, and drives the record to a terminal state. All collaborators
// are injected at construction.
type GenerationWorker struct {
	store     store.GenerationStore
	synth     client.Synthesizer
	composer  client.VideoComposer
	storage   client.StorageClient
	catalog   *service.CatalogService
	publisher notify.Publisher
}

func NewGenerationWorker(
	st store.GenerationStore,
	synth client.Synthesizer,
	composer client.VideoComposer,
	storage client.StorageClient,
	catalog *service.CatalogService,
	publisher notify.Publisher,
) *GenerationWorker {
	return &GenerationWorker{
		store:     st,
		synth:     synth,
		composer:  composer,
		storage:   storage,
		catalog:   catalog,
		publisher: publisher,
	}
}

// ProcessTask handles one queued generation.
func (w *GenerationWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload service.GenerationTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %v: %w", err, asynq.SkipRetry)
	}
	id := payload.GenerationID

	gen, err := w.store.GetGenerationAny(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn().Str("generationId", id).Msg("queued generation no longer exists")
			return fmt.Errorf("generation %s not found: %w", id, asynq.SkipRetry)
		}
		return fmt.Errorf("failed to load generation %s: %w", id, err)
	}

	// Persist the processing transition before invoking any model, so a
	// crash mid-production leaves the record visibly processing.
	if err := w.store.MarkProcessing(ctx, id); err != nil {
		if errors.Is(err, store.ErrInvalidTransition) {
			log.Warn().Str("generationId", id).Str("status", string(gen.Status)).
				Msg("skipping generation not in pending state")
			return nil
		}
		return fmt.Errorf("failed to mark generation %s processing: %w", id, err)
	}
	w.notify(ctx, notify.Event{GenerationID: id, Status: model.StatusProcessing})

	log.Info().Str("generationId", id).Str("kind", string(gen.Kind)).Msg("processing generation")
	start := time.Now()

	result, err := w.produce(ctx, gen)
	if err != nil {
		w.failGeneration(ctx, id, err)
		return err
	}
	result.ProcessingSeconds = int(time.Since(start).Seconds())

	if err := w.store.MarkCompleted(ctx, id, *result); err != nil {
		w.failGeneration(ctx, id, err)
		return err
	}
	w.notify(ctx, notify.Event{
		GenerationID: id,
		Status:       model.StatusCompleted,
		AudioURL:     result.AudioURL,
		VideoURL:     result.VideoURL,
	})

	log.Info().Str("generationId", id).Int("seconds", result.ProcessingSeconds).
		Msg("generation completed")
	return nil
}

// produce synthesizes the speech, optionally composes the lyric video, and
// uploads the artifacts. Local temp files are removed only after their
// upload succeeds; the failure path makes no cleanup guarantee.
func (w *GenerationWorker) produce(ctx context.Context, gen *model.Generation) (*model.GenerationResult, error) {
	audioPath, err := w.synth.SynthesizeSpeech(ctx, &client.SynthesisRequest{
		Text:        gen.InputText,
		Language:    gen.Language,
		VoiceStyle:  gen.VoiceStyle,
		VoicePreset: gen.SelectedVoice,
	})
	if err != nil {
		return nil, err
	}

	audioKey := client.ObjectKey("audio", gen.UserID, gen.ID, "wav")
	audioURL, audioSize, err := w.storage.UploadFile(ctx, audioPath, audioKey, "audio/wav")
	if err != nil {
		return nil, err
	}
	os.Remove(audioPath)

	result := &model.GenerationResult{
		AudioURL:      &audioURL,
		FileSizeBytes: audioSize,
	}

	if gen.Kind == model.KindLyricVideo {
		videoURL, videoSize, err := w.composeVideo(ctx, gen, audioURL)
		if err != nil {
			return nil, err
		}
		result.VideoURL = &videoURL
		result.FileSizeBytes += videoSize
	}

	return result, nil
}

func (w *GenerationWorker) composeVideo(ctx context.Context, gen *model.Generation, audioURL string) (string, int64, error) {
	var template *model.VideoTemplate
	if gen.TemplateID != nil {
		if t, ok := w.catalog.Template(*gen.TemplateID); ok {
			template = t
		}
	}

	videoPath, err := w.composer.ComposeLyricVideo(ctx, &client.ComposeRequest{
		AudioURL: audioURL,
		Lyrics:   gen.Lyrics,
		Template: template,
	})
	if err != nil {
		return "", 0, err
	}

	videoKey := client.ObjectKey("video", gen.UserID, gen.ID, "mp4")
	videoURL, videoSize, err := w.storage.UploadFile(ctx, videoPath, videoKey, "video/mp4")
	if err != nil {
		return "", 0, err
	}
	os.Remove(videoPath)

	return videoURL, videoSize, nil
}

// failGeneration records the terminal failure with the tagged error's own
// message, keeping wrapped internal detail out of the user-visible record.
func (w *GenerationWorker) failGeneration(ctx context.Context, id string, cause error) {
	msg := FailureMessage(cause)
	if err := w.store.MarkFailed(ctx, id, msg); err != nil {
		log.Error().Err(err).Str("generationId", id).Msg("failed to mark generation failed")
		return
	}
	w.notify(ctx, notify.Event{GenerationID: id, Status: model.StatusFailed, Error: &msg})
	log.Error().Err(cause).Str("generationId", id).Msg("generation failed")
}

// FailureMessage extracts the user-visible message from a pipeline error.
func FailureMessage(err error) string {
	var prodErr *client.ProductionError
	if errors.As(err, &prodErr) {
		return prodErr.Message
	}
	var storageErr *client.StorageError
	if errors.As(err, &storageErr) {
		return storageErr.Message
	}
	return err.Error()
}

func (w *GenerationWorker) notify(ctx context.Context, event notify.Event) {
	if w.publisher == nil {
		return
	}
	if err := w.publisher.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Str("generationId", event.GenerationID).
			Msg("failed to publish status event")
	}
}
