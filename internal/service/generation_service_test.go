package service

import (
	"context"
	"errors"
	"testing"

	"github.com/devotionalai/api/internal/model"
	"github.com/devotionalai/api/internal/store"
)

type fakeEnqueuer struct {
	enqueued []string
	err      error
}

func (f *fakeEnqueuer) EnqueueGeneration(ctx context.Context, generationID string) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, generationID)
	return nil
}

func setupGenerationService(t *testing.T, limit int) (*GenerationService, *store.MemoryStore, *fakeEnqueuer, string) {
	t.Helper()
	st := store.NewMemoryStore()
	user, err := st.CreateUser(context.Background(), "a@example.com", "hash", "Test User", model.PlanFree, limit)
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	enq := &fakeEnqueuer{}
	return NewGenerationService(st, enq), st, enq, user.ID
}

func mantraRequest() *model.GenerationCreateRequest {
	return &model.GenerationCreateRequest{
		Kind:          model.KindTTSMantra,
		InputText:     "Om Namah Shivaya",
		Language:      model.LanguageSanskrit,
		VoiceStyle:    model.StyleDevotional,
		SelectedVoice: "aryan",
	}
}

func TestSubmit_CreatesPendingAndEnqueues(t *testing.T) {
	svc, st, enq, userID := setupGenerationService(t, 5)
	ctx := context.Background()

	gen, err := svc.Submit(ctx, userID, mantraRequest())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if gen.Status != model.StatusPending {
		t.Errorf("expected pending, got %s", gen.Status)
	}
	if len(enq.enqueued) != 1 || enq.enqueued[0] != gen.ID {
		t.Errorf("expected enqueued [%s], got %v", gen.ID, enq.enqueued)
	}

	user, _ := st.GetUserByID(ctx, userID)
	if user.GenerationsCount != 1 {
		t.Errorf("expected count 1, got %d", user.GenerationsCount)
	}
}

func TestSubmit_QuotaExceededDoesNotEnqueue(t *testing.T) {
	svc, _, enq, userID := setupGenerationService(t, 1)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, userID, mantraRequest()); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	_, err := svc.Submit(ctx, userID, mantraRequest())
	if !errors.Is(err, store.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if len(enq.enqueued) != 1 {
		t.Errorf("expected 1 enqueue, got %d", len(enq.enqueued))
	}
}

func TestSubmit_LyricVideoRequiresLyrics(t *testing.T) {
	svc, st, enq, userID := setupGenerationService(t, 5)
	ctx := context.Background()

	req := mantraRequest()
	req.Kind = model.KindLyricVideo

	_, err := svc.Submit(ctx, userID, req)
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if len(enq.enqueued) != 0 {
		t.Error("rejected request must not be enqueued")
	}

	// The counter is untouched by a pre-store rejection
	user, _ := st.GetUserByID(ctx, userID)
	if user.GenerationsCount != 0 {
		t.Errorf("expected count 0, got %d", user.GenerationsCount)
	}
}

func TestSubmit_LyricVideoWithCues(t *testing.T) {
	svc, _, enq, userID := setupGenerationService(t, 5)

	req := mantraRequest()
	req.Kind = model.KindLyricVideo
	tpl := "sunrise"
	req.TemplateID = &tpl
	req.Lyrics = []model.LyricCue{{Text: "Om Namah Shivaya", Start: 0, End: 4.5}}

	gen, err := svc.Submit(context.Background(), userID, req)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if gen.Kind != model.KindLyricVideo {
		t.Errorf("expected lyric_video, got %s", gen.Kind)
	}
	if len(enq.enqueued) != 1 {
		t.Errorf("expected 1 enqueue, got %d", len(enq.enqueued))
	}
}

func TestList_ClampsOffsetAndLimit(t *testing.T) {
	svc, _, _, userID := setupGenerationService(t, 100)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Submit(ctx, userID, mantraRequest()); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}

	resp, err := svc.List(ctx, userID, -5, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if resp.Offset != 0 {
		t.Errorf("expected offset clamped to 0, got %d", resp.Offset)
	}
	if resp.Limit != defaultListLimit {
		t.Errorf("expected default limit %d, got %d", defaultListLimit, resp.Limit)
	}

	resp, err = svc.List(ctx, userID, 0, 5000)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if resp.Limit != maxListLimit {
		t.Errorf("expected limit clamped to %d, got %d", maxListLimit, resp.Limit)
	}
	if len(resp.Generations) != 3 {
		t.Errorf("expected 3 records, got %d", len(resp.Generations))
	}
}

func TestGet_OwnerScoped(t *testing.T) {
	svc, st, _, userID := setupGenerationService(t, 5)
	ctx := context.Background()

	other, err := st.CreateUser(ctx, "b@example.com", "hash", "Other", model.PlanFree, 5)
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	gen, err := svc.Submit(ctx, userID, mantraRequest())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if _, err := svc.Get(ctx, other.ID, gen.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for non-owner, got %v", err)
	}
	got, err := svc.Get(ctx, userID, gen.ID)
	if err != nil || got.ID != gen.ID {
		t.Errorf("owner get failed: %v", err)
	}
}
