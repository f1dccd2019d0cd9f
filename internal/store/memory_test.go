package store

import (
	"context"
	"sync"
	"testing"

	"github.com/devotionalai/api/internal/model"
)

func newTestUser(t *testing.T, s *MemoryStore, email string, limit int) *model.User {
	t.Helper()
	user, err := s.CreateUser(context.Background(), email, "hash", "Test User", model.PlanFree, limit)
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func mantraParams() model.GenerationParams {
	return model.GenerationParams{
		Kind:          model.KindTTSMantra,
		InputText:     "Om Namah Shivaya",
		Language:      model.LanguageSanskrit,
		VoiceStyle:    model.StyleDevotional,
		SelectedVoice: "aryan",
	}
}

func TestCreateGeneration_IncrementsCounter(t *testing.T) {
	s := NewMemoryStore()
	user := newTestUser(t, s, "a@example.com", 5)
	ctx := context.Background()

	gen, err := s.CreateGeneration(ctx, user.ID, mantraParams())
	if err != nil {
		t.Fatalf("CreateGeneration failed: %v", err)
	}
	if gen.Status != model.StatusPending {
		t.Errorf("expected pending status, got %s", gen.Status)
	}
	if gen.ID == "" {
		t.Error("expected an assigned ID")
	}

	updated, err := s.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if updated.GenerationsCount != 1 {
		t.Errorf("expected count 1, got %d", updated.GenerationsCount)
	}
}

func TestCreateGeneration_QuotaExceeded(t *testing.T) {
	s := NewMemoryStore()
	user := newTestUser(t, s, "a@example.com", 5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := s.CreateGeneration(ctx, user.ID, mantraParams()); err != nil {
			t.Fatalf("submission %d failed: %v", i+1, err)
		}
	}

	if _, err := s.CreateGeneration(ctx, user.ID, mantraParams()); err != ErrQuotaExceeded {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}

	// Neither a record was added nor the counter bumped
	list, err := s.ListGenerations(ctx, user.ID, 0, 100)
	if err != nil {
		t.Fatalf("ListGenerations failed: %v", err)
	}
	if len(list) != 5 {
		t.Errorf("expected 5 records, got %d", len(list))
	}
	updated, _ := s.GetUserByID(ctx, user.ID)
	if updated.GenerationsCount != 5 {
		t.Errorf("expected count 5, got %d", updated.GenerationsCount)
	}
}

func TestCreateGeneration_ConcurrentAtQuotaBoundary(t *testing.T) {
	s := NewMemoryStore()
	user := newTestUser(t, s, "a@example.com", 5)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateGeneration(ctx, user.ID, mantraParams())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var created int
	for err := range results {
		if err == nil {
			created++
		} else if err != ErrQuotaExceeded {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if created != 5 {
		t.Errorf("expected exactly 5 creations, got %d", created)
	}

	updated, _ := s.GetUserByID(ctx, user.ID)
	if updated.GenerationsCount != 5 {
		t.Errorf("expected count 5, got %d", updated.GenerationsCount)
	}
}

func TestStatusTransitions_Monotonic(t *testing.T) {
	s := NewMemoryStore()
	user := newTestUser(t, s, "a@example.com", 5)
	ctx := context.Background()

	gen, _ := s.CreateGeneration(ctx, user.ID, mantraParams())

	// completed before processing is rejected
	if err := s.MarkCompleted(ctx, gen.ID, model.GenerationResult{}); err != ErrInvalidTransition {
		t.Errorf("expected ErrInvalidTransition for pending→completed, got %v", err)
	}

	if err := s.MarkProcessing(ctx, gen.ID); err != nil {
		t.Fatalf("MarkProcessing failed: %v", err)
	}
	// second delivery of the same job cannot re-enter processing
	if err := s.MarkProcessing(ctx, gen.ID); err != ErrInvalidTransition {
		t.Errorf("expected ErrInvalidTransition for processing→processing, got %v", err)
	}

	url := "https://cdn.example/audio/u/g.wav"
	if err := s.MarkCompleted(ctx, gen.ID, model.GenerationResult{AudioURL: &url}); err != nil {
		t.Fatalf("MarkCompleted failed: %v", err)
	}

	// terminal states never regress
	if err := s.MarkFailed(ctx, gen.ID, "late failure"); err != ErrInvalidTransition {
		t.Errorf("expected ErrInvalidTransition for completed→failed, got %v", err)
	}
	if err := s.MarkProcessing(ctx, gen.ID); err != ErrInvalidTransition {
		t.Errorf("expected ErrInvalidTransition for completed→processing, got %v", err)
	}
}

func TestMarkCompleted_SetsResultFields(t *testing.T) {
	s := NewMemoryStore()
	user := newTestUser(t, s, "a@example.com", 5)
	ctx := context.Background()

	gen, _ := s.CreateGeneration(ctx, user.ID, mantraParams())
	if err := s.MarkProcessing(ctx, gen.ID); err != nil {
		t.Fatalf("MarkProcessing failed: %v", err)
	}

	url := "https://cdn.example/audio/42/17.wav"
	err := s.MarkCompleted(ctx, gen.ID, model.GenerationResult{
		AudioURL:          &url,
		ProcessingSeconds: 12,
		FileSizeBytes:     480044,
	})
	if err != nil {
		t.Fatalf("MarkCompleted failed: %v", err)
	}

	got, _ := s.GetGeneration(ctx, gen.ID, user.ID)
	if got.Status != model.StatusCompleted {
		t.Errorf("expected completed, got %s", got.Status)
	}
	if got.AudioURL == nil || *got.AudioURL != url {
		t.Errorf("expected audio URL %q, got %v", url, got.AudioURL)
	}
	if got.CompletedAt == nil {
		t.Error("expected non-nil completedAt")
	}
	if got.ProcessingSeconds != 12 || got.FileSizeBytes != 480044 {
		t.Errorf("unexpected timing/size: %d %d", got.ProcessingSeconds, got.FileSizeBytes)
	}
}

func TestMarkFailed_SetsErrorAndKeepsURLsNull(t *testing.T) {
	s := NewMemoryStore()
	user := newTestUser(t, s, "a@example.com", 5)
	ctx := context.Background()

	gen, _ := s.CreateGeneration(ctx, user.ID, mantraParams())
	s.MarkProcessing(ctx, gen.ID)

	if err := s.MarkFailed(ctx, gen.ID, "invalid voice preset"); err != nil {
		t.Fatalf("MarkFailed failed: %v", err)
	}

	got, _ := s.GetGeneration(ctx, gen.ID, user.ID)
	if got.Status != model.StatusFailed {
		t.Errorf("expected failed, got %s", got.Status)
	}
	if got.Error == nil || *got.Error != "invalid voice preset" {
		t.Errorf("expected error message preserved, got %v", got.Error)
	}
	if got.AudioURL != nil || got.VideoURL != nil {
		t.Error("expected nil artifact URLs on failed record")
	}
}

func TestOwnerIsolation(t *testing.T) {
	s := NewMemoryStore()
	alice := newTestUser(t, s, "alice@example.com", 5)
	bob := newTestUser(t, s, "bob@example.com", 5)
	ctx := context.Background()

	aliceGen, _ := s.CreateGeneration(ctx, alice.ID, mantraParams())
	bobGen, _ := s.CreateGeneration(ctx, bob.ID, mantraParams())

	if _, err := s.GetGeneration(ctx, bobGen.ID, alice.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound for cross-owner get, got %v", err)
	}

	list, _ := s.ListGenerations(ctx, alice.ID, 0, 100)
	for _, gen := range list {
		if gen.ID == bobGen.ID {
			t.Error("alice's list contains bob's record")
		}
	}
	if len(list) != 1 || list[0].ID != aliceGen.ID {
		t.Errorf("expected alice's single record, got %d records", len(list))
	}
}

func TestListGenerations_Pagination(t *testing.T) {
	s := NewMemoryStore()
	user := newTestUser(t, s, "a@example.com", 100)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 7; i++ {
		gen, err := s.CreateGeneration(ctx, user.ID, mantraParams())
		if err != nil {
			t.Fatalf("CreateGeneration failed: %v", err)
		}
		ids = append(ids, gen.ID)
	}

	page, err := s.ListGenerations(ctx, user.ID, 2, 3)
	if err != nil {
		t.Fatalf("ListGenerations failed: %v", err)
	}
	if len(page) != 3 {
		t.Fatalf("expected 3 records, got %d", len(page))
	}
	// creation order is preserved
	for i, gen := range page {
		if gen.ID != ids[2+i] {
			t.Errorf("page[%d] = %s, want %s", i, gen.ID, ids[2+i])
		}
	}

	empty, _ := s.ListGenerations(ctx, user.ID, 50, 10)
	if len(empty) != 0 {
		t.Errorf("expected empty page past the end, got %d", len(empty))
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := NewMemoryStore()
	newTestUser(t, s, "a@example.com", 5)

	_, err := s.CreateUser(context.Background(), "a@example.com", "hash", "Other", model.PlanFree, 5)
	if err != ErrEmailTaken {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}
