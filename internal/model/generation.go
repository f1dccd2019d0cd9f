package model

import "time"

// Generation represents one speech/video generation request and its lifecycle.
// It is created by the API in pending state and mutated only by the worker.
type Generation struct {
	ID                string           `json:"id"`
	UserID            string           `json:"userId"`
	Kind              GenerationKind   `json:"kind"`
	Status            GenerationStatus `json:"status"`
	InputText         string           `json:"inputText"`
	Language          Language         `json:"language"`
	VoiceStyle        VoiceStyle       `json:"voiceStyle"`
	SelectedVoice     string           `json:"selectedVoice"`
	TemplateID        *string          `json:"templateId,omitempty"`
	Lyrics            []LyricCue       `json:"lyrics,omitempty"`
	AudioURL          *string          `json:"audioUrl"`
	VideoURL          *string          `json:"videoUrl"`
	Error             *string          `json:"error,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
	StartedAt         *time.Time       `json:"startedAt,omitempty"`
	CompletedAt       *time.Time       `json:"completedAt,omitempty"`
	ProcessingSeconds int              `json:"processingSeconds"`
	FileSizeBytes     int64            `json:"fileSizeBytes"`
}

// LyricCue is one timed caption line in a lyric video.
type LyricCue struct {
	Text  string  `json:"text" validate:"required"`
	Start float64 `json:"start" validate:"min=0"`
	End   float64 `json:"end" validate:"required,gtfield=Start"`
}

// GenerationCreateRequest is the submission body for POST /api/generations
type GenerationCreateRequest struct {
	Kind          GenerationKind `json:"kind" validate:"required,oneof=tts_mantra lyric_video"`
	InputText     string         `json:"inputText" validate:"required,min=1,max=2000"`
	Language      Language       `json:"language" validate:"required,oneof=sanskrit hindi tamil telugu"`
	VoiceStyle    VoiceStyle     `json:"voiceStyle" validate:"required,oneof=devotional meditative energetic calm"`
	SelectedVoice string         `json:"selectedVoice" validate:"required"`
	TemplateID    *string        `json:"templateId" validate:"omitempty"`
	Lyrics        []LyricCue     `json:"lyrics" validate:"omitempty,min=1,dive"`
}

// GenerationListResponse wraps a page of the caller's generations.
type GenerationListResponse struct {
	Generations []*Generation `json:"generations"`
	Offset      int           `json:"offset"`
	Limit       int           `json:"limit"`
}

// GenerationParams carries the request parameters into the store.
type GenerationParams struct {
	Kind          GenerationKind
	InputText     string
	Language      Language
	VoiceStyle    VoiceStyle
	SelectedVoice string
	TemplateID    *string
	Lyrics        []LyricCue
}

// GenerationResult holds everything the worker persists on success.
type GenerationResult struct {
	AudioURL          *string
	VideoURL          *string
	ProcessingSeconds int
	FileSizeBytes     int64
}
