package model

// Voice describes one selectable TTS voice preset.
type Voice struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Gender   string   `json:"gender"`
	Age      string   `json:"age"`
	Language Language `json:"language"`
}

// VideoTemplate describes a lyric-video background/text style preset.
type VideoTemplate struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Background BackgroundStyle `json:"background"`
	TextStyle  TextStyle       `json:"textStyle"`
}

type BackgroundStyle struct {
	Type  string `json:"type"` // "color" or "image"
	Color string `json:"color,omitempty"`
	URL   string `json:"url,omitempty"`
}

type TextStyle struct {
	Font     string `json:"font"`
	FontSize int    `json:"fontSize"`
	Color    string `json:"color"`
}
