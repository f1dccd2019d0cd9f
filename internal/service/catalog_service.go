package service

import "github.com/devotionalai/api/internal/model"

// CatalogService serves the static voice and video-template catalogs.
type CatalogService struct{}

func NewCatalogService() *CatalogService {
	return &CatalogService{}
}

var voices = map[model.Language][]model.Voice{
	model.LanguageSanskrit: {
		{ID: "aryan", Name: "Aryan", Gender: "male", Age: "adult", Language: model.LanguageSanskrit},
		{ID: "priya", Name: "Priya", Gender: "female", Age: "adult", Language: model.LanguageSanskrit},
		{ID: "guru", Name: "Guru", Gender: "male", Age: "elder", Language: model.LanguageSanskrit},
	},
	model.LanguageHindi: {
		{ID: "raj", Name: "Raj", Gender: "male", Age: "adult", Language: model.LanguageHindi},
		{ID: "ananya", Name: "Ananya", Gender: "female", Age: "adult", Language: model.LanguageHindi},
	},
	model.LanguageTamil: {
		{ID: "karthik", Name: "Karthik", Gender: "male", Age: "adult", Language: model.LanguageTamil},
	},
	model.LanguageTelugu: {
		{ID: "lakshmi", Name: "Lakshmi", Gender: "female", Age: "adult", Language: model.LanguageTelugu},
	},
}

var templates = []model.VideoTemplate{
	{
		ID:   "midnight",
		Name: "Midnight",
		Background: model.BackgroundStyle{
			Type:  "color",
			Color: "#1a1a2e",
		},
		TextStyle: model.TextStyle{
			Font:     "Noto-Sans-Devanagari",
			FontSize: 60,
			Color:    "white",
		},
	},
	{
		ID:   "sunrise",
		Name: "Sunrise",
		Background: model.BackgroundStyle{
			Type:  "color",
			Color: "#e8590c",
		},
		TextStyle: model.TextStyle{
			Font:     "Noto-Sans-Devanagari",
			FontSize: 64,
			Color:    "#fff4e6",
		},
	},
}

// Voices returns the selectable voices for a language. Unknown languages
// return an empty list.
func (s *CatalogService) Voices(language model.Language) []model.Voice {
	v, ok := voices[language]
	if !ok {
		return []model.Voice{}
	}
	return v
}

// Templates returns all lyric-video templates.
func (s *CatalogService) Templates() []model.VideoTemplate {
	return templates
}

// Template looks up one template by ID.
func (s *CatalogService) Template(id string) (*model.VideoTemplate, bool) {
	for i := range templates {
		if templates[i].ID == id {
			return &templates[i], true
		}
	}
	return nil, false
}
