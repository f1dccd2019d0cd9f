package model

// Generation kinds
type GenerationKind string

const (
	KindTTSMantra  GenerationKind = "tts_mantra"
	KindLyricVideo GenerationKind = "lyric_video"
)

var ValidKinds = []GenerationKind{KindTTSMantra, KindLyricVideo}

// Generation status
type GenerationStatus string

const (
	StatusPending    GenerationStatus = "pending"
	StatusProcessing GenerationStatus = "processing"
	StatusCompleted  GenerationStatus = "completed"
	StatusFailed     GenerationStatus = "failed"
)

// statusRank orders the lifecycle. Transitions may only move to a higher rank.
var statusRank = map[GenerationStatus]int{
	StatusPending:    0,
	StatusProcessing: 1,
	StatusCompleted:  2,
	StatusFailed:     2,
}

// CanTransition reports whether a record may move from one status to another.
// Both terminal states share a rank, so completed never flips to failed.
func CanTransition(from, to GenerationStatus) bool {
	return statusRank[to] == statusRank[from]+1
}

// Languages
type Language string

const (
	LanguageSanskrit Language = "sanskrit"
	LanguageHindi    Language = "hindi"
	LanguageTamil    Language = "tamil"
	LanguageTelugu   Language = "telugu"
)

// Voice styles
type VoiceStyle string

const (
	StyleDevotional VoiceStyle = "devotional"
	StyleMeditative VoiceStyle = "meditative"
	StyleEnergetic  VoiceStyle = "energetic"
	StyleCalm       VoiceStyle = "calm"
)

// Subscription plans
type Plan string

const (
	PlanFree    Plan = "free"
	PlanCreator Plan = "creator"
	PlanPro     Plan = "pro"
)
