// Package continuity implements the Continuity Tracker (spec §4.7): it
// extracts narrative state from fiction chapters, merges it into a running
// ContinuityState per (user, manuscript), prunes that state to bounded
// size, and validates new content against it. Grounded line-for-line on
// original_source/llm-orchestrator/orchestrator/services/
// fiction_continuity_tracker.py — this package is a straight Go
// transliteration of its merge/prune/normalise logic, with the LLM calls
// themselves factored out as an Extractor/Validator seam (spec.md treats
// "per-agent LLM prompt content" as an external collaborator; the core
// only owns what happens to the LLM's JSON once it comes back).
package continuity

// ChangeType is the closed enum for WorldStateChange.ChangeType.
type ChangeType string

const (
	ChangeLocation             ChangeType = "location"
	ChangeWeather              ChangeType = "weather"
	ChangePolitical            ChangeType = "political"
	ChangeMagical              ChangeType = "magical"
	ChangeTechnological        ChangeType = "technological"
	ChangeSocial               ChangeType = "social"
	ChangeLocationStatus       ChangeType = "location_status"
	ChangeCharacterInventory   ChangeType = "character_inventory"
	ChangeCharacterPossession  ChangeType = "character_possession"
	ChangeRelationship         ChangeType = "relationship"
)

// ThreadStatus is the closed enum for PlotThread.Status.
type ThreadStatus string

const (
	ThreadActive     ThreadStatus = "active"
	ThreadResolved   ThreadStatus = "resolved"
	ThreadAbandoned  ThreadStatus = "abandoned"
	ThreadBackground ThreadStatus = "background"
)

// TensionType is the closed enum for UnresolvedTension.TensionType.
type TensionType string

const (
	TensionConflict         TensionType = "conflict"
	TensionMystery          TensionType = "mystery"
	TensionRelationship     TensionType = "relationship"
	TensionInternal         TensionType = "internal"
	TensionExternal         TensionType = "external"
	TensionExternalThreat   TensionType = "external_threat"
	TensionCharacterConflict TensionType = "character_conflict"
)

// Severity is the closed enum for ContinuityViolation.Severity.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// CharacterState tracks one character's accumulated facts as of the last
// chapter that mentioned them.
type CharacterState struct {
	CharacterName         string
	ChapterNumber         int
	Location              string
	EmotionalState        string
	KnowsAbout            []string
	Relationships         map[string]string
	InjuriesOrConditions  []string
	HasItems              []string
}

// PlotThread tracks one ongoing storyline.
type PlotThread struct {
	ThreadID                    string
	ThreadName                  string
	Description                 string
	IntroducedChapter           int
	LastMentionedChapter        int
	Status                      ThreadStatus
	KeyEvents                   []string
	UnresolvedQuestions         []string
	ExpectedResolutionChapter   *int
}

// TimeMarker is one timeline entry.
type TimeMarker struct {
	ChapterNumber int
	TimeType      string
	Description   string
	TimeOfDay     string
}

// WorldStateChange is one lasting change to the story world.
type WorldStateChange struct {
	ChapterNumber int
	ChangeType    ChangeType
	Description   string
	Affects       []string
	IsPermanent   bool
}

// UnresolvedTension tracks one active conflict or mystery.
type UnresolvedTension struct {
	TensionID            string
	Description           string
	IntroducedChapter     int
	LastEscalatedChapter  int
	TensionType           TensionType
	InvolvesCharacters    []string
	Stakes                string
}

// ContinuityState is the tracker's full per-(user, manuscript) record
// (spec §3's ContinuityState).
type ContinuityState struct {
	ManuscriptFilename   string
	UserID               string
	LastAnalyzedChapter  int
	CharacterStates      map[string]*CharacterState
	PlotThreads          map[string]*PlotThread
	Timeline             []TimeMarker
	WorldStateChanges    []WorldStateChange
	UnresolvedTensions   map[string]*UnresolvedTension
	CurrentChapterSummary string
	LastUpdated          string
}

func newEmptyState(userID, filename string, chapter int) *ContinuityState {
	return &ContinuityState{
		ManuscriptFilename:  filename,
		UserID:              userID,
		LastAnalyzedChapter: chapter,
		CharacterStates:     map[string]*CharacterState{},
		PlotThreads:         map[string]*PlotThread{},
		UnresolvedTensions:  map[string]*UnresolvedTension{},
	}
}

// ContinuityViolation is one flagged inconsistency.
type ContinuityViolation struct {
	ViolationType     string
	Severity          Severity
	Description       string
	Expected          string
	Found             string
	AffectedCharacter string
	Suggestion        string
}

// ValidationResult is the Validate operation's read-only output (spec
// §4.7: "Validation is read-only").
type ValidationResult struct {
	IsValid    bool
	Violations []ContinuityViolation
	Warnings   []string
	Confidence float64
}
