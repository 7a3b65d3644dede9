package continuity

import "strings"

// Patch is the raw, not-yet-normalised data an Extractor returns for one
// chapter — the Go shape of fiction_continuity_tracker.py's `extracted`
// dict before `_validate_and_fix_continuity_data`.
type Patch struct {
	CharacterStates      map[string]CharacterPatch
	PlotThreads          map[string]PlotThreadPatch
	Timeline             []TimeMarker
	WorldStateChanges    []WorldStateChange
	UnresolvedTensions   map[string]UnresolvedTensionPatch
	CurrentChapterSummary string
}

// CharacterPatch is one character's newly-extracted facts for a chapter.
type CharacterPatch struct {
	Location             string
	EmotionalState       string
	KnowsAbout           []string
	Relationships        map[string]string
	InjuriesOrConditions []string
	HasItems             []string
}

// PlotThreadPatch is one thread's newly-extracted facts for a chapter.
type PlotThreadPatch struct {
	ThreadName                string
	Description               string
	Status                    ThreadStatus
	KeyEvents                 []string
	UnresolvedQuestions       []string
	ExpectedResolutionChapter *int
}

// UnresolvedTensionPatch is one tension's newly-extracted facts.
type UnresolvedTensionPatch struct {
	Description        string
	TensionType        TensionType
	InvolvesCharacters []string
	Stakes             string
}

var validChangeTypes = map[ChangeType]bool{
	ChangeLocation: true, ChangeWeather: true, ChangePolitical: true,
	ChangeMagical: true, ChangeTechnological: true, ChangeSocial: true,
	ChangeLocationStatus: true, ChangeCharacterInventory: true,
	ChangeCharacterPossession: true, ChangeRelationship: true,
}

var validThreadStatuses = map[ThreadStatus]bool{
	ThreadActive: true, ThreadResolved: true, ThreadAbandoned: true, ThreadBackground: true,
}

var validTensionTypes = map[TensionType]bool{
	TensionConflict: true, TensionMystery: true, TensionRelationship: true,
	TensionInternal: true, TensionExternal: true, TensionExternalThreat: true,
	TensionCharacterConflict: true,
}

// normalizeState repairs out-of-enum values to their closest valid
// member, mirroring _validate_and_fix_continuity_data's fallback
// mapping, and fills in required fields the LLM may have omitted.
func normalizeState(p Patch, chapterNumber int) Patch {
	for i, change := range p.WorldStateChanges {
		if !validChangeTypes[change.ChangeType] {
			change.ChangeType = remapChangeType(change.ChangeType)
		}
		if change.ChapterNumber == 0 {
			change.ChapterNumber = chapterNumber
		}
		p.WorldStateChanges[i] = change
	}

	for id, thread := range p.PlotThreads {
		if thread.Status == "" {
			thread.Status = ThreadActive
		} else if !validThreadStatuses[thread.Status] {
			thread.Status = ThreadActive
		}
		p.PlotThreads[id] = thread
	}

	for id, tension := range p.UnresolvedTensions {
		if !validTensionTypes[tension.TensionType] {
			tension.TensionType = remapTensionType(tension.TensionType)
		}
		p.UnresolvedTensions[id] = tension
	}

	return p
}

func remapChangeType(raw ChangeType) ChangeType {
	switch raw {
	case "relationship", "character_relationship":
		return ChangeRelationship
	case "inventory", "items":
		return ChangeCharacterInventory
	case "possession", "ownership":
		return ChangeCharacterPossession
	default:
		return ChangeSocial
	}
}

func remapTensionType(raw TensionType) TensionType {
	s := strings.ToLower(string(raw))
	switch {
	case strings.Contains(s, "conflict"):
		return TensionConflict
	case strings.Contains(s, "threat"):
		return TensionExternalThreat
	default:
		return TensionMystery
	}
}
