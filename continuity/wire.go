package continuity

// The *Wire types mirror the LLM's JSON schema exactly (spec §4.7's
// prompt contract); toPatch/toResult convert them into this package's
// domain types, the one place continuity decodes untrusted LLM JSON.

type patchWire struct {
	CharacterStates       map[string]characterPatchWire       `json:"character_states"`
	PlotThreads           map[string]plotThreadPatchWire       `json:"plot_threads"`
	Timeline              []timeMarkerWire                     `json:"timeline"`
	WorldStateChanges     []worldStateChangeWire                `json:"world_state_changes"`
	UnresolvedTensions    map[string]unresolvedTensionPatchWire `json:"unresolved_tensions"`
	CurrentChapterSummary string                                `json:"current_chapter_summary"`
}

type characterPatchWire struct {
	Location             string            `json:"location"`
	EmotionalState        string            `json:"emotional_state"`
	KnowsAbout            []string          `json:"knows_about"`
	Relationships         map[string]string `json:"relationships"`
	InjuriesOrConditions  []string          `json:"injuries_or_conditions"`
	HasItems              []string          `json:"has_items"`
}

type plotThreadPatchWire struct {
	ThreadName                string   `json:"thread_name"`
	Description               string   `json:"description"`
	Status                    string   `json:"status"`
	KeyEvents                 []string `json:"key_events"`
	UnresolvedQuestions       []string `json:"unresolved_questions"`
	ExpectedResolutionChapter *int     `json:"expected_resolution_chapter"`
}

type timeMarkerWire struct {
	ChapterNumber int    `json:"chapter_number"`
	TimeType      string `json:"time_type"`
	Description   string `json:"description"`
	TimeOfDay     string `json:"time_of_day"`
}

type worldStateChangeWire struct {
	ChapterNumber int      `json:"chapter_number"`
	ChangeType    string   `json:"change_type"`
	Description   string   `json:"description"`
	Affects       []string `json:"affects"`
	IsPermanent   bool     `json:"is_permanent"`
}

type unresolvedTensionPatchWire struct {
	Description        string   `json:"description"`
	TensionType         string   `json:"tension_type"`
	InvolvesCharacters  []string `json:"involves_characters"`
	Stakes              string   `json:"stakes"`
}

func (w patchWire) toPatch() Patch {
	p := Patch{
		Timeline:              make([]TimeMarker, 0, len(w.Timeline)),
		WorldStateChanges:     make([]WorldStateChange, 0, len(w.WorldStateChanges)),
		CurrentChapterSummary: w.CurrentChapterSummary,
	}

	if len(w.CharacterStates) > 0 {
		p.CharacterStates = make(map[string]CharacterPatch, len(w.CharacterStates))
		for name, c := range w.CharacterStates {
			p.CharacterStates[name] = CharacterPatch{
				Location:             c.Location,
				EmotionalState:       c.EmotionalState,
				KnowsAbout:           c.KnowsAbout,
				Relationships:        c.Relationships,
				InjuriesOrConditions: c.InjuriesOrConditions,
				HasItems:             c.HasItems,
			}
		}
	}

	if len(w.PlotThreads) > 0 {
		p.PlotThreads = make(map[string]PlotThreadPatch, len(w.PlotThreads))
		for id, t := range w.PlotThreads {
			p.PlotThreads[id] = PlotThreadPatch{
				ThreadName:                t.ThreadName,
				Description:               t.Description,
				Status:                    ThreadStatus(t.Status),
				KeyEvents:                 t.KeyEvents,
				UnresolvedQuestions:       t.UnresolvedQuestions,
				ExpectedResolutionChapter: t.ExpectedResolutionChapter,
			}
		}
	}

	for _, m := range w.Timeline {
		p.Timeline = append(p.Timeline, TimeMarker{
			ChapterNumber: m.ChapterNumber,
			TimeType:      m.TimeType,
			Description:   m.Description,
			TimeOfDay:     m.TimeOfDay,
		})
	}

	for _, c := range w.WorldStateChanges {
		p.WorldStateChanges = append(p.WorldStateChanges, WorldStateChange{
			ChapterNumber: c.ChapterNumber,
			ChangeType:    ChangeType(c.ChangeType),
			Description:   c.Description,
			Affects:       c.Affects,
			IsPermanent:   c.IsPermanent,
		})
	}

	if len(w.UnresolvedTensions) > 0 {
		p.UnresolvedTensions = make(map[string]UnresolvedTensionPatch, len(w.UnresolvedTensions))
		for id, t := range w.UnresolvedTensions {
			p.UnresolvedTensions[id] = UnresolvedTensionPatch{
				Description:        t.Description,
				TensionType:        TensionType(t.TensionType),
				InvolvesCharacters: t.InvolvesCharacters,
				Stakes:             t.Stakes,
			}
		}
	}

	return p
}

type validationWire struct {
	IsValid    bool               `json:"is_valid"`
	Violations []violationWire    `json:"violations"`
	Warnings   []string           `json:"warnings"`
	Confidence float64            `json:"confidence"`
}

type violationWire struct {
	ViolationType     string `json:"violation_type"`
	Severity          string `json:"severity"`
	Description       string `json:"description"`
	Expected          string `json:"expected"`
	Found             string `json:"found"`
	AffectedCharacter string `json:"affected_character"`
	Suggestion        string `json:"suggestion"`
}

func (w validationWire) toResult() ValidationResult {
	r := ValidationResult{
		IsValid:    w.IsValid,
		Warnings:   w.Warnings,
		Confidence: w.Confidence,
	}
	for _, v := range w.Violations {
		r.Violations = append(r.Violations, ContinuityViolation{
			ViolationType:     v.ViolationType,
			Severity:          Severity(v.Severity),
			Description:       v.Description,
			Expected:          v.Expected,
			Found:             v.Found,
			AffectedCharacter: v.AffectedCharacter,
			Suggestion:        v.Suggestion,
		})
	}
	return r
}
