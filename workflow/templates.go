package workflow

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/quillforge/core/corerr"
	"github.com/quillforge/core/registry"
)

// StepSpec is the data-only description of a step, used both by named
// templates and by a caller-submitted dynamic plan (spec §4.5: "Templates
// are data").
type StepSpec struct {
	StepID               string
	AgentType            string
	TaskDescription      string
	InputRequirements    []string
	OutputSpecifications []string
	DependsOn            []string
	MaxRetries           int // 0 means "use the default of 2"
}

// Template is a named directed acyclic graph of steps, registered at
// startup; new ones can be added without touching the engine.
type Template struct {
	Name  string
	Steps []StepSpec
}

// Templates is the in-memory catalogue of registered templates, guarded by
// the caller since it is only ever written at startup.
type Templates struct {
	byName map[string]Template
}

// NewTemplates returns a catalogue pre-seeded with the three shipped
// templates from spec §4.5.
func NewTemplates() *Templates {
	t := &Templates{byName: make(map[string]Template)}
	for _, tpl := range shippedTemplates() {
		t.Register(tpl)
	}
	return t
}

// Register adds or replaces a template by name.
func (t *Templates) Register(tpl Template) {
	t.byName[tpl.Name] = tpl
}

// Get looks up a template by name.
func (t *Templates) Get(name string) (Template, bool) {
	tpl, ok := t.byName[name]
	return tpl, ok
}

func shippedTemplates() []Template {
	return []Template{
		{
			Name: "research_analysis_synthesis",
			Steps: []StepSpec{
				{StepID: "research", AgentType: "researcher", TaskDescription: "gather source material", OutputSpecifications: []string{"findings"}},
				{StepID: "analysis", AgentType: "analyst", TaskDescription: "analyze findings", InputRequirements: []string{"findings"}, DependsOn: []string{"research"}, OutputSpecifications: []string{"analysis"}},
				{StepID: "synthesis", AgentType: "writer", TaskDescription: "synthesize a final answer", InputRequirements: []string{"analysis"}, DependsOn: []string{"analysis"}, OutputSpecifications: []string{"synthesis"}},
			},
		},
		{
			Name: "research_coding_implementation",
			Steps: []StepSpec{
				{StepID: "research", AgentType: "researcher", TaskDescription: "gather relevant prior art", OutputSpecifications: []string{"findings"}},
				{StepID: "coding", AgentType: "coder", TaskDescription: "implement from findings", InputRequirements: []string{"findings"}, DependsOn: []string{"research"}, OutputSpecifications: []string{"implementation"}},
				{StepID: "validation", AgentType: "validator", TaskDescription: "validate the implementation", InputRequirements: []string{"implementation"}, DependsOn: []string{"coding"}, OutputSpecifications: []string{"validation"}},
			},
		},
		{
			Name: "parallel_research_synthesis",
			Steps: []StepSpec{
				{StepID: "research_a", AgentType: "researcher", TaskDescription: "gather source material (angle A)", OutputSpecifications: []string{"findings_a"}},
				{StepID: "research_b", AgentType: "researcher", TaskDescription: "gather source material (angle B)", OutputSpecifications: []string{"findings_b"}},
				{StepID: "synthesis", AgentType: "writer", TaskDescription: "synthesize both research threads", InputRequirements: []string{"findings_a", "findings_b"}, DependsOn: []string{"research_a", "research_b"}, OutputSpecifications: []string{"synthesis"}},
			},
		},
	}
}

// NewFromTemplate builds a Workflow from a registered template.
func NewFromTemplate(templates *Templates, name string, conversationID string, uc UserContext) (*Workflow, error) {
	tpl, ok := templates.Get(name)
	if !ok {
		return nil, corerr.New(corerr.BadInput, fmt.Sprintf("unknown workflow template %q", name), nil)
	}
	steps := compileSteps(tpl.Steps)
	return newWorkflow(newWorkflowID(), conversationID, name, uc, steps), nil
}

// NewDynamic builds a Workflow from a caller-submitted plan, validating
// acyclicity, unknown agent_types (against reg), and dangling depends_on
// before accepting it. An invalid plan fails with corerr.BadInput, the
// closed-taxonomy equivalent of spec §4.5's BadPlan.
func NewDynamic(specs []StepSpec, reg *registry.Registry, conversationID string, uc UserContext) (*Workflow, error) {
	if err := validatePlan(specs, reg); err != nil {
		return nil, err
	}
	steps := compileSteps(specs)
	return newWorkflow(newWorkflowID(), conversationID, "dynamic", uc, steps), nil
}

func validatePlan(specs []StepSpec, reg *registry.Registry) error {
	ids := make(map[string]bool, len(specs))
	for _, s := range specs {
		if ids[s.StepID] {
			return corerr.New(corerr.BadInput, fmt.Sprintf("duplicate step_id %q", s.StepID), nil)
		}
		ids[s.StepID] = true
	}

	for _, s := range specs {
		if reg != nil && !reg.Known(s.AgentType) {
			return corerr.New(corerr.BadInput, fmt.Sprintf("unknown agent_type %q on step %q", s.AgentType, s.StepID), nil)
		}
		for _, dep := range s.DependsOn {
			if !ids[dep] {
				return corerr.New(corerr.BadInput, fmt.Sprintf("step %q depends on unknown step %q", s.StepID, dep), nil)
			}
		}
	}

	if cycle := findCycle(specs); cycle != "" {
		return corerr.New(corerr.BadInput, fmt.Sprintf("cyclic dependency involving step %q", cycle), nil)
	}
	return nil
}

// findCycle runs Kahn's algorithm: repeatedly remove nodes with in-degree
// zero; if any node remains when no more can be removed, it participates
// in a cycle.
func findCycle(specs []StepSpec) string {
	inDegree := make(map[string]int, len(specs))
	dependents := make(map[string][]string)
	for _, s := range specs {
		if _, ok := inDegree[s.StepID]; !ok {
			inDegree[s.StepID] = 0
		}
		for _, dep := range s.DependsOn {
			inDegree[s.StepID]++
			dependents[dep] = append(dependents[dep], s.StepID)
		}
	}

	var queue []string
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		next := dependents[id]
		sort.Strings(next)
		for _, d := range next {
			inDegree[d]--
			if inDegree[d] == 0 {
				queue = append(queue, d)
			}
		}
	}

	if visited == len(inDegree) {
		return ""
	}
	for id, deg := range inDegree {
		if deg > 0 {
			return id
		}
	}
	return ""
}

func compileSteps(specs []StepSpec) []*Step {
	steps := make([]*Step, 0, len(specs))
	for _, s := range specs {
		maxRetries := s.MaxRetries
		if maxRetries == 0 {
			maxRetries = 2
		}
		dependsOn := make(map[string]bool, len(s.DependsOn))
		for _, d := range s.DependsOn {
			dependsOn[d] = true
		}
		steps = append(steps, &Step{
			StepID:               s.StepID,
			AgentType:            s.AgentType,
			TaskDescription:      s.TaskDescription,
			InputRequirements:    s.InputRequirements,
			OutputSpecifications: s.OutputSpecifications,
			DependsOn:            dependsOn,
			Status:               StepPending,
			MaxRetries:           maxRetries,
		})
	}
	return steps
}

func newWorkflowID() string {
	return uuid.NewString()
}
