// Package workflow implements the Workflow Engine (spec §4.5): it builds
// workflows from templates or dynamic plans, tracks per-step status, picks
// next-ready steps honouring dependencies, creates typed handoffs between
// agents, and streams progress events.
package workflow

import (
	"time"

	"github.com/quillforge/core/principal"
)

// StepStatus is the lifecycle state of one Step.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepRunning   StepStatus = "running"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
)

// WorkflowStatus is the lifecycle state of a Workflow.
type WorkflowStatus string

const (
	WorkflowPending   WorkflowStatus = "pending"
	WorkflowRunning   WorkflowStatus = "running"
	WorkflowCompleted WorkflowStatus = "completed"
	WorkflowFailed    WorkflowStatus = "failed"
	WorkflowCancelled WorkflowStatus = "cancelled"
)

// Step is one node of a workflow's step graph.
type Step struct {
	StepID             string
	AgentType          string
	TaskDescription    string
	InputRequirements  []string
	OutputSpecifications []string
	DependsOn          map[string]bool
	Status             StepStatus
	RetryCount         int
	MaxRetries         int
	FailureReason      string
	Result             *StepResult
}

// StepResult mirrors registry.AgentResult, copied in rather than imported
// by reference so a completed step's result is immutable once recorded.
type StepResult struct {
	AgentType     string
	ExecutionID   string
	Status        string
	Response      string
	DataOutputs   map[string]any
	ToolsUsed     []string
	ExecutionTime float64
	Timestamp     int64
	Confidence    *float64
	ErrorMessage  string
}

// DataHandoff is created when a step completes and consumed when each
// dependent step starts; one handoff per (source step, dependent step).
type DataHandoff struct {
	HandoffID             string
	Type                  string
	FromAgent             string
	ToAgent               string
	DataPackage           map[string]any
	ProcessingInstructions string
	CreatedAt             time.Time
	SizeBytes             int
}

// UserContext is the snapshot of principal, query, and persona captured at
// workflow start, per spec §3's Workflow.user_context.
type UserContext struct {
	Principal principal.Principal
	Query     string
	Persona   string
}

// Workflow is the root aggregate the engine schedules over.
type Workflow struct {
	WorkflowID       string
	ConversationID   string
	TemplateName     string // "dynamic" if not built from a named template
	Status           WorkflowStatus
	CreatedAt        time.Time
	CompletedAt      *time.Time
	UserContext      UserContext
	Steps            []*Step
	CompletedStepIDs map[string]bool
	FailedStepIDs    map[string]bool
	Handoffs         []DataHandoff
	FailureReason    string
}

func newWorkflow(workflowID, conversationID, templateName string, uc UserContext, steps []*Step) *Workflow {
	return &Workflow{
		WorkflowID:       workflowID,
		ConversationID:   conversationID,
		TemplateName:     templateName,
		Status:           WorkflowPending,
		CreatedAt:        time.Now(),
		UserContext:      uc,
		Steps:            steps,
		CompletedStepIDs: make(map[string]bool),
		FailedStepIDs:    make(map[string]bool),
	}
}

func (w *Workflow) stepByID(id string) *Step {
	for _, s := range w.Steps {
		if s.StepID == id {
			return s
		}
	}
	return nil
}
