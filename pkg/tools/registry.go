package tools

import (
	"fmt"
	"strings"
	"sync"

	"solver/pkg/ledger"
	"solver/pkg/puzzle"
)

// SolverContext carries the session state tools operate on. Each session
// builds its own provider over its own grid and ledger; tools never
// share state between sessions.
type SolverContext struct {
	Grid   *puzzle.Grid
	Ledger *ledger.Ledger
}

// ToolFactory creates a tool instance bound to a solver context.
type ToolFactory func(ctx SolverContext) (Tool, error)

// ToolMeta contains metadata about a tool for documentation and discovery.
type ToolMeta struct {
	Name        string
	Description string
	InputSchema InputSchema
}

// toolDescriptor contains the factory and metadata for a tool.
type toolDescriptor struct {
	meta    ToolMeta
	factory ToolFactory
}

// immutableRegistry is the global, read-only tool registry.
type immutableRegistry struct {
	mu     sync.RWMutex
	sealed bool
	tools  map[string]toolDescriptor
}

// Global registry instance - populated in init().
//
//nolint:gochecknoglobals // Factory pattern requires global registry
var globalRegistry = &immutableRegistry{
	tools: make(map[string]toolDescriptor),
}

// Register adds a tool factory to the global registry.
// Panics if called after the registry is sealed.
func Register(name string, factory ToolFactory, meta *ToolMeta) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	if globalRegistry.sealed {
		panic(fmt.Sprintf("tool registry sealed - cannot register tool '%s'", name))
	}
	globalRegistry.tools[name] = toolDescriptor{
		meta:    *meta,
		factory: factory,
	}
}

// Seal prevents further tool registrations.
// Called automatically when the first ToolProvider is created.
func Seal() {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.sealed = true
}

// ListTools returns metadata for all registered tools.
func ListTools() []ToolMeta {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	result := make([]ToolMeta, 0, len(globalRegistry.tools))
	for _, desc := range globalRegistry.tools {
		result = append(result, desc.meta)
	}
	return result
}

// ToolProvider creates and manages tool instances for one session.
type ToolProvider struct {
	ctx      SolverContext
	tools    map[string]Tool
	allowSet map[string]struct{}
	mu       sync.Mutex
}

// NewProvider creates a ToolProvider for the given session context and
// allowed tools. Automatically seals the global registry on first use.
func NewProvider(ctx SolverContext, allowedTools []string) *ToolProvider {
	Seal()

	allowSet := make(map[string]struct{}, len(allowedTools))
	for _, name := range allowedTools {
		allowSet[name] = struct{}{}
	}
	return &ToolProvider{
		ctx:      ctx,
		tools:    make(map[string]Tool),
		allowSet: allowSet,
	}
}

// Get retrieves a tool instance, creating it lazily if needed.
func (p *ToolProvider) Get(name string) (Tool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.allowSet[name]; !ok {
		return nil, fmt.Errorf("tool '%s' not allowed in this context", name)
	}
	if tool, ok := p.tools[name]; ok {
		return tool, nil
	}

	globalRegistry.mu.RLock()
	desc, exists := globalRegistry.tools[name]
	globalRegistry.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("tool '%s' not registered", name)
	}

	tool, err := desc.factory(p.ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool '%s': %w", name, err)
	}
	p.tools[name] = tool
	return tool, nil
}

// List returns metadata for all allowed tools.
func (p *ToolProvider) List() []ToolMeta {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	result := make([]ToolMeta, 0, len(p.allowSet))
	for name := range p.allowSet {
		if desc, ok := globalRegistry.tools[name]; ok {
			result = append(result, desc.meta)
		}
	}
	return result
}

// Definitions returns the tool schemas advertised to the oracle.
func (p *ToolProvider) Definitions() []ToolDefinition {
	metas := p.List()
	defs := make([]ToolDefinition, len(metas))
	for i := range metas {
		defs[i] = ToolDefinition{
			Name:        metas[i].Name,
			Description: metas[i].Description,
			InputSchema: metas[i].InputSchema,
		}
	}
	return defs
}

// GenerateToolDocumentation creates markdown documentation for this
// provider's allowed tools.
func (p *ToolProvider) GenerateToolDocumentation() string {
	metas := p.List()
	if len(metas) == 0 {
		return "No tools available"
	}

	var doc strings.Builder
	doc.WriteString("## Available Tools\n\n")
	for i := range metas {
		doc.WriteString(fmt.Sprintf("- **%s** - %s\n", metas[i].Name, metas[i].Description))
	}
	return doc.String()
}

// TOOL FACTORY FUNCTIONS

func createSetAnswerTool(ctx SolverContext) (Tool, error) {
	if ctx.Grid == nil || ctx.Ledger == nil {
		return nil, fmt.Errorf("set_answer tool requires a grid and ledger")
	}
	return NewSetAnswerTool(ctx.Grid, ctx.Ledger), nil
}

func createValidateClueTool(ctx SolverContext) (Tool, error) {
	if ctx.Grid == nil {
		return nil, fmt.Errorf("validate_clue tool requires a grid")
	}
	return NewValidateClueTool(ctx.Grid), nil
}

func createValidateAllTool(ctx SolverContext) (Tool, error) {
	if ctx.Grid == nil {
		return nil, fmt.Errorf("validate_all tool requires a grid")
	}
	return NewValidateAllTool(ctx.Grid), nil
}

func createCheckIntersectionTool(ctx SolverContext) (Tool, error) {
	if ctx.Grid == nil {
		return nil, fmt.Errorf("check_intersection tool requires a grid")
	}
	return NewCheckIntersectionTool(ctx.Grid), nil
}

func createGetConstraintsTool(ctx SolverContext) (Tool, error) {
	if ctx.Grid == nil {
		return nil, fmt.Errorf("get_constraints tool requires a grid")
	}
	return NewGetConstraintsTool(ctx.Grid), nil
}

func createUndoLastTool(ctx SolverContext) (Tool, error) {
	if ctx.Grid == nil || ctx.Ledger == nil {
		return nil, fmt.Errorf("undo_last tool requires a grid and ledger")
	}
	return NewUndoLastTool(ctx.Grid, ctx.Ledger), nil
}

func createGetCurrentGridTool(ctx SolverContext) (Tool, error) {
	if ctx.Grid == nil {
		return nil, fmt.Errorf("get_current_grid tool requires a grid")
	}
	return NewGetCurrentGridTool(ctx.Grid), nil
}

// init registers all solving tools in the global registry.
//
//nolint:gochecknoinits // Factory pattern requires init() for tool registration
func init() {
	Register(ToolSetAnswer, createSetAnswerTool, &ToolMeta{
		Name:        ToolSetAnswer,
		Description: "Set an answer for a clue in the crossword grid. Use this to fill in your proposed answer.",
		InputSchema: NewSetAnswerTool(nil, nil).Definition().InputSchema,
	})

	Register(ToolValidateClue, createValidateClueTool, &ToolMeta{
		Name:        ToolValidateClue,
		Description: "Check if a clue's current answer is correct. ALWAYS use this after set_answer to verify correctness.",
		InputSchema: NewValidateClueTool(nil).Definition().InputSchema,
	})

	Register(ToolValidateAll, createValidateAllTool, &ToolMeta{
		Name:        ToolValidateAll,
		Description: "Check correctness of every filled clue and report overall progress.",
		InputSchema: NewValidateAllTool(nil).Definition().InputSchema,
	})

	Register(ToolCheckIntersection, createCheckIntersectionTool, &ToolMeta{
		Name:        ToolCheckIntersection,
		Description: "Check if a proposed answer is compatible with already-filled intersecting clues. Use this BEFORE set_answer to avoid conflicts.",
		InputSchema: NewCheckIntersectionTool(nil).Definition().InputSchema,
	})

	Register(ToolGetConstraints, createGetConstraintsTool, &ToolMeta{
		Name:        ToolGetConstraints,
		Description: "Get letter constraints for a clue based on already-filled intersecting answers.",
		InputSchema: NewGetConstraintsTool(nil).Definition().InputSchema,
	})

	Register(ToolUndoLast, createUndoLastTool, &ToolMeta{
		Name:        ToolUndoLast,
		Description: "Undo the most recently committed answer and restore the previous grid state.",
		InputSchema: NewUndoLastTool(nil, nil).Definition().InputSchema,
	})

	Register(ToolGetCurrentGrid, createGetCurrentGridTool, &ToolMeta{
		Name:        ToolGetCurrentGrid,
		Description: "See the current state of the crossword grid.",
		InputSchema: NewGetCurrentGridTool(nil).Definition().InputSchema,
	})
}
