package entity

// Step 向导步骤
type Step string

const (
	StepBasics                Step = "basics"
	StepToolSelection         Step = "tool_selection"
	StepClarification         Step = "clarification"
	StepDocumentTypeSelection Step = "document_type_selection"
	StepGeneration            Step = "generation"
	StepTerminal              Step = "terminal"
)

var stepOrder = []Step{
	StepBasics,
	StepToolSelection,
	StepClarification,
	StepDocumentTypeSelection,
	StepGeneration,
	StepTerminal,
}

// Steps 按顺序返回所有步骤
func Steps() []Step {
	out := make([]Step, len(stepOrder))
	copy(out, stepOrder)
	return out
}

// Index 步骤序号，未知步骤返回 -1
func (s Step) Index() int {
	for i, st := range stepOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Valid 是否为合法步骤
func (s Step) Valid() bool {
	return s.Index() >= 0
}

// Next 下一步骤
func (s Step) Next() (Step, bool) {
	i := s.Index()
	if i < 0 || i+1 >= len(stepOrder) {
		return "", false
	}
	return stepOrder[i+1], true
}

// Prev 上一步骤
func (s Step) Prev() (Step, bool) {
	i := s.Index()
	if i <= 0 {
		return "", false
	}
	return stepOrder[i-1], true
}
