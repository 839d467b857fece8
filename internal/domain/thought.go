package domain

type ThoughtType string

const (
	ThoughtThinking ThoughtType = "THINKING"
	ThoughtAction   ThoughtType = "ACTION"
	ThoughtMemory   ThoughtType = "MEMORY"
	ThoughtTask     ThoughtType = "TASK"
	ThoughtError    ThoughtType = "ERROR"
	ThoughtSuccess  ThoughtType = "SUCCESS"
)

type Thought struct {
	Type    ThoughtType
	Content string
	At      string
}
