package ports

type Metrics interface {
	CycleCompleted()
	RequestProcessed(status string)
	QueueTaskExecuted()
	SequenceStep(outcome string)
}

type NopMetrics struct{}

func (NopMetrics) CycleCompleted()         {}
func (NopMetrics) RequestProcessed(string) {}
func (NopMetrics) QueueTaskExecuted()      {}
func (NopMetrics) SequenceStep(string)     {}
