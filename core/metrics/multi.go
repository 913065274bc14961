package metrics

// MultiSink fans records out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the run to all sinks, returning the first error.
func (m *MultiSink) RecordRun(s RunSummary) error {
	for _, sink := range m.Sinks {
		if err := sink.RecordRun(s); err != nil {
			return err
		}
	}
	return nil
}

// RecordSlot forwards slot statistics to the sinks that support them.
func (m *MultiSink) RecordSlot(s SlotStat) error {
	for _, sink := range m.Sinks {
		if rec, ok := sink.(SlotRecorder); ok {
			if err := rec.RecordSlot(s); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordBound forwards bounds to the sinks that support them.
func (m *MultiSink) RecordBound(b BoundStat) error {
	for _, sink := range m.Sinks {
		if rec, ok := sink.(BoundRecorder); ok {
			if err := rec.RecordBound(b); err != nil {
				return err
			}
		}
	}
	return nil
}
