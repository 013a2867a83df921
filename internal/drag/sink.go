package drag

// InsertPreview describes where the dragged task would land if dropped now.
// Index is the insertion index within the target column's task list with
// the dragged task excluded.
type InsertPreview struct {
	ColumnID    string
	Index       int
	CrossColumn bool
}

// StateSink receives pure notifications about drag session state. Rendering
// is entirely the host's concern; the engine only reports what changed.
type StateSink interface {
	DragStarted(d Dragged)
	DragEnded()
	TabHoverChanged(hovering bool)
	PreviewChanged(preview *InsertPreview)
	SavingChanged(saving bool)
}

// NopSink discards all notifications.
type NopSink struct{}

func (NopSink) DragStarted(Dragged)           {}
func (NopSink) DragEnded()                    {}
func (NopSink) TabHoverChanged(bool)          {}
func (NopSink) PreviewChanged(*InsertPreview) {}
func (NopSink) SavingChanged(bool)            {}

// Logger is the minimal leveled logging surface the engine needs. It is
// satisfied by charmbracelet/log loggers.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// NopLogger discards all log events.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}
