package imageservice

// Stage identifies a point in an upload's lifecycle.
type Stage string

const (
	StageStarted   Stage = "started"
	StageUploaded  Stage = "uploaded"
	StageSkipped   Stage = "skipped"
	StageFailed    Stage = "failed"
	StageBatchDone Stage = "batch_done"
)

// Event is one progress notification emitted by the pipeline.
type Event struct {
	Stage    Stage  `json:"stage"`
	Note     string `json:"note,omitempty"`
	FileName string `json:"fileName,omitempty"`
	URL      string `json:"url,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Notifier receives pipeline events. Publish must not block.
type Notifier interface {
	Publish(event Event)
}

type nopNotifier struct{}

func (nopNotifier) Publish(Event) {}
