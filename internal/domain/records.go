package domain

// ScheduleRecord is the stored state of one roster month.
type ScheduleRecord struct {
	Month            string
	Grid             *Grid
	StateVersion     int64
	LastEventSeq     int64
	CalendarFallback bool
	UpdatedAtUnix    int64
}

// GenerationEvent is one entry of a month's append-only event log.
type GenerationEvent struct {
	ID          int64  `json:"id"`
	Month       string `json:"month"`
	SeqNo       int64  `json:"seq_no"`
	EventType   string `json:"event_type"`
	PayloadJSON string `json:"payload_json"`
	CreatedAt   int64  `json:"created_at"`
}

// Event types written to the generation log.
const (
	EventGenerated = "generated"
	EventCellSet   = "cell_set"
	EventCleared   = "cleared"
)

// ScheduleSnapshot is the grid produced by one generation run.
type ScheduleSnapshot struct {
	ID           int64
	Month        string
	RunID        string
	SnapshotJSON string
	Checksum     string
	CreatedAt    int64
}

// AuditRecord logs operator actions against a roster.
type AuditRecord struct {
	ID           string
	Month        string
	Category     string
	Actor        string
	Action       string
	RequestJSON  string
	DecisionJSON string
	Severity     string
	CreatedAt    int64
}
