package tasks

import (
	"fmt"

	"github.com/desertthunder/transx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Identity Phase = iota
	Upload
	FetchStatus
	Translate
	ExportBuild
	Download
	Poll
)

func (p Phase) String() string {
	switch p {
	case Identity:
		return "ensure_identity"
	case Upload:
		return "upload"
	case FetchStatus:
		return "fetch_status"
	case Translate:
		return "translate"
	case ExportBuild:
		return "build_export"
	case Download:
		return "download"
	case Poll:
		return "watch"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func uploadUpdate(source string) ProgressUpdate {
	return ProgressUpdate{Phase: Upload, Step: 1, Total: 1, Message: fmt.Sprintf("Uploading %s...", source)}
}

func uploadedUpdate(chapters []models.Chapter) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Upload,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Received %d chapters", len(chapters)),
		Data:    chapters,
	}
}

func fetchStatusUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: FetchStatus, Step: 1, Total: 1, Message: "Fetching progress..."}
}

func translateUpdate(start, end int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Translate,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Translating chapters %d-%d...", start, end),
	}
}

func buildExportUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportBuild,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Building EPUB: %s...", step, total, title),
	}
}

func downloadUpdate(step, total int, dest string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Download,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Saving %s...", step, total, dest),
	}
}

func watchUpdate(tick int, label string) ProgressUpdate {
	return ProgressUpdate{Phase: Poll, Step: tick, Message: label}
}
