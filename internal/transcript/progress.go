package transcript

import (
	"math"

	"github.com/matheus3301/wpphistory/internal/bus"
)

// Bus event kinds published while exporting.
const (
	EventProgress         = "transcript.progress"
	EventConversationDone = "transcript.conversation_done"
)

// Progress is the payload of EventProgress.
type Progress struct {
	Conversation string
	Row          int
	Total        int
	Percent      int
}

// ConversationDone is the payload of EventConversationDone.
type ConversationDone struct {
	Conversation string
	File         string
	Rows         int
}

// progressTracker publishes a Progress event whenever the rounded completion
// percentage of a conversation changes.
type progressTracker struct {
	bus          *bus.Bus
	conversation string
	total        int
	last         int
}

func newProgressTracker(b *bus.Bus, conversation string, total int) *progressTracker {
	return &progressTracker{bus: b, conversation: conversation, total: total}
}

// Step records that row rows out of total are done.
func (p *progressTracker) Step(row int) {
	if p.total <= 0 {
		return
	}
	// Half-way values round to even.
	percent := int(math.RoundToEven(float64(row) / float64(p.total) * 100))
	if percent == p.last {
		return
	}
	p.last = percent
	p.bus.Emit(EventProgress, Progress{
		Conversation: p.conversation,
		Row:          row,
		Total:        p.total,
		Percent:      percent,
	})
}
