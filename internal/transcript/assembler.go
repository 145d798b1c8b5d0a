// Package transcript renders the conversations of a WhatsApp message store
// as HTML transcripts, one document per conversation.
package transcript

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/matheus3301/wpphistory/internal/bus"
	"github.com/matheus3301/wpphistory/internal/chatstore"
	"go.uber.org/zap"
)

// Store is the read side of the message store the assembler needs.
type Store interface {
	MemberLookup
	MediaLookup
	ListConversations() ([]chatstore.Conversation, error)
	CountMessages(contactJID string) (int, error)
	EachMessage(contactJID string, fn func(chatstore.Message) error) error
}

// Options configures an Assembler.
type Options struct {
	OutputDir   string
	OwnerName   string
	AppDomain   string
	MediaLayout MediaLayout
	EscapeHTML  bool
	Location    *time.Location
}

// Summary describes a finished run.
type Summary struct {
	Conversations int
	Messages      int
	MissingMedia  int
	Files         []string
}

// RowError reports a message row that could not be rendered.
type RowError struct {
	Conversation string
	Row          int
	Err          error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("conversation %q row %d: %v", e.Conversation, e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Assembler writes one transcript per conversation of a store.
type Assembler struct {
	store      Store
	opts       Options
	normalizer Normalizer
	media      *MediaRenderer
	classifier *Classifier
	speakers   *SpeakerResolver
	bus        *bus.Bus
	logger     *zap.Logger
}

// NewAssembler wires the pipeline components. The group member directory it
// creates is shared by every conversation of the run.
func NewAssembler(store Store, resolver Resolver, b *bus.Bus, opts Options, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MediaLayout == "" {
		opts.MediaLayout = LayoutConversation
	}
	members := NewMemberDirectory(store)
	media := NewMediaRenderer(store, resolver, opts.AppDomain, opts.OutputDir, opts.MediaLayout, opts.EscapeHTML, logger)
	return &Assembler{
		store:      store,
		opts:       opts,
		normalizer: NewNormalizer(opts.Location),
		media:      media,
		classifier: NewClassifier(members, media, opts.EscapeHTML),
		speakers:   NewSpeakerResolver(opts.OwnerName, members),
		bus:        b,
		logger:     logger,
	}
}

// InitializeOutputArea creates the output directory and its media
// subdirectory. Call it once before running an Assembler.
func InitializeOutputArea(dir string) error {
	if err := os.MkdirAll(filepath.Join(dir, MediaDirName), 0700); err != nil {
		return fmt.Errorf("create output area: %w", err)
	}
	return nil
}

// Run exports every conversation in store order. The first error aborts the
// run; transcripts written before it are left in place.
func (a *Assembler) Run(ctx context.Context) (*Summary, error) {
	convs, err := a.store.ListConversations()
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	a.logger.Info("exporting conversations", zap.Int("count", len(convs)))

	summary := &Summary{}
	names := newFileNamer()
	for _, conv := range convs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		stem := names.Name(conv.Name)
		rows, err := a.Export(conv, stem)
		if err != nil {
			return summary, err
		}
		summary.Conversations++
		summary.Messages += rows
		summary.Files = append(summary.Files, stem+".html")
	}
	summary.MissingMedia = a.media.Missing()
	return summary, nil
}

// Export writes the transcript of conv to <stem>.html in the output directory
// and returns the number of rows written.
func (a *Assembler) Export(conv chatstore.Conversation, stem string) (int, error) {
	total, err := a.store.CountMessages(conv.ContactJID)
	if err != nil {
		return 0, fmt.Errorf("count messages of %q: %w", conv.Name, err)
	}

	file := stem + ".html"
	f, err := os.OpenFile(filepath.Join(a.opts.OutputDir, file), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return 0, fmt.Errorf("create transcript: %w", err)
	}
	defer func() { _ = f.Close() }()

	bw := bufio.NewWriter(f)
	doc := newDocumentWriter(bw, a.opts.EscapeHTML)
	colors := NewColorContext()
	progress := newProgressTracker(a.bus, conv.Name, total)

	rows := 0
	err = a.store.EachMessage(conv.ContactJID, func(m chatstore.Message) error {
		row, err := a.renderRow(conv, colors, m, stem)
		if err != nil {
			return &RowError{Conversation: conv.Name, Row: rows, Err: err}
		}
		if err := doc.WriteRow(row); err != nil {
			return fmt.Errorf("write transcript: %w", err)
		}
		rows++
		progress.Step(rows)
		return nil
	})
	if err != nil {
		return rows, err
	}
	if err := doc.Close(); err != nil {
		return rows, fmt.Errorf("write transcript: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return rows, fmt.Errorf("write transcript: %w", err)
	}
	if err := f.Close(); err != nil {
		return rows, fmt.Errorf("close transcript: %w", err)
	}

	a.logger.Debug("conversation exported",
		zap.String("conversation", conv.Name),
		zap.String("file", file),
		zap.Int("rows", rows))
	a.bus.Emit(EventConversationDone, ConversationDone{Conversation: conv.Name, File: file, Rows: rows})
	return rows, nil
}

func (a *Assembler) renderRow(conv chatstore.Conversation, colors *ColorContext, m chatstore.Message, scope string) (Row, error) {
	body, err := a.classifier.Body(m, scope)
	if err != nil {
		return Row{}, err
	}
	from, err := a.speakers.Resolve(conv, colors, m)
	if err != nil {
		return Row{}, err
	}
	return Row{
		Time: a.normalizer.Format(m.Date),
		From: from,
		Body: body,
	}, nil
}
