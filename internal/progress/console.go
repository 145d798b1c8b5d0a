// Package progress draws per-conversation progress bars from bus events.
package progress

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/matheus3301/wpphistory/internal/bus"
	"github.com/matheus3301/wpphistory/internal/transcript"
)

const barWidth = 10

// Console renders transcript progress events to a terminal.
type Console struct {
	out    io.Writer
	bus    *bus.Bus
	done   *color.Color
	todo   *color.Color
	cancel context.CancelFunc
	exited chan struct{}
}

// NewConsole creates a console that writes to out once started.
func NewConsole(out io.Writer, b *bus.Bus) *Console {
	return &Console{
		out:  out,
		bus:  b,
		done: color.New(color.FgGreen),
		todo: color.New(color.Faint),
	}
}

// Start subscribes to transcript events.
func (c *Console) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	c.exited = make(chan struct{})
	ch, unsub := c.bus.Subscribe("transcript.", 1024)

	go func() {
		defer close(c.exited)
		defer unsub()
		for {
			select {
			case evt := <-ch:
				c.handle(evt)
			case <-ctx.Done():
				// Flush what was published before Stop.
				for {
					select {
					case evt := <-ch:
						c.handle(evt)
					default:
						return
					}
				}
			}
		}
	}()
}

// Stop drains pending events and waits for the console to exit.
func (c *Console) Stop() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.exited
}

func (c *Console) handle(evt bus.Event) {
	switch p := evt.Payload.(type) {
	case transcript.Progress:
		c.drawBar(p)
	case transcript.ConversationDone:
		fmt.Fprintln(c.out)
	}
}

// drawBar rewrites the current line, e.g. "Alice [#####-----] 50% done".
func (c *Console) drawBar(p transcript.Progress) {
	filled := min(p.Percent/10, barWidth)
	fmt.Fprintf(c.out, "\r%s [", p.Conversation)
	c.done.Fprint(c.out, strings.Repeat("#", filled))
	c.todo.Fprint(c.out, strings.Repeat("-", barWidth-filled))
	fmt.Fprintf(c.out, "] %d%% done", p.Percent)
}
