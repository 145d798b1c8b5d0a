package transcript

import (
	"fmt"
	"html"

	"github.com/matheus3301/wpphistory/internal/chatstore"
)

// ownerActor names the backup owner in group events.
const ownerActor = "you"

// Classifier produces the body text of a message row.
type Classifier struct {
	members *MemberDirectory
	media   *MediaRenderer
	escape  bool
}

// NewClassifier returns a classifier resolving actors through members and
// media rows through media.
func NewClassifier(members *MemberDirectory, media *MediaRenderer, escape bool) *Classifier {
	return &Classifier{members: members, media: media, escape: escape}
}

// Body returns the rendered content of m. It is never empty.
func (c *Classifier) Body(m chatstore.Message, scope string) (string, error) {
	switch kind := MessageKind(m.Type); kind {
	case KindText:
		if !m.Text.Valid || m.Text.String == "" {
			return "[empty message]", nil
		}
		return c.text(m.Text.String), nil
	case KindGroupEvent:
		return c.groupEvent(m)
	case KindImage, KindVideo, KindAudio, KindContact, KindLocation:
		return c.media.Render(kind, m.MediaItem, scope)
	default:
		return fmt.Sprintf("[message type %d]", m.Type), nil
	}
}

func (c *Classifier) groupEvent(m chatstore.Message) (string, error) {
	actor := ownerActor
	if m.GroupMember.Valid {
		name, err := c.members.Name(m.GroupMember.Int64)
		if err != nil {
			return "", err
		}
		actor = c.text(name)
	}

	switch kind := GroupEventKind(m.GroupEventType.Int64); kind {
	case GroupSubjectChanged:
		return fmt.Sprintf("[%s changed the group subject to %s]", actor, c.text(m.Text.String)), nil
	case GroupJoined:
		return fmt.Sprintf("[%s joined]", actor), nil
	case GroupLeft:
		return fmt.Sprintf("[%s left]", actor), nil
	case GroupPhotoChanged:
		return fmt.Sprintf("[%s changed the group photo]", actor), nil
	default:
		return fmt.Sprintf("[group event %d by %s]", kind, actor), nil
	}
}

func (c *Classifier) text(s string) string {
	if c.escape {
		return html.EscapeString(s)
	}
	return s
}
