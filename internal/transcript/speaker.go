package transcript

import "github.com/matheus3301/wpphistory/internal/chatstore"

// Palette holds the row colors. Index 0 belongs to the backup owner; the
// remaining entries rotate among the other speakers of a conversation.
var Palette = [...]string{
	"#f8ff78",
	"#85d7ff",
	"cornsilk",
	"lightpink",
	"lightgreen",
	"yellowgreen",
	"lightgrey",
	"khaki",
	"mistyrose",
}

// OwnerColor is the color of every row sent by the backup owner.
var OwnerColor = Palette[0]

// ColorContext assigns colors to speaker labels within one conversation.
// Create a new one for every conversation.
type ColorContext struct {
	next    int
	byLabel map[string]string
}

// NewColorContext returns a context with no colors assigned yet.
func NewColorContext() *ColorContext {
	return &ColorContext{byLabel: make(map[string]string)}
}

// Color returns the color of label, assigning the next palette entry on first use.
func (c *ColorContext) Color(label string) string {
	if color, ok := c.byLabel[label]; ok {
		return color
	}
	others := Palette[1:]
	color := others[c.next%len(others)]
	c.next++
	c.byLabel[label] = color
	return color
}

// Speaker is the rendered sender of one row.
type Speaker struct {
	Label string
	Color string
}

// SpeakerResolver labels the sender of each row.
type SpeakerResolver struct {
	owner   string
	members *MemberDirectory
}

// NewSpeakerResolver returns a resolver that calls the backup owner ownerName.
func NewSpeakerResolver(ownerName string, members *MemberDirectory) *SpeakerResolver {
	return &SpeakerResolver{owner: ownerName, members: members}
}

// Resolve returns the label and color for the sender of m in conv.
// Rows not sent by the conversation's contact were sent by the owner.
func (s *SpeakerResolver) Resolve(conv chatstore.Conversation, colors *ColorContext, m chatstore.Message) (Speaker, error) {
	if !m.FromJID.Valid || m.FromJID.String != conv.ContactJID {
		label := s.owner
		if conv.IsGroup {
			label = conv.Name + " - " + s.owner
		}
		return Speaker{Label: label, Color: OwnerColor}, nil
	}

	label := conv.Name
	// Group events already name their actor in the body.
	if conv.IsGroup && m.GroupMember.Valid && MessageKind(m.Type) != KindGroupEvent {
		name, err := s.members.Name(m.GroupMember.Int64)
		if err != nil {
			return Speaker{}, err
		}
		label += " - " + name
	}
	return Speaker{Label: label, Color: colors.Color(label)}, nil
}
