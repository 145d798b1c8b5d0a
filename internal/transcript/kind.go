package transcript

// MessageKind is the ZMESSAGETYPE of a message row.
type MessageKind int

const (
	KindText       MessageKind = 0
	KindImage      MessageKind = 1
	KindVideo      MessageKind = 2
	KindAudio      MessageKind = 3
	KindContact    MessageKind = 4
	KindLocation   MessageKind = 5
	KindGroupEvent MessageKind = 6
)

// IsMedia reports whether rows of this kind reference a media item.
func (k MessageKind) IsMedia() bool {
	switch k {
	case KindImage, KindVideo, KindAudio, KindContact, KindLocation:
		return true
	}
	return false
}

// IsFile reports whether the media of this kind lives in a file of the backup.
func (k MessageKind) IsFile() bool {
	return k == KindImage || k == KindVideo || k == KindAudio
}

// String returns the name used in placeholders, e.g. "[missing image]".
func (k MessageKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	case KindContact:
		return "contact"
	case KindLocation:
		return "location"
	case KindGroupEvent:
		return "group event"
	}
	return "unknown"
}

// htmlTag is the element an embedded file of this kind renders as.
func (k MessageKind) htmlTag() string {
	switch k {
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	}
	return "img"
}

// GroupEventKind is the ZGROUPEVENTTYPE of a group event row.
type GroupEventKind int64

const (
	GroupSubjectChanged GroupEventKind = 1
	GroupJoined         GroupEventKind = 2
	GroupLeft           GroupEventKind = 3
	GroupPhotoChanged   GroupEventKind = 4
)
