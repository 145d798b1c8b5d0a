package chatstore

import "database/sql"

// Conversation is one row of ZWACHATSESSION.
type Conversation struct {
	ContactJID string
	Name       string
	IsGroup    bool
}

// Message is one row of ZWAMESSAGE, limited to the columns a transcript needs.
type Message struct {
	FromJID        sql.NullString
	Text           sql.NullString
	Date           float64 // seconds since 2001-01-01, see transcript.EpochOffsetYears
	Type           int
	GroupEventType sql.NullInt64
	GroupMember    sql.NullInt64
	MediaItem      sql.NullInt64
}

// MediaItem is one row of ZWAMEDIAITEM. Which columns are populated depends
// on the kind of the message that references it.
type MediaItem struct {
	ID        int64
	LocalPath sql.NullString
	VCardName sql.NullString
	Latitude  sql.NullFloat64
	Longitude sql.NullFloat64
}
