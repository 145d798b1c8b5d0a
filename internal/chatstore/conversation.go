package chatstore

import (
	"database/sql"
	"errors"
	"fmt"

	"go.mau.fi/whatsmeow/types"
)

// ListConversations returns every chat session in store order.
// A session without a partner name falls back to the user part of its JID.
func (db *DB) ListConversations() ([]Conversation, error) {
	rows, err := db.Query(`
		SELECT ZCONTACTJID, ZPARTNERNAME, ZSESSIONTYPE
		FROM ZWACHATSESSION
		ORDER BY Z_PK`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var convs []Conversation
	for rows.Next() {
		var (
			jid, name   sql.NullString
			sessionType sql.NullInt64
		)
		if err := rows.Scan(&jid, &name, &sessionType); err != nil {
			return nil, err
		}
		if !jid.Valid || jid.String == "" {
			return nil, fmt.Errorf("chat session without contact jid: %w", ErrMissingRecord)
		}
		c := Conversation{
			ContactJID: jid.String,
			Name:       name.String,
			IsGroup:    sessionType.Int64 != 0,
		}
		if parsed, err := types.ParseJID(jid.String); err == nil {
			if parsed.Server == types.GroupServer {
				c.IsGroup = true
			}
			if c.Name == "" {
				c.Name = parsed.User
			}
		}
		if c.Name == "" {
			c.Name = jid.String
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

// CountMessages returns the number of messages sent to or from contactJID.
func (db *DB) CountMessages(contactJID string) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM ZWAMESSAGE WHERE ZFROMJID = ? OR ZTOJID = ?`,
		contactJID, contactJID).Scan(&n)
	return n, err
}

// EachMessage streams the messages sent to or from contactJID in store order.
// Iteration stops at the first error returned by fn.
//
// ZMESSAGEDATE is declared TIMESTAMP; the cast keeps the driver from turning
// integral values into time.Time.
func (db *DB) EachMessage(contactJID string, fn func(Message) error) error {
	rows, err := db.Query(`
		SELECT ZFROMJID, ZTEXT, CAST(ZMESSAGEDATE AS REAL), ZMESSAGETYPE, ZGROUPEVENTTYPE, ZGROUPMEMBER, ZMEDIAITEM
		FROM ZWAMESSAGE
		WHERE ZFROMJID = ? OR ZTOJID = ?
		ORDER BY Z_PK`, contactJID, contactJID)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.FromJID, &m.Text, &m.Date, &m.Type, &m.GroupEventType, &m.GroupMember, &m.MediaItem); err != nil {
			return fmt.Errorf("scan message: %w", err)
		}
		if err := fn(m); err != nil {
			return err
		}
	}
	return rows.Err()
}

// GroupMemberName returns the display name of a group member. Members without
// a stored name fall back to the user part of their JID.
func (db *DB) GroupMemberName(id int64) (string, error) {
	var name, jid sql.NullString
	err := db.QueryRow(`SELECT ZCONTACTNAME, ZMEMBERJID FROM ZWAGROUPMEMBER WHERE Z_PK = ?`, id).
		Scan(&name, &jid)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("group member %d: %w", id, ErrMissingRecord)
	}
	if err != nil {
		return "", err
	}
	if name.Valid && name.String != "" {
		return name.String, nil
	}
	if parsed, err := types.ParseJID(jid.String); err == nil && parsed.User != "" {
		return parsed.User, nil
	}
	return "", fmt.Errorf("group member %d has no name: %w", id, ErrMissingRecord)
}

// MediaItem returns the media row with the given primary key.
func (db *DB) MediaItem(id int64) (*MediaItem, error) {
	m := MediaItem{ID: id}
	err := db.QueryRow(`
		SELECT ZMEDIALOCALPATH, ZVCARDNAME, ZLATITUDE, ZLONGITUDE
		FROM ZWAMEDIAITEM WHERE Z_PK = ?`, id).
		Scan(&m.LocalPath, &m.VCardName, &m.Latitude, &m.Longitude)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("media item %d: %w", id, ErrMissingRecord)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
