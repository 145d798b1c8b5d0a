package transcript

// MemberLookup fetches a group member's display name from the message store.
type MemberLookup interface {
	GroupMemberName(id int64) (string, error)
}

// MemberDirectory caches group member names for the whole run. Member ids are
// global to the store, so one directory serves every conversation. It is not
// safe for concurrent use.
type MemberDirectory struct {
	lookup MemberLookup
	names  map[int64]string
}

// NewMemberDirectory returns an empty directory backed by lookup.
func NewMemberDirectory(lookup MemberLookup) *MemberDirectory {
	return &MemberDirectory{
		lookup: lookup,
		names:  make(map[int64]string),
	}
}

// Name returns the display name of member id. A member missing from the
// store is an error; there is no fallback label.
func (d *MemberDirectory) Name(id int64) (string, error) {
	if name, ok := d.names[id]; ok {
		return name, nil
	}
	name, err := d.lookup.GroupMemberName(id)
	if err != nil {
		return "", err
	}
	d.names[id] = name
	return name, nil
}

// Len returns the number of cached members.
func (d *MemberDirectory) Len() int {
	return len(d.names)
}
