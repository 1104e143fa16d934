package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"igapi/pkg/tagged"
)

// SnapshotVersion is bumped whenever the snapshot layout changes incompatibly
const SnapshotVersion = 1

// Snapshot is the persisted form of a Session. It encodes to a JSON document
// in which byte values inside Extra are written as tagged wrappers.
type Snapshot struct {
	Version        int            `json:"version"`
	Username       string         `json:"username"`
	UUID           string         `json:"uuid"`
	PhoneID        string         `json:"phone_id"`
	AdID           string         `json:"ad_id"`
	DeviceID       string         `json:"device_id"`
	UserAgent      string         `json:"user_agent"`
	TimezoneOffset int            `json:"timezone_offset"`
	Created        int64          `json:"created_ts"`
	Cookies        []Cookie       `json:"cookies"`
	Extra          map[string]any `json:"-"`
}

type rawSnapshot Snapshot

func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := struct {
		rawSnapshot
		Extra any `json:"extra,omitempty"`
	}{rawSnapshot: rawSnapshot(s)}
	if len(s.Extra) > 0 {
		out.Extra = tagged.Wrap(s.Extra)
	}
	return json.Marshal(out)
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var in struct {
		*rawSnapshot
		Extra map[string]any `json:"extra"`
	}
	in.rawSnapshot = (*rawSnapshot)(s)

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&in); err != nil {
		return err
	}
	if in.Extra != nil {
		extra, ok := tagged.Restore(in.Extra).(map[string]any)
		if !ok {
			return fmt.Errorf("extra must be an object")
		}
		s.Extra = extra
	}
	return nil
}

// Encode writes the snapshot as indented JSON
func (s *Snapshot) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("session: encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a document produced by Encode
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("session: decode snapshot: %w", err)
	}
	if s.Version == 0 || s.Version > SnapshotVersion {
		return nil, fmt.Errorf("session: unsupported snapshot version %d", s.Version)
	}
	if s.UUID == "" || s.DeviceID == "" {
		return nil, fmt.Errorf("session: snapshot is missing device identity")
	}
	return &s, nil
}

// Snapshot captures the session, cookies included
func (s *Session) Snapshot() *Snapshot {
	return &Snapshot{
		Version:        SnapshotVersion,
		Username:       s.Username,
		UUID:           s.UUID,
		PhoneID:        s.PhoneID,
		AdID:           s.AdID,
		DeviceID:       s.DeviceID,
		UserAgent:      s.UserAgent,
		TimezoneOffset: s.TimezoneOffset,
		Created:        s.Created.Unix(),
		Cookies:        s.Jar.Export(),
		Extra:          s.Extra,
	}
}

// FromSnapshot rebuilds a session. Expired cookies are kept so the caller can
// detect the expiry on the next request.
func FromSnapshot(snap *Snapshot) *Session {
	jar := NewJar()
	for _, c := range snap.Cookies {
		jar.Set(c)
	}
	return &Session{
		Username:       snap.Username,
		UUID:           snap.UUID,
		PhoneID:        snap.PhoneID,
		AdID:           snap.AdID,
		DeviceID:       snap.DeviceID,
		UserAgent:      snap.UserAgent,
		TimezoneOffset: snap.TimezoneOffset,
		Created:        time.Unix(snap.Created, 0),
		Extra:          snap.Extra,
		Jar:            jar,
	}
}
