package authinfo

import (
	"encoding/json"
	"time"
)

type schemeJSON struct {
	Name     string `json:"name"`
	LastUsed string `json:"lastUsed"`
}

type userJSON struct {
	UserID   uint64       `json:"userId"`
	UserName string       `json:"userName,omitempty"`
	Schemes  []schemeJSON `json:"schemes,omitempty"`
}

func toUserJSON(u UserInfo) userJSON {
	out := userJSON{UserID: u.UserID, UserName: u.UserName}
	for _, s := range u.Schemes {
		out.Schemes = append(out.Schemes, schemeJSON{
			Name:     s.Name,
			LastUsed: s.LastUsedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

func fromUserJSON(j userJSON) UserInfo {
	u := UserInfo{UserID: j.UserID, UserName: j.UserName}
	for _, s := range j.Schemes {
		t, _ := time.Parse(time.RFC3339, s.LastUsed)
		u.Schemes = append(u.Schemes, Scheme{Name: s.Name, LastUsedAt: t})
	}
	return u
}

type infoJSON struct {
	User            userJSON  `json:"user"`
	ActualUser      *userJSON `json:"actualUser,omitempty"`
	Expires         *int64    `json:"exp,omitempty"`
	CriticalExpires *int64    `json:"cexp,omitempty"`
	DeviceID        string    `json:"deviceId,omitempty"`
}

// MarshalJSON encodes using exactly the key names spec §4.6/§6 requires.
// actualUser is omitted when it equals user (the non-impersonated case).
func (a AuthenticationInfo) MarshalJSON() ([]byte, error) {
	out := infoJSON{
		User:     toUserJSON(a.user),
		DeviceID: a.deviceID,
	}
	if !a.user.Equal(a.actualUser) {
		au := toUserJSON(a.actualUser)
		out.ActualUser = &au
	}
	if a.expires != nil {
		v := a.expires.UTC().Unix()
		out.Expires = &v
	}
	if a.criticalExpires != nil {
		v := a.criticalExpires.UTC().Unix()
		out.CriticalExpires = &v
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (a *AuthenticationInfo) UnmarshalJSON(data []byte) error {
	var in infoJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	user := fromUserJSON(in.User)
	actual := user
	if in.ActualUser != nil {
		actual = fromUserJSON(*in.ActualUser)
	}

	var expires, criticalExpires *time.Time
	if in.Expires != nil {
		t := time.Unix(*in.Expires, 0).UTC()
		expires = &t
	}
	if in.CriticalExpires != nil {
		t := time.Unix(*in.CriticalExpires, 0).UTC()
		criticalExpires = &t
	}

	*a = Create(user, expires, criticalExpires, in.DeviceID)
	a.actualUser = actual
	return nil
}

// LongTermPayload is the never-encrypted JSON body of the long-term cookie
// (spec §3, §6). An entry with only DeviceID set is valid.
type LongTermPayload struct {
	UserID   uint64       `json:"userId,omitempty"`
	UserName string       `json:"userName,omitempty"`
	Schemes  []schemeJSON `json:"schemes,omitempty"`
	DeviceID string       `json:"deviceId,omitempty"`
}

// EncodeLongTerm renders the unsafe actual-user identity (when remembering)
// plus device id into the long-term cookie's JSON shape.
func EncodeLongTerm(user UserInfo, deviceID string, remember bool) ([]byte, error) {
	payload := LongTermPayload{DeviceID: deviceID}
	if remember && user.UserID != 0 {
		j := toUserJSON(user)
		payload.UserID = j.UserID
		payload.UserName = j.UserName
		payload.Schemes = j.Schemes
	}
	return json.Marshal(payload)
}

// DecodeLongTerm parses the long-term cookie JSON body.
func DecodeLongTerm(data []byte) (LongTermPayload, error) {
	var payload LongTermPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return LongTermPayload{}, err
	}
	return payload, nil
}

// User reconstructs the UserInfo carried by the payload (empty/anonymous
// when only a device id was present).
func (p LongTermPayload) User() UserInfo {
	if p.UserID == 0 {
		return AnonymousUser
	}
	u := UserInfo{UserID: p.UserID, UserName: p.UserName}
	for _, s := range p.Schemes {
		t, _ := time.Parse(time.RFC3339, s.LastUsed)
		u.Schemes = append(u.Schemes, Scheme{Name: s.Name, LastUsedAt: t})
	}
	return u
}
