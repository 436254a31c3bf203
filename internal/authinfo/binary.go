package authinfo

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"time"
)

// Binary envelope format (spec §4.1), versioned so the protector purpose
// string can be bumped on a breaking change instead of silently
// misinterpreting old bytes:
//
//	1 byte    format version
//	actualUser (userID 8 bytes big-endian, userName with 2-byte big-endian
//	           length prefix, 1-byte scheme count, then per scheme: name with
//	           2-byte length prefix + 8 bytes unix-nano)
//	user       (same layout)
//	1 byte     expires present-flag + 8 bytes unix-nano if present
//	1 byte     criticalExpires present-flag + 8 bytes unix-nano if present
//	2 bytes    deviceID length (big-endian) + bytes (UTF-8)
//	1 byte     rememberMe
const formatVersion = 1

var (
	errTruncated   = errors.New("authinfo: truncated envelope")
	errTooLong     = errors.New("authinfo: field too long to encode")
	errBadVersion  = errors.New("authinfo: unsupported envelope version")
	errMissingFlag = errors.New("authinfo: missing rememberMe byte")
)

// Encode serializes a FrontAuthenticationInfo into the canonical binary
// form consumed by the Cookie/Token protectors.
func Encode(f FrontAuthenticationInfo) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(formatVersion)

	if err := encodeUser(&buf, f.Info.actualUser); err != nil {
		return nil, err
	}
	if err := encodeUser(&buf, f.Info.user); err != nil {
		return nil, err
	}
	if err := encodeTimePtr(&buf, f.Info.expires); err != nil {
		return nil, err
	}
	if err := encodeTimePtr(&buf, f.Info.criticalExpires); err != nil {
		return nil, err
	}
	if err := encodeString(&buf, f.Info.deviceID); err != nil {
		return nil, err
	}

	var rememberByte byte
	if f.RememberMe {
		rememberByte = 1
	}
	buf.WriteByte(rememberByte)

	return buf.Bytes(), nil
}

// Decode parses bytes produced by Encode. A corrupt/truncated blob returns
// an error that callers MUST treat as "absent envelope", never as an
// authentication failure (spec §4.1 failure modes).
func Decode(data []byte) (FrontAuthenticationInfo, error) {
	r := bytes.NewReader(data)

	version, err := r.ReadByte()
	if err != nil {
		return FrontAuthenticationInfo{}, errTruncated
	}
	if version != formatVersion {
		return FrontAuthenticationInfo{}, errBadVersion
	}

	actual, err := decodeUser(r)
	if err != nil {
		return FrontAuthenticationInfo{}, err
	}
	user, err := decodeUser(r)
	if err != nil {
		return FrontAuthenticationInfo{}, err
	}
	expires, err := decodeTimePtr(r)
	if err != nil {
		return FrontAuthenticationInfo{}, err
	}
	criticalExpires, err := decodeTimePtr(r)
	if err != nil {
		return FrontAuthenticationInfo{}, err
	}
	deviceID, err := decodeString(r)
	if err != nil {
		return FrontAuthenticationInfo{}, err
	}

	rememberByte, err := r.ReadByte()
	if err != nil {
		return FrontAuthenticationInfo{}, errMissingFlag
	}

	info := Create(user, expires, criticalExpires, deviceID)
	info.actualUser = actual

	return FrontAuthenticationInfo{Info: info, RememberMe: rememberByte != 0}, nil
}

func encodeUser(buf *bytes.Buffer, u UserInfo) error {
	var idBytes [8]byte
	binary.BigEndian.PutUint64(idBytes[:], u.UserID)
	buf.Write(idBytes[:])

	if err := encodeString(buf, u.UserName); err != nil {
		return err
	}

	if len(u.Schemes) > 255 {
		return errTooLong
	}
	buf.WriteByte(byte(len(u.Schemes)))
	for _, s := range u.Schemes {
		if err := encodeString(buf, s.Name); err != nil {
			return err
		}
		var tsBytes [8]byte
		binary.BigEndian.PutUint64(tsBytes[:], uint64(s.LastUsedAt.UnixNano()))
		buf.Write(tsBytes[:])
	}
	return nil
}

func decodeUser(r *bytes.Reader) (UserInfo, error) {
	var idBytes [8]byte
	if _, err := io.ReadFull(r, idBytes[:]); err != nil {
		return UserInfo{}, errTruncated
	}
	userID := binary.BigEndian.Uint64(idBytes[:])

	userName, err := decodeString(r)
	if err != nil {
		return UserInfo{}, err
	}

	count, err := r.ReadByte()
	if err != nil {
		return UserInfo{}, errTruncated
	}

	schemes := make([]Scheme, 0, count)
	for i := byte(0); i < count; i++ {
		name, err := decodeString(r)
		if err != nil {
			return UserInfo{}, err
		}
		var tsBytes [8]byte
		if _, err := io.ReadFull(r, tsBytes[:]); err != nil {
			return UserInfo{}, errTruncated
		}
		nanos := int64(binary.BigEndian.Uint64(tsBytes[:]))
		schemes = append(schemes, Scheme{Name: name, LastUsedAt: time.Unix(0, nanos).UTC()})
	}

	return UserInfo{UserID: userID, UserName: userName, Schemes: schemes}, nil
}

func encodeTimePtr(buf *bytes.Buffer, t *time.Time) error {
	if t == nil {
		buf.WriteByte(0)
		return nil
	}
	buf.WriteByte(1)
	var tsBytes [8]byte
	binary.BigEndian.PutUint64(tsBytes[:], uint64(t.UnixNano()))
	buf.Write(tsBytes[:])
	return nil
}

func decodeTimePtr(r *bytes.Reader) (*time.Time, error) {
	present, err := r.ReadByte()
	if err != nil {
		return nil, errTruncated
	}
	if present == 0 {
		return nil, nil
	}
	var tsBytes [8]byte
	if _, err := io.ReadFull(r, tsBytes[:]); err != nil {
		return nil, errTruncated
	}
	nanos := int64(binary.BigEndian.Uint64(tsBytes[:]))
	t := time.Unix(0, nanos).UTC()
	return &t, nil
}

func encodeString(buf *bytes.Buffer, s string) error {
	if len(s) > 65535 {
		return errTooLong
	}
	var lenBytes [2]byte
	binary.BigEndian.PutUint16(lenBytes[:], uint16(len(s)))
	buf.Write(lenBytes[:])
	buf.WriteString(s)
	return nil
}

func decodeString(r *bytes.Reader) (string, error) {
	var lenBytes [2]byte
	if _, err := io.ReadFull(r, lenBytes[:]); err != nil {
		return "", errTruncated
	}
	n := binary.BigEndian.Uint16(lenBytes[:])
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return "", errTruncated
	}
	return string(data), nil
}
