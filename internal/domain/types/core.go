package types

import "strings"

// SessionID is a backend-issued session identifier.
type SessionID string

// String returns the string form of the session identifier.
func (id SessionID) String() string { return string(id) }

// DeviceID is a stable per-install identifier.
type DeviceID string

// String returns the string form of the device identifier.
func (id DeviceID) String() string { return string(id) }

// ChallengeID identifies a single-use bot-detection challenge.
type ChallengeID string

// String returns the string form of the challenge identifier.
func (id ChallengeID) String() string { return string(id) }

// BotDetectionType names the bot-detection scheme behind a challenge.
//
// The set is closed. Values the client does not know decode to
// BotDetectionUnspecified, for which no solver is ever registered.
type BotDetectionType string

const (
	BotDetectionUnspecified BotDetectionType = "UNSPECIFIED"
	BotDetectionTurnstile   BotDetectionType = "TURNSTILE"
	BotDetectionProofOfWork BotDetectionType = "PROOF_OF_WORK"
)

// BotDetectionTypes lists every known bot-detection type.
func BotDetectionTypes() []BotDetectionType {
	return []BotDetectionType{BotDetectionTurnstile, BotDetectionProofOfWork}
}

// ParseBotDetectionType maps s onto the closed enum, case-insensitively.
func ParseBotDetectionType(s string) BotDetectionType {
	switch BotDetectionType(strings.ToUpper(strings.TrimSpace(s))) {
	case BotDetectionTurnstile:
		return BotDetectionTurnstile
	case BotDetectionProofOfWork:
		return BotDetectionProofOfWork
	default:
		return BotDetectionUnspecified
	}
}

// String returns the wire form of the type.
func (t BotDetectionType) String() string { return string(t) }

// MarshalText implements encoding.TextMarshaler.
func (t BotDetectionType) MarshalText() ([]byte, error) {
	if t == "" {
		return []byte(BotDetectionUnspecified), nil
	}
	return []byte(t), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *BotDetectionType) UnmarshalText(b []byte) error {
	*t = ParseBotDetectionType(string(b))
	return nil
}
