package types

// Header names attached to every platform call.
const (
	HeaderSessionID = "X-Session-ID"
	HeaderDeviceID  = "X-Device-ID"
)

// Operation names one of the four session RPCs.
type Operation string

const (
	OpInitSession   Operation = "InitSession"
	OpChallenge     Operation = "Challenge"
	OpVerify        Operation = "Verify"
	OpDeleteSession Operation = "DeleteSession"
)

// String returns the operation name.
func (o Operation) String() string { return string(o) }

// InitSessionResponse is the InitSession reply.
type InitSessionResponse struct {
	SessionID     SessionID         `json:"sessionId"`
	NeedChallenge bool              `json:"needChallenge"`
	Extra         map[string]string `json:"extra,omitempty"`
}

// ChallengeExtra carries the opaque challenge payload.
type ChallengeExtra struct {
	ChallengeData string `json:"challengeData"`
}

// ChallengeResponse is the Challenge reply.
type ChallengeResponse struct {
	ChallengeID      ChallengeID      `json:"challengeId"`
	BotDetectionType BotDetectionType `json:"botDetectionType"`
	Extra            ChallengeExtra   `json:"extra"`
}

// VerifyRequest submits a solution for a challenge.
type VerifyRequest struct {
	ChallengeID ChallengeID `json:"challengeId"`
	Solution    string      `json:"solution"`
}

// VerifyResponse is the Verify reply. Retry is nil when the reply left the
// field out.
type VerifyResponse struct {
	Retry *bool `json:"retry"`
}

// NewVerifyResponse builds a Verify reply carrying retry.
func NewVerifyResponse(retry bool) VerifyResponse {
	return VerifyResponse{Retry: &retry}
}

// DeleteSessionResponse is the (empty) DeleteSession reply.
type DeleteSessionResponse struct{}
