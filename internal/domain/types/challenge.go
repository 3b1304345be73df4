package types

// Challenge is a single-use bot-detection puzzle. Data is opaque and only
// interpreted by the solver registered for Type.
type Challenge struct {
	ID   ChallengeID      `json:"challenge_id"`
	Type BotDetectionType `json:"bot_detection_type"`
	Data string           `json:"challenge_data"`
}

// ChallengeSolution answers the most recently issued Challenge.
type ChallengeSolution struct {
	ChallengeID ChallengeID `json:"challenge_id"`
	Solution    string      `json:"solution"`
}

// VerifyOutcome tells the initializer whether another challenge is needed.
type VerifyOutcome struct {
	Retry bool `json:"retry"`
}

// InitResult is what SessionService.InitSession hands back after persisting
// the new session.
type InitResult struct {
	SessionID     SessionID
	NeedChallenge bool
}
