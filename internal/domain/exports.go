package domain

import (
	interfaces "sessiongate/internal/domain/interfaces"
	types "sessiongate/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	SessionID             = types.SessionID
	DeviceID              = types.DeviceID
	ChallengeID           = types.ChallengeID
	BotDetectionType      = types.BotDetectionType
	Session               = types.Session
	DeviceIdentity        = types.DeviceIdentity
	Challenge             = types.Challenge
	ChallengeSolution     = types.ChallengeSolution
	VerifyOutcome         = types.VerifyOutcome
	InitResult            = types.InitResult
	Operation             = types.Operation
	InitSessionResponse   = types.InitSessionResponse
	ChallengeExtra        = types.ChallengeExtra
	ChallengeResponse     = types.ChallengeResponse
	VerifyRequest         = types.VerifyRequest
	VerifyResponse        = types.VerifyResponse
	DeleteSessionResponse = types.DeleteSessionResponse
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	SessionStore        = interfaces.SessionStore
	DeviceIdentityStore = interfaces.DeviceIdentityStore
	SessionRepository   = interfaces.SessionRepository
	Solver              = interfaces.Solver
	SolverRegistry      = interfaces.SolverRegistry
	SessionService      = interfaces.SessionService
	DeviceService       = interfaces.DeviceService
)

// NewVerifyResponse builds a Verify reply carrying retry.
var NewVerifyResponse = types.NewVerifyResponse

// ParseBotDetectionType maps a wire string to a BotDetectionType.
var ParseBotDetectionType = types.ParseBotDetectionType

// Re-exported enum values and constants.
const (
	BotDetectionUnspecified = types.BotDetectionUnspecified
	BotDetectionTurnstile   = types.BotDetectionTurnstile
	BotDetectionProofOfWork = types.BotDetectionProofOfWork

	HeaderSessionID = types.HeaderSessionID
	HeaderDeviceID  = types.HeaderDeviceID

	OpInitSession   = types.OpInitSession
	OpChallenge     = types.OpChallenge
	OpVerify        = types.OpVerify
	OpDeleteSession = types.OpDeleteSession
)
