// Package errors provides structured error handling with user-facing rendering.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Campaign errors
	CodeCampaignPaused Code = "CAMPAIGN_PAUSED"

	// Player errors
	CodePlayerNotFound      Code = "PLAYER_NOT_FOUND"
	CodePlayerAlreadyExists Code = "PLAYER_ALREADY_EXISTS"
	CodePlayerEmptyID       Code = "PLAYER_EMPTY_ID"

	// Ledger errors
	CodeLedgerTimestampRegression Code = "LEDGER_TIMESTAMP_REGRESSION"
	CodeLedgerEmptyPlayerID       Code = "LEDGER_EMPTY_PLAYER_ID"

	// Combat errors
	CodeCombatNotActive       Code = "COMBAT_NOT_ACTIVE"
	CodeCombatAlreadyActive   Code = "COMBAT_ALREADY_ACTIVE"
	CodeCombatInvalidRound    Code = "COMBAT_INVALID_ROUND"
	CodeCombatInvalidPhase    Code = "COMBAT_INVALID_PHASE"
	CodeCombatNoActivePlayers Code = "COMBAT_NO_ACTIVE_PLAYERS"

	// HP tracker errors
	CodeHpEntryNotFound Code = "HP_ENTRY_NOT_FOUND"
	CodeHpInvalidRange  Code = "HP_INVALID_RANGE"
	CodeHpInvalidAmount Code = "HP_INVALID_AMOUNT"
	CodeHpCapExceeded   Code = "HP_CAP_EXCEEDED"
	CodeHpEmptyLabel    Code = "HP_EMPTY_LABEL"

	// Progress clock errors
	CodeClockNotFound        Code = "CLOCK_NOT_FOUND"
	CodeClockInvalidSegments Code = "CLOCK_INVALID_SEGMENTS"
	CodeClockInvalidTicks    Code = "CLOCK_INVALID_TICKS"
	CodeClockCapExceeded     Code = "CLOCK_CAP_EXCEEDED"

	// Command errors
	CodeCommandGMOnly  Code = "COMMAND_GM_ONLY"
	CodeCommandBadArgs Code = "COMMAND_BAD_ARGS"
	CodeCommandUnknown Code = "COMMAND_UNKNOWN"

	// Storage errors
	CodeSaveFailed Code = "SAVE_FAILED"
	CodeLoadFailed Code = "LOAD_FAILED"

	// Config errors
	CodeConfigInvalid Code = "CONFIG_INVALID"
)
