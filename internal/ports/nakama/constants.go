package nakama

const (
	// RpcCreateGame is the Nakama RPC id clients call to create a bowling match.
	RpcCreateGame = "create_game"

	// MatchNameBowling is the authoritative match handler name registered with Nakama.
	MatchNameBowling = "bowling_match"

	// SignalSnapshot asks a running match for its current score snapshot.
	SignalSnapshot = "snapshot"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpRoll           int64 = 1
	OpRequestNewGame int64 = 2

	// Server -> Client events
	OpGameStarted  int64 = 101
	OpRollAccepted int64 = 102
	OpGameEnded    int64 = 103
	OpGameError    int64 = 104 // send privately
)

// Error codes carried by OpGameError.
const (
	ErrorCodeOutOfRange    = 1
	ErrorCodeFrameOverflow = 2
	ErrorCodeBadPayload    = 3
	ErrorCodeGameOver      = 4
)
