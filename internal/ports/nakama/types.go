package nakama

import (
	"bowling/internal/config"
	"bowling/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Phase represents the lifecycle stage of a bowling match.
type Phase string

const (
	// PhaseLobby is the state before the bowler joins.
	PhaseLobby Phase = "lobby"
	// PhasePlaying is the state while rolls are accepted.
	PhasePlaying Phase = "playing"
	// PhaseEnded is the state after the last frame closes.
	PhaseEnded Phase = "ended"
)

// MatchState holds authoritative state for one bowling match. Each match owns
// exactly one game; Nakama runs match callbacks one at a time.
type MatchState struct {
	Phase Phase

	BowlerID string
	Presence runtime.Presence

	Config config.GameConfig
	Game   *domain.Game
}

// Label is the match label advertised for match listing.
type Label struct {
	Open  bool   `json:"open"`
	Game  string `json:"game"`
	Phase string `json:"phase"`
}

// RollRequest is the OpRoll payload.
type RollRequest struct {
	Pins *int `json:"pins"`
}

// FrameView is the wire form of a frame.
type FrameView struct {
	Score     int `json:"score"`
	RollCount int `json:"roll_count"`
}

// Snapshot is the score view broadcast after every accepted roll.
type Snapshot struct {
	Score    int         `json:"score"`
	Frames   []FrameView `json:"frames"`
	Current  FrameView   `json:"current"`
	Complete bool        `json:"complete"`
}

// GameStartedEvent announces the game shape to the bowler.
type GameStartedEvent struct {
	BowlerID string            `json:"bowler_id"`
	Config   config.GameConfig `json:"config"`
}

// GameErrorEvent reports a rejected message to its sender.
type GameErrorEvent struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// CreateGameResponse is returned by the create_game RPC.
type CreateGameResponse struct {
	MatchID string `json:"match_id"`
}
