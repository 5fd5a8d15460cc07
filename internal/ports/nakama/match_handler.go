package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"bowling/internal/config"
	"bowling/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

const tickRate = 10

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

// matchHandler implements Nakama's runtime.Match interface for a single bowling game.
type matchHandler struct{}

// MatchInit builds the game config from defaults, runtime env and match params.
// An invalid config aborts match creation.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)

	cfg, err := resolveConfig(env, params)
	if err != nil {
		logger.Error("MatchInit: Invalid game config: %v", err)
		return nil, 0, ""
	}

	state := &MatchState{
		Phase:  PhaseLobby,
		Config: cfg,
		Game:   cfg.NewGame(),
	}

	logger.Debug("MatchInit: Bowling match created (frames=%d, pins=%d, rolls=%d).", cfg.MaxFrames, cfg.PinsPerFrame, cfg.RollsPerFrame)
	return state, tickRate, buildLabel(state)
}

// resolveConfig applies, in order: defaults, an optional JSON file, env keys and match params.
func resolveConfig(env map[string]string, params map[string]interface{}) (config.GameConfig, error) {
	cfg := config.Default()
	if path := env[config.EnvConfigPath]; path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	cfg, err := cfg.WithEnv(env)
	if err != nil {
		return cfg, err
	}
	if cfg, err = cfg.WithParams(params); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// MatchJoinAttempt admits the first presence as the bowler and lets only that user rejoin.
func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule,
	dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {

	s, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoinAttempt: state not found")
		return state, false, "state_not_found"
	}

	if s.BowlerID == "" || s.BowlerID == presence.GetUserId() {
		return state, true, ""
	}
	return state, false, "match_full"
}

// MatchJoin seats the bowler and starts the game.
func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule,
	dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {

	s, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		uid := p.GetUserId()

		if s.BowlerID == uid {
			s.Presence = p
			logger.Debug("MatchJoin: Bowler %s rejoined.", uid)
			continue
		}
		if s.BowlerID != "" {
			logger.Warn("MatchJoin: Ignoring extra presence %s; bowler is %s.", uid, s.BowlerID)
			continue
		}

		s.BowlerID = uid
		s.Presence = p
		s.Phase = PhasePlaying

		mh.broadcast(dispatcher, logger, OpGameStarted, GameStartedEvent{BowlerID: uid, Config: s.Config}, nil)
		logger.Info("MatchJoin: Game started for %s.", uid)
	}

	mh.updateLabel(s, dispatcher, logger)
	return state
}

// MatchLeave terminates the match once the bowler's current session leaves.
// A stale session of a bowler who has since rejoined does not end the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule,
	dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {

	s, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		if p.GetUserId() != s.BowlerID {
			continue
		}
		if s.Presence != nil && p.GetSessionId() != s.Presence.GetSessionId() {
			logger.Debug("MatchLeave: Stale session %s of bowler %s left.", p.GetSessionId(), s.BowlerID)
			continue
		}
		logger.Info("MatchLeave: Bowler %s left at score %d, terminating match.", s.BowlerID, s.Game.Score())
		return nil
	}
	return state
}

// MatchLoop processes roll and new-game messages from the bowler.
func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule,
	dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {

	s, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLoop: state not found")
		return state
	}

	for _, msg := range messages {
		if msg.GetUserId() != s.BowlerID {
			logger.Warn("MatchLoop: Ignoring message from non-bowler %s.", msg.GetUserId())
			continue
		}

		switch msg.GetOpCode() {
		case OpRoll:
			mh.handleRoll(s, dispatcher, logger, msg)

		case OpRequestNewGame:
			mh.handleRequestNewGame(s, dispatcher, logger)

		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	return state
}

func (mh *matchHandler) handleRoll(s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if s.Phase != PhasePlaying {
		mh.sendError(s, dispatcher, logger, ErrorCodeGameOver, "game is not in progress")
		return
	}

	var req RollRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil || req.Pins == nil {
		logger.Warn("handleRoll: Invalid RollRequest from %s: %v", s.BowlerID, err)
		mh.sendError(s, dispatcher, logger, ErrorCodeBadPayload, "roll payload must be {\"pins\": <int>}")
		return
	}

	if err := s.Game.Roll(*req.Pins); err != nil {
		logger.Warn("handleRoll: Rejected roll of %d from %s: %v", *req.Pins, s.BowlerID, err)
		mh.sendError(s, dispatcher, logger, errorCode(err), err.Error())
		return
	}

	snapshot := toSnapshot(s.Game)
	mh.broadcast(dispatcher, logger, OpRollAccepted, snapshot, nil)

	if snapshot.Complete {
		s.Phase = PhaseEnded
		mh.broadcast(dispatcher, logger, OpGameEnded, snapshot, nil)
		mh.updateLabel(s, dispatcher, logger)
		logger.Info("handleRoll: Game for %s ended with score %d.", s.BowlerID, snapshot.Score)
	}
}

func (mh *matchHandler) handleRequestNewGame(s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if s.Phase != PhaseEnded {
		logger.Warn("handleRequestNewGame: Game for %s still in progress.", s.BowlerID)
		return
	}

	s.Game = s.Config.NewGame()
	s.Phase = PhasePlaying

	mh.broadcast(dispatcher, logger, OpGameStarted, GameStartedEvent{BowlerID: s.BowlerID, Config: s.Config}, nil)
	mh.updateLabel(s, dispatcher, logger)
}

// errorCode maps domain errors to client error codes.
func errorCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrFrameOverflow):
		return ErrorCodeFrameOverflow
	case errors.Is(err, domain.ErrOutOfRange):
		return ErrorCodeOutOfRange
	}
	return ErrorCodeBadPayload
}

// MatchTerminate runs on match shutdown.
func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule,
	dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminating with %d grace seconds.", graceSeconds)
	return state
}

// MatchSignal answers SignalSnapshot with the JSON score snapshot.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule,
	dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {

	s, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchSignal: state not found")
		return state, ""
	}
	if data != SignalSnapshot {
		logger.Warn("MatchSignal: Unknown signal %q", data)
		return state, ""
	}

	b, err := json.Marshal(toSnapshot(s.Game))
	if err != nil {
		logger.Error("MatchSignal: Failed to marshal snapshot: %v", err)
		return state, ""
	}
	return state, string(b)
}

func (mh *matchHandler) broadcast(dispatcher runtime.MatchDispatcher, logger runtime.Logger, opCode int64, payload any, presences []runtime.Presence) {
	b, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal payload for opcode %d: %v", opCode, err)
		return
	}
	if err := dispatcher.BroadcastMessage(opCode, b, presences, nil, true); err != nil {
		logger.Error("Failed to broadcast opcode %d: %v", opCode, err)
	}
}

// sendError sends a GameErrorEvent to the bowler only.
func (mh *matchHandler) sendError(s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, code int, message string) {
	if s.Presence == nil {
		logger.Warn("Cannot send error to %s: Presence not found", s.BowlerID)
		return
	}
	mh.broadcast(dispatcher, logger, OpGameError, GameErrorEvent{Code: code, Message: message}, []runtime.Presence{s.Presence})
}

func buildLabel(s *MatchState) string {
	b, _ := json.Marshal(Label{Open: s.BowlerID == "", Game: "bowling", Phase: string(s.Phase)})
	return string(b)
}

func (mh *matchHandler) updateLabel(s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if err := dispatcher.MatchLabelUpdate(buildLabel(s)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}
