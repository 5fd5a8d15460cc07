package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"bowling/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	return initializer.RegisterRpc(RpcCreateGame, rpcCreateGame)
}

// rpcCreateGame creates a bowling match. The payload is an optional partial
// GameConfig; omitted fields fall back to the runtime defaults in MatchInit.
func rpcCreateGame(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	params := map[string]interface{}{}

	if strings.TrimSpace(payload) != "" {
		var req map[string]json.Number
		dec := json.NewDecoder(strings.NewReader(payload))
		dec.UseNumber()
		if err := dec.Decode(&req); err != nil {
			logger.Warn("rpcCreateGame: Invalid payload: %v", err)
			return "", runtime.NewError("payload must be a JSON object of integers", 3) // INVALID_ARGUMENT
		}
		for k, v := range req {
			params[k] = v
		}

		cfg, err := config.Default().WithParams(params)
		if err == nil {
			err = cfg.Validate()
		}
		if err != nil {
			logger.Warn("rpcCreateGame: Rejected config: %v", err)
			return "", runtime.NewError(err.Error(), 3) // INVALID_ARGUMENT
		}
	}

	matchID, err := nk.MatchCreate(ctx, MatchNameBowling, params)
	if err != nil {
		logger.Error("MatchCreate error: %v", err)
		return "", fmt.Errorf("failed to create match: %w", err)
	}

	b, err := json.Marshal(CreateGameResponse{MatchID: matchID})
	if err != nil {
		return "", err
	}
	return string(b), nil
}
