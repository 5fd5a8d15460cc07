package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"bowling/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// fakeNakama overrides MatchCreate and records its arguments.
type fakeNakama struct {
	runtime.NakamaModule
	module    string
	params    map[string]interface{}
	createErr error
}

func (nk *fakeNakama) MatchCreate(ctx context.Context, module string, params map[string]interface{}) (string, error) {
	nk.module = module
	nk.params = params
	if nk.createErr != nil {
		return "", nk.createErr
	}
	return "match-1", nil
}

// fakeInitializer records registrations made by InitModule.
type fakeInitializer struct {
	runtime.Initializer
	rpcs    []string
	matches map[string]func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule) (runtime.Match, error)
}

func (fi *fakeInitializer) RegisterRpc(id string, fn func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error)) error {
	fi.rpcs = append(fi.rpcs, id)
	return nil
}

func (fi *fakeInitializer) RegisterMatch(name string, fn func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error)) error {
	if fi.matches == nil {
		fi.matches = make(map[string]func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule) (runtime.Match, error))
	}
	fi.matches[name] = fn
	return nil
}

func TestInitModule(t *testing.T) {
	initializer := &fakeInitializer{}
	if err := InitModule(context.Background(), noopLogger{}, nil, nil, initializer); err != nil {
		t.Fatalf("InitModule() error = %v", err)
	}
	if len(initializer.rpcs) != 1 || initializer.rpcs[0] != RpcCreateGame {
		t.Fatalf("registered rpcs = %v, want [%s]", initializer.rpcs, RpcCreateGame)
	}
	factory, ok := initializer.matches[MatchNameBowling]
	if !ok {
		t.Fatalf("match %s not registered", MatchNameBowling)
	}
	if m, err := factory(context.Background(), noopLogger{}, nil, nil); err != nil || m == nil {
		t.Fatalf("match factory = %v, %v", m, err)
	}
}

func TestRpcCreateGame(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		wantParams config.GameConfig
		wantErr    bool
	}{
		{name: "empty payload", payload: "", wantParams: config.Default()},
		{name: "partial config", payload: `{"max_frames":5}`, wantParams: config.GameConfig{MaxFrames: 5, PinsPerFrame: 10, RollsPerFrame: 2}},
		{name: "full config", payload: `{"max_frames":3,"pins_per_frame":6,"rolls_per_frame":3}`, wantParams: config.GameConfig{MaxFrames: 3, PinsPerFrame: 6, RollsPerFrame: 3}},
		{name: "invalid json", payload: `{"max_frames":`, wantErr: true},
		{name: "non-positive", payload: `{"rolls_per_frame":0}`, wantErr: true},
		{name: "oversized frame count", payload: `{"max_frames":1152921504606846976}`, wantErr: true},
		{name: "oversized pins", payload: `{"pins_per_frame":1000000}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nk := &fakeNakama{}
			out, err := rpcCreateGame(context.Background(), noopLogger{}, nil, nk, tt.payload)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("rpcCreateGame() error = nil, want error")
				}
				if nk.module != "" {
					t.Fatalf("match created for rejected payload")
				}
				return
			}
			if err != nil {
				t.Fatalf("rpcCreateGame() error = %v", err)
			}

			var resp CreateGameResponse
			if err := json.Unmarshal([]byte(out), &resp); err != nil {
				t.Fatalf("response unmarshal failed: %v", err)
			}
			if resp.MatchID != "match-1" || nk.module != MatchNameBowling {
				t.Fatalf("unexpected response %+v for module %s", resp, nk.module)
			}

			got, err := config.Default().WithParams(nk.params)
			if err != nil {
				t.Fatalf("params not usable by MatchInit: %v", err)
			}
			if got != tt.wantParams {
				t.Fatalf("match params resolve to %+v, want %+v", got, tt.wantParams)
			}
		})
	}
}

func TestRpcCreateGameMatchCreateError(t *testing.T) {
	nk := &fakeNakama{createErr: errors.New("boom")}
	if _, err := rpcCreateGame(context.Background(), noopLogger{}, nil, nk, ""); err == nil {
		t.Fatalf("rpcCreateGame() error = nil, want error")
	}
}
