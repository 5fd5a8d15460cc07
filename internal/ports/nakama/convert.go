package nakama

import "bowling/internal/domain"

func toFrameView(f domain.Frame) FrameView {
	return FrameView{Score: f.Score, RollCount: f.RollCount}
}

// toSnapshot maps the game to its wire representation.
func toSnapshot(game *domain.Game) Snapshot {
	frames := game.Frames()
	views := make([]FrameView, len(frames))
	for i, f := range frames {
		views[i] = toFrameView(f)
	}
	return Snapshot{
		Score:    game.Score(),
		Frames:   views,
		Current:  toFrameView(game.CurrentFrame()),
		Complete: game.IsComplete(),
	}
}
