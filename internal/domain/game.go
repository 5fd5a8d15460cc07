package domain

import (
	"errors"
	"fmt"
)

// SpareBonus is the flat bonus added to the score when a frame is filled on its last roll.
const SpareBonus = 5

// Default game shape.
const (
	DefaultMaxFrames     = 10
	DefaultPinsPerFrame  = 10
	DefaultRollsPerFrame = 2
)

var (
	ErrOutOfRange    = errors.New("pins out of range")
	ErrFrameOverflow = errors.New("game already has the maximum number of frames")
)

// Frame is one closed (or in-progress) scoring unit. Frames compare by value.
type Frame struct {
	Score     int
	RollCount int
}

// strikeBonus tracks a strike frame still owed the pins of upcoming rolls.
type strikeBonus struct {
	frame     int // index into Game.frames
	remaining int
}

// Game scores a single bowling game one roll at a time.
// A Game is not safe for concurrent use.
type Game struct {
	maxFrames     int
	pinsPerFrame  int
	rollsPerFrame int

	score   int
	frames  []Frame
	current Frame
	pending []strikeBonus
}

// NewGame creates a game with the given frame limit, pins per frame and rolls per frame.
// It panics if any value is not positive.
func NewGame(maxFrameValue, framePinsAmount, rollsPerFrame int) *Game {
	if maxFrameValue <= 0 || framePinsAmount <= 0 || rollsPerFrame <= 0 {
		panic("bowling game configuration must be positive")
	}
	return &Game{
		maxFrames:     maxFrameValue,
		pinsPerFrame:  framePinsAmount,
		rollsPerFrame: rollsPerFrame,
	}
}

// NewDefaultGame creates a ten-frame, ten-pin, two-roll game.
func NewDefaultGame() *Game {
	return NewGame(DefaultMaxFrames, DefaultPinsPerFrame, DefaultRollsPerFrame)
}

// Roll records a roll of pins. On error the game is left untouched.
func (g *Game) Roll(pins int) error {
	if pins < 0 || pins > g.pinsPerFrame {
		return fmt.Errorf("%w: pin count %d exceeds pins available in a frame", ErrOutOfRange, pins)
	}
	if len(g.frames) >= g.maxFrames {
		return ErrFrameOverflow
	}
	if total := g.current.Score + pins; total > g.pinsPerFrame {
		return fmt.Errorf("%w: frame total %d exceeds pins available", ErrOutOfRange, total)
	}

	g.current.RollCount++
	g.current.Score += pins
	g.score += pins
	g.creditStrikeBonuses(pins)

	if g.current.RollCount == 1 && g.current.Score == g.pinsPerFrame {
		g.closeFrame()
		g.pending = append(g.pending, strikeBonus{frame: len(g.frames) - 1, remaining: g.rollsPerFrame})
		return nil
	}

	if g.current.RollCount == g.rollsPerFrame {
		if g.current.Score == g.pinsPerFrame {
			g.score += SpareBonus
		}
		g.closeFrame()
	}
	return nil
}

// creditStrikeBonuses adds pins to every strike frame still collecting its bonus.
func (g *Game) creditStrikeBonuses(pins int) {
	kept := g.pending[:0]
	for _, b := range g.pending {
		g.frames[b.frame].Score += pins
		g.score += pins
		b.remaining--
		if b.remaining > 0 {
			kept = append(kept, b)
		}
	}
	g.pending = kept
}

func (g *Game) closeFrame() {
	g.frames = append(g.frames, g.current)
	g.current = Frame{}
}

// Score returns the running total.
func (g *Game) Score() int {
	return g.score
}

// Frames returns a copy of the closed frames in play order.
func (g *Game) Frames() []Frame {
	out := make([]Frame, len(g.frames))
	copy(out, g.frames)
	return out
}

// CurrentFrame returns the open frame.
func (g *Game) CurrentFrame() Frame {
	return g.current
}

// IsComplete reports whether the frame limit has been reached.
func (g *Game) IsComplete() bool {
	return len(g.frames) >= g.maxFrames
}

func (g *Game) FramePinsAmount() int { return g.pinsPerFrame }
func (g *Game) MaxFrameValue() int   { return g.maxFrames }
func (g *Game) RollsPerFrame() int   { return g.rollsPerFrame }
