package core

import (
	"github.com/google/uuid"
)

type PlayerType int

const (
	PlayerHuman PlayerType = iota + 1
	PlayerComputer
)

func (t PlayerType) String() string {
	if t == PlayerComputer {
		return "computer"
	}
	return "human"
}

// Player is the complete game entity with all state
type Player struct {
	ID    string     `json:"id"`
	Color Color      `json:"color"`
	Type  PlayerType `json:"type"`
	Seed  int64      `json:"seed,omitempty"` // Only for computer, 0 picks a fresh seed
}

// PlayerConfig for API requests and configuration
type PlayerConfig struct {
	Type PlayerType `json:"type" validate:"required,oneof=1 2"`
	Seed int64      `json:"seed,omitempty" validate:"omitempty,min=0"`
}

// PlayersResponse for API responses
type PlayersResponse struct {
	White *Player `json:"white"`
	Black *Player `json:"black"`
}

// NewPlayer creates a Player from PlayerConfig
func NewPlayer(config PlayerConfig, color Color) *Player {
	player := &Player{
		ID:    uuid.New().String(),
		Color: color,
		Type:  config.Type,
	}

	if config.Type == PlayerComputer {
		player.Seed = config.Seed
	}

	return player
}
