package models

import "time"

type Team struct {
	ID      string  `json:"id" db:"id"`
	EventID string  `json:"event_id" db:"event_id"`
	Name    string  `json:"name" db:"name"`
	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Players []Player `json:"players,omitempty" db:"-"`
}

type Player struct {
	ID       string `json:"id" db:"id"`
	TeamID   string `json:"team_id" db:"team_id"`
	FullName string `json:"full_name" db:"full_name"`
}
