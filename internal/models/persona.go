package models

import (
	"time"
)

// Run is one generation request and the personas it produced
type Run struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	BaseName  string    `json:"base_name" gorm:"not null"`
	Traits    string    `json:"traits"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	Personas  []Persona `json:"personas" gorm:"constraint:OnDelete:CASCADE"`
}

// Persona is a generated identity as shown on a card. Position is the
// reveal slot within its run (0..4) and is exposed as the card id.
type Persona struct {
	ID          uint   `json:"-" gorm:"primaryKey"`
	RunID       string `json:"-" gorm:"index;size:36"`
	Position    int    `json:"id"`
	Universe    string `json:"universe"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Backstory   string `json:"backstory"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

// GenerateRequest is the body of the generation endpoints
type GenerateRequest struct {
	Name   string `json:"name" form:"name"`
	Traits string `json:"traits" form:"traits"`
}

// Universe describes a theme for the front end
type Universe struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}
