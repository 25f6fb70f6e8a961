// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Neighborhood keys. The English label doubles as the stored value.
const (
	LocationCityCenter = "Thessaloniki City Center"
	LocationAnoPoli    = "Ano Poli"
	LocationToumba     = "Toumba"
	LocationKalamaria  = "Kalamaria"
	LocationHarilaou   = "Harilaou"
	LocationOther      = "Other"

	DefaultLocation = LocationCityCenter
)

// Locations lists the neighborhoods in form order.
var Locations = []string{
	LocationCityCenter,
	LocationAnoPoli,
	LocationToumba,
	LocationKalamaria,
	LocationHarilaou,
	LocationOther,
}

// Supported language codes
const (
	LangEnglish = "en"
	LangGreek   = "el"
)

// Domain types

// Signature is one petition endorsement. It is created once and never mutated.
type Signature struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"`
	Comment   string    `json:"comment,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Request types

// SignRequest is the petition form. Email gates submission and is never stored.
type SignRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Location string `json:"location"`
	Comment  string `json:"comment"`
}

// Response types

type SignResponse struct {
	Signature Signature `json:"signature"`
	Synced    bool      `json:"synced"`
	Notice    string    `json:"notice,omitempty"`
}

type SignatureListResponse struct {
	Signatures   []Signature `json:"signatures"`
	Count        int         `json:"count"`
	Syncing      bool        `json:"syncing"`
	LastSyncedAt *time.Time  `json:"last_synced_at,omitempty"`
}

type ProgressResponse struct {
	Count          int     `json:"count"`
	Target         int     `json:"target"`
	Percent        float64 `json:"percent"`
	DisplayPercent int     `json:"display_percent"`
}

type ClientResponse struct {
	ClientID  string     `json:"client_id"`
	HasSigned bool       `json:"has_signed"`
	SignedAt  *time.Time `json:"signed_at,omitempty"`
}

type NeighborhoodOption struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type NeighborhoodsResponse struct {
	Lang          string               `json:"lang"`
	Default       string               `json:"default"`
	Neighborhoods []NeighborhoodOption `json:"neighborhoods"`
}

type Pillar struct {
	ID             int    `json:"id" yaml:"id"`
	Title          string `json:"title" yaml:"title"`
	Crisis         string `json:"crisis" yaml:"crisis"`
	Infrastructure string `json:"infrastructure" yaml:"infrastructure"`
	Legal          string `json:"legal" yaml:"legal"`
	Educational    string `json:"educational" yaml:"educational"`
	Image          string `json:"image" yaml:"image"`
	Icon           string `json:"icon" yaml:"icon"`
}

type ManifestoResponse struct {
	Lang         string   `json:"lang"`
	Title        string   `json:"title"`
	Vision       string   `json:"vision"`
	Pillars      []Pillar `json:"pillars"`
	FiveFreedoms []string `json:"five_freedoms"`
}

type ShareLink struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
	URL  string `json:"url,omitempty"`
}

type ShareResponse struct {
	URL   string      `json:"url"`
	Text  string      `json:"text"`
	Links []ShareLink `json:"links"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
