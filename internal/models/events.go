package models

import "encoding/json"

// Push events broadcast to admin sessions.
const (
	EventOrderNew      = "goodie:order"
	EventOrderUpdate   = "goodie:order:update"
	EventCatalogNew    = "goodie:catalog:new"
	EventCatalogDelete = "goodie:catalog:delete"
)

// Event is the websocket frame: {"event": name, "data": payload}.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// DeletedRef is the payload of EventCatalogDelete.
type DeletedRef struct {
	ID string `json:"_id"`
}
