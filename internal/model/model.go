package model

import "time"

type Universe struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Archived    bool   `json:"archived"`
}

type Creature struct {
	ID             string  `json:"id"`
	UniverseID     string  `json:"universeId"`
	Name           string  `json:"name"`
	Kind           string  `json:"kind,omitempty"`
	Habitat        string  `json:"habitat,omitempty"`
	Description    string  `json:"description,omitempty"`
	Danger         int     `json:"danger"`
	HomeLocationID *string `json:"homeLocationId,omitempty"`
	Archived       bool    `json:"archived"`
}

type Location struct {
	ID          string  `json:"id"`
	UniverseID  string  `json:"universeId"`
	ParentID    *string `json:"parentId,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Kind        string  `json:"kind,omitempty"`
}

type TimelineEra struct {
	ID          string `json:"id"`
	UniverseID  string `json:"universeId"`
	Name        string `json:"name"`
	StartYear   int64  `json:"startYear"`
	EndYear     int64  `json:"endYear"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

type TimelineEvent struct {
	ID          string  `json:"id"`
	UniverseID  string  `json:"universeId"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Year        int64   `json:"year"`
	DisplayDate string  `json:"displayDate,omitempty"`
	Importance  int     `json:"importance"`
	Kind        string  `json:"kind,omitempty"`
	Color       string  `json:"color,omitempty"`
	LocationID  *string `json:"locationId,omitempty"`
}

type Board struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind,omitempty"`
}

type BoardColumn struct {
	ID       string `json:"id"`
	BoardID  string `json:"boardId"`
	Name     string `json:"name"`
	Position int64  `json:"position"`
}

type Card struct {
	ID          string `json:"id"`
	ColumnID    string `json:"columnId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Position    int64  `json:"position"`
	Priority    int    `json:"priority"`
}

type Novel struct {
	ID         string    `json:"id"`
	UniverseID *string   `json:"universeId,omitempty"`
	Title      string    `json:"title"`
	Synopsis   string    `json:"synopsis,omitempty"`
	Status     string    `json:"status,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type Chapter struct {
	ID        string    `json:"id"`
	NovelID   string    `json:"novelId"`
	Title     string    `json:"title"`
	Position  int64     `json:"position"`
	Synopsis  string    `json:"synopsis,omitempty"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Scene struct {
	ID        string    `json:"id"`
	ChapterID string    `json:"chapterId"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Position  int64     `json:"position"`
	Status    string    `json:"status,omitempty"`
	WordCount int       `json:"wordCount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UniverseSnapshot struct {
	ID          string    `json:"id"`
	UniverseID  string    `json:"universeId"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"createdAt"`
	PayloadJSON string    `json:"payloadJson"`
}

// TrashEntry is a soft-deleted snapshot of an entity. PayloadJSON holds
// the full serialized entity (plus descendants where the kind cascades)
// so restore can reproduce it exactly, foreign keys included.
type TrashEntry struct {
	ID          string    `json:"id"`
	DeletedAt   time.Time `json:"deletedAt"`
	TargetType  string    `json:"targetType"`
	TargetID    string    `json:"targetId"`
	ParentType  string    `json:"parentType,omitempty"`
	ParentID    string    `json:"parentId,omitempty"`
	DisplayName string    `json:"displayName"`
	DisplayInfo string    `json:"displayInfo,omitempty"`
	PayloadJSON string    `json:"payloadJson"`
}

type AuditEntry struct {
	ID          string    `json:"id"`
	TS          time.Time `json:"ts"`
	Action      string    `json:"action"`
	EntityType  string    `json:"entityType"`
	EntityID    string    `json:"entityId"`
	DetailsJSON string    `json:"detailsJson,omitempty"`
}

// BoardData is the fully-hydrated view of one board: its columns in
// position order, each column's cards in position order.
type BoardData struct {
	Board   Board             `json:"board"`
	Columns []BoardColumn     `json:"columns"`
	Cards   map[string][]Card `json:"cards"`
}
