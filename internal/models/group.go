package models

import "time"

// Group is a student cohort.
type Group struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Dept      string    `db:"dept" json:"dept"`
	Level     int       `db:"level" json:"level"`
	Size      int       `db:"size" json:"size"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// GroupFilter captures filtering options for listing groups.
type GroupFilter struct {
	Search    string
	Dept      string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// GroupParallel is one stored edge of the parallel-group relation for a term.
// Storage holds a single directed row per pair; the relation is undirected at
// the domain level and is symmetrized when the adjacency is built.
type GroupParallel struct {
	ID        int64     `db:"id" json:"id"`
	Term      string    `db:"term" json:"term"`
	GroupAID  int64     `db:"group_a_id" json:"group_a_id"`
	GroupBID  int64     `db:"group_b_id" json:"group_b_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
