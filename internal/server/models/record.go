package models

import "time"

// Personal-record tracking: plain numeric maxima per category, separate
// from progress media. Units and categories are reference data; entries
// are unique per (user, category).

type RecordUnit struct {
	ID   int64
	Name string
}

type RecordCategory struct {
	ID       int64
	Name     string
	UnitID   int64
	UnitName string
}

type RecordEntry struct {
	ID         int64
	UserID     string
	CategoryID int64
	Date       time.Time
	Value      int64
}
