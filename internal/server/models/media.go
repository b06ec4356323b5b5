package models

import "time"

// Category is a named grouping of progress media. Names are unique and
// looked up case-insensitively.
type Category struct {
	ID   int64
	Name string
}

// MediaRecord is the capability the media gateway consumes: any stored
// media with an owner, a visibility flag and a ciphertext storage key.
// ProgressImage and ProgressVideo are its two variants.
type MediaRecord interface {
	Owner() string
	Public() bool
	Key() string
}

// ProgressImage is one uploaded photo. StorageKey addresses the
// ciphertext blob; visibility defaults to private on creation and only
// the flag is ever mutated afterwards.
type ProgressImage struct {
	ID         string
	UserID     string
	CategoryID int64
	Date       time.Time
	StorageKey string
	IsPublic   bool
}

func (i *ProgressImage) Owner() string { return i.UserID }
func (i *ProgressImage) Public() bool  { return i.IsPublic }
func (i *ProgressImage) Key() string   { return i.StorageKey }

// ProgressVideo is a compiled timelapse. StartDate/EndDate record the
// capture dates of the first and last source image, not wall-clock
// creation time; FPS keeps the literal requested value. Immutable after
// creation.
type ProgressVideo struct {
	ID         string
	UserID     string
	CategoryID int64
	StorageKey string
	IsPublic   bool
	FPS        float64
	StartDate  time.Time
	EndDate    time.Time
	CreatedAt  time.Time
}

func (v *ProgressVideo) Owner() string { return v.UserID }
func (v *ProgressVideo) Public() bool  { return v.IsPublic }
func (v *ProgressVideo) Key() string   { return v.StorageKey }
