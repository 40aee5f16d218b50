package models

// User is a named profile owning a private movie listing.
type User struct {
	ID     uint    `gorm:"primaryKey"`
	Name   string  `gorm:"uniqueIndex;not null"`
	Movies []Movie `gorm:"constraint:OnDelete:CASCADE"`
}

// Movie is one film in a user's collection. Year and Rating hold the metadata
// source's raw strings ("N/A" and ranges such as "2005–2007" occur).
type Movie struct {
	ID        uint    `gorm:"primaryKey"`
	Title     string  `gorm:"not null;index:idx_movies_user_title,priority:2"`
	Year      string
	Rating    string
	PosterURL *string
	UserID    uint `gorm:"not null;index:idx_movies_user_title,priority:1"`
	Note      *string
	IMDbID    *string `gorm:"column:imdb_id"`
}

// NoteText returns the note or "" when none was set.
func (m Movie) NoteText() string {
	if m.Note == nil {
		return ""
	}
	return *m.Note
}

// Poster returns the poster URL or "" when the movie has no artwork.
func (m Movie) Poster() string {
	if m.PosterURL == nil {
		return ""
	}
	return *m.PosterURL
}

// IMDbURL returns the IMDb deep link, or "" without an external id.
func (m Movie) IMDbURL() string {
	if m.IMDbID == nil || *m.IMDbID == "" {
		return ""
	}
	return "https://www.imdb.com/title/" + *m.IMDbID + "/"
}
