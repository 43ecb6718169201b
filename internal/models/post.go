package models

import "time"

// postPreviewLen is how many characters of text String shows.
const postPreviewLen = 15

// Post is an entry written by a single author. PubDate and AuthorID are set
// once at creation and never rewritten.
type Post struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	PubDate  time.Time `gorm:"not null;index:idx_posts_pub_date" json:"pub_date"`
	AuthorID uint      `gorm:"not null;index" json:"author_id"`
	Author   User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	GroupID  *uint     `gorm:"index" json:"group_id,omitempty"`
	Group    *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" json:"group,omitempty"`
	// Image is the media collaborator's reference, stored verbatim.
	Image string `gorm:"size:255" json:"image,omitempty"`
	// ImageURL is Image resolved against the public media URL.
	ImageURL string `gorm:"-" json:"image_url,omitempty"`
}

// String returns the first characters of the post text.
func (p Post) String() string {
	r := []rune(p.Text)
	if len(r) > postPreviewLen {
		return string(r[:postPreviewLen])
	}
	return p.Text
}
