package models

// Comment is an immutable, append-only reply attached to a post.
type Comment struct {
	ID         string `json:"id"`
	Author     string `json:"author"`
	AuthorName string `json:"authorName"`
	Content    string `json:"content"`
	// Timestamp is Unix milliseconds, the original wire format.
	Timestamp int64 `json:"timestamp"`
}

// Post represents a feed entry. Author fields are denormalized snapshots
// taken at creation time; renaming the author later does not rewrite them.
type Post struct {
	ID           string `json:"id"`
	Author       string `json:"author"`
	AuthorName   string `json:"authorName"`
	AuthorAvatar string `json:"authorAvatar,omitempty"`
	Content      string `json:"content"`
	Timestamp    int64  `json:"timestamp"`
	// Likes is a set of usernames with toggle membership semantics.
	Likes    []string  `json:"likes"`
	Comments []Comment `json:"comments"`
}

// LikedBy reports whether username is a member of the like set.
func (p *Post) LikedBy(username string) bool {
	for _, u := range p.Likes {
		if u == username {
			return true
		}
	}
	return false
}
