package devto

import (
	"encoding/json"
	"strings"
)

// User is the author block embedded in articles and comments.
type User struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

// Article is a Forem article. The list endpoint omits BodyHTML.
type Article struct {
	ID                     int    `json:"id"`
	Title                  string `json:"title"`
	Description            string `json:"description"`
	ReadablePublishDate    string `json:"readable_publish_date"`
	URL                    string `json:"url"`
	CommentsCount          int    `json:"comments_count"`
	PositiveReactionsCount int    `json:"positive_reactions_count"`
	PublicReactionsCount   int    `json:"public_reactions_count"`
	ReadingTimeMinutes     int    `json:"reading_time_minutes"`
	TagList                Tags   `json:"tag_list"`
	BodyHTML               string `json:"body_html"`
	User                   User   `json:"user"`
}

// Comment is one node of an article's comment tree.
type Comment struct {
	IDCode   string    `json:"id_code"`
	BodyHTML string    `json:"body_html"`
	Deleted  bool      `json:"deleted"`
	User     User      `json:"user"`
	Children []Comment `json:"children"`
}

// Tags decodes tag_list, which the list endpoint sends as an array and the
// single-article endpoint as a comma separated string.
type Tags []string

// UnmarshalJSON accepts either representation.
func (t *Tags) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = nil
	for _, tag := range strings.Split(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			*t = append(*t, tag)
		}
	}
	return nil
}
