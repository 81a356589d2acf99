package api

import "strconv"

// StoryType represents the different HN story categories.
type StoryType string

const (
	StoryTypeTop  StoryType = "top"
	StoryTypeNew  StoryType = "new"
	StoryTypeBest StoryType = "best"
	StoryTypeAsk  StoryType = "ask"
	StoryTypeShow StoryType = "show"
	StoryTypeJobs StoryType = "jobs"
)

// Item represents an HN item (story, comment, job, poll, pollopt).
type Item struct {
	ID          int    `json:"id"`
	Type        string `json:"type"`
	By          string `json:"by"`
	Time        int64  `json:"time"`
	Text        string `json:"text"`
	Parent      int    `json:"parent"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Score       int    `json:"score"`
	Descendants int    `json:"descendants"`
	Kids        []int  `json:"kids"`
	Dead        bool   `json:"dead"`
	Deleted     bool   `json:"deleted"`
}

// KidIDs returns the child ids as opaque strings, in HN's display order.
func (it *Item) KidIDs() []string {
	if len(it.Kids) == 0 {
		return nil
	}
	ids := make([]string, len(it.Kids))
	for i, k := range it.Kids {
		ids[i] = strconv.Itoa(k)
	}
	return ids
}
