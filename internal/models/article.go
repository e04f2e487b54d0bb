package models

import "strings"

// Article is one harvested story, stamped with where it was found.
type Article struct {
	Date      string      `json:"date"`
	EditionID int         `json:"edition_id"`
	PageID    ID          `json:"page_id"`
	StoryID   ID          `json:"story_id"`
	Content   StoryDetail `json:"content"`
}

// DateKey turns a DD/MM/YYYY date into the DD_MM_YYYY form used in file names.
func DateKey(date string) string {
	return strings.ReplaceAll(date, "/", "_")
}
