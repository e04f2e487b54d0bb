package storage

import (
	"encoding/json"
	"strconv"

	"github.com/bilgisen/paperharvest/internal/models"
)

type cell struct {
	column string
	value  string
}

// Flatten turns articles into a table. Nested objects become dot-joined
// columns, arrays are kept as compact JSON text, and columns appear in the
// order they are first seen across all rows. Cells a row has no value for are
// left empty.
func Flatten(articles []models.Article) ([]string, [][]string, error) {
	index := map[string]int{}
	var header []string
	records := make([][]cell, 0, len(articles))

	for _, a := range articles {
		cells, err := flattenArticle(a)
		if err != nil {
			return nil, nil, err
		}
		for _, c := range cells {
			if _, ok := index[c.column]; !ok {
				index[c.column] = len(header)
				header = append(header, c.column)
			}
		}
		records = append(records, cells)
	}

	rows := make([][]string, 0, len(records))
	for _, cells := range records {
		row := make([]string, len(header))
		for _, c := range cells {
			row[index[c.column]] = c.value
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

func flattenArticle(a models.Article) ([]cell, error) {
	cells := []cell{
		{column: "date", value: a.Date},
		{column: "edition_id", value: strconv.Itoa(a.EditionID)},
		{column: "page_id", value: a.PageID.String()},
		{column: "story_id", value: a.StoryID.String()},
	}
	return flattenObject(cells, "content", &a.Content.Object)
}

func flattenObject(cells []cell, prefix string, obj *models.Object) ([]cell, error) {
	for _, key := range obj.Keys() {
		column := key
		if prefix != "" {
			column = prefix + "." + key
		}

		v, _ := obj.Get(key)
		if nested, ok := v.(*models.Object); ok {
			var err error
			if cells, err = flattenObject(cells, column, nested); err != nil {
				return nil, err
			}
			continue
		}

		text, err := cellText(v)
		if err != nil {
			return nil, err
		}
		cells = append(cells, cell{column: column, value: text})
	}
	return cells, nil
}

func cellText(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool:
		if t {
			return "True", nil
		}
		return "False", nil
	}
	b, err := models.MarshalValue(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
