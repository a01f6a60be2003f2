package archive

import (
	"fmt"
	"time"

	"github.com/starford/daivaya/internal/models"
	"github.com/starford/daivaya/internal/parser"
)

type frontmatter struct {
	ID        string         `yaml:"id"`
	UserID    string         `yaml:"user_id"`
	Kind      string         `yaml:"kind"`
	Title     string         `yaml:"title"`
	CreatedAt time.Time      `yaml:"created_at"`
	Extra     map[string]any `yaml:"meta,omitempty"`
}

// Encode renders r as a Markdown document with YAML frontmatter.
func Encode(r models.Reading) ([]byte, error) {
	return parser.Compose(frontmatter{
		ID:        r.ID,
		UserID:    r.UserID,
		Kind:      r.Kind,
		Title:     r.Title,
		CreatedAt: r.CreatedAt.UTC(),
		Extra:     r.Frontmatter,
	}, r.Body)
}

// Decode parses a document written by Encode.
func Decode(data []byte) (models.Reading, error) {
	res, err := parser.Parse(data)
	if err != nil {
		return models.Reading{}, err
	}
	str := func(k string) string {
		s, _ := res.Frontmatter[k].(string)
		return s
	}
	r := models.Reading{
		ID:       str("id"),
		UserID:   str("user_id"),
		Kind:     str("kind"),
		Title:    res.Title,
		Body:     res.Body,
		Sections: res.Sections,
	}
	if r.ID == "" || r.UserID == "" {
		return models.Reading{}, fmt.Errorf("archive: document lacks id or user_id")
	}
	switch v := res.Frontmatter["created_at"].(type) {
	case time.Time:
		r.CreatedAt = v
	case string:
		r.CreatedAt, _ = time.Parse(time.RFC3339, v)
	}
	if meta, ok := res.Frontmatter["meta"].(map[string]any); ok {
		r.Frontmatter = meta
	}
	return r, nil
}
