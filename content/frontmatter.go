package content

import (
	"bytes"
	"fmt"
	"time"

	"blogfeed/models"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	yamlFence = "---"
	tomlFence = "+++"
)

// yamlFrontmatter keeps the date scalar exactly as the author wrote it
type yamlFrontmatter struct {
	Title string   `yaml:"title"`
	Date  yamlDate `yaml:"date"`
	Slug  string   `yaml:"slug"`
	Draft bool     `yaml:"draft"`
}

type yamlDate string

// UnmarshalYAML takes the raw scalar, yaml.v3 would otherwise resolve
// unquoted timestamps into time.Time
func (d *yamlDate) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: date must be a scalar", node.Line)
	}
	if node.ShortTag() == "!!null" {
		*d = ""
		return nil
	}
	*d = yamlDate(node.Value)
	return nil
}

// tomlFrontmatter accepts dates as strings or as native TOML datetimes
type tomlFrontmatter struct {
	Title string `toml:"title"`
	Date  any    `toml:"date"`
	Slug  string `toml:"slug"`
	Draft bool   `toml:"draft"`
}

// ParseDocument splits a markdown file into its frontmatter and body. A file
// without a fence has empty frontmatter and the whole file as body.
func ParseDocument(data []byte) (models.Frontmatter, string, error) {
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))

	var fence string
	switch {
	case bytes.HasPrefix(data, []byte(yamlFence+"\n")):
		fence = yamlFence
	case bytes.HasPrefix(data, []byte(tomlFence+"\n")):
		fence = tomlFence
	default:
		return models.Frontmatter{}, string(data), nil
	}

	rest := data[len(fence)+1:]
	var header, body []byte
	found := false
	offset := 0
	for _, line := range bytes.SplitAfter(rest, []byte("\n")) {
		if string(bytes.TrimSuffix(line, []byte("\n"))) == fence {
			header = rest[:offset]
			body = rest[offset+len(line):]
			found = true
			break
		}
		offset += len(line)
	}
	if !found {
		return models.Frontmatter{}, "", fmt.Errorf("unterminated %s frontmatter", fence)
	}

	frontmatter, err := decodeFrontmatter(fence, header)
	if err != nil {
		return models.Frontmatter{}, "", fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	return frontmatter, string(body), nil
}

func decodeFrontmatter(fence string, header []byte) (models.Frontmatter, error) {
	if fence == yamlFence {
		var raw yamlFrontmatter
		if err := yaml.Unmarshal(header, &raw); err != nil {
			return models.Frontmatter{}, err
		}
		return models.Frontmatter{
			Title: raw.Title,
			Date:  string(raw.Date),
			Slug:  raw.Slug,
			Draft: raw.Draft,
		}, nil
	}

	var raw tomlFrontmatter
	if err := toml.Unmarshal(header, &raw); err != nil {
		return models.Frontmatter{}, err
	}
	return models.Frontmatter{
		Title: raw.Title,
		Date:  dateString(raw.Date),
		Slug:  raw.Slug,
		Draft: raw.Draft,
	}, nil
}

func dateString(v any) string {
	switch d := v.(type) {
	case nil:
		return ""
	case string:
		return d
	case time.Time:
		return d.Format(time.RFC3339)
	default:
		return fmt.Sprint(d)
	}
}
