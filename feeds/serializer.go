package feeds

import (
	"fmt"
	"strings"

	"blogfeed/models"

	gorilla "github.com/gorilla/feeds"
	"github.com/samber/lo"
)

// Serialize renders the channel and its entries as an RSS 2.0 document.
// Entry markup goes into <description> entity escaped and into
// <content:encoded> as CDATA.
func Serialize(meta models.FeedMetadata, entries []*models.FeedEntry) (string, error) {
	link := meta.Link
	if link == "" {
		link = meta.AuthorLink
	}

	feed := &gorilla.Feed{
		Title:       meta.Title,
		Link:        &gorilla.Link{Href: link},
		Description: meta.Description,
		Id:          meta.ID,
		Copyright:   meta.Copyright,
		Author: &gorilla.Author{
			Name:  meta.AuthorName,
			Email: meta.AuthorEmail,
		},
	}
	if meta.LastUpdated != nil {
		feed.Updated = *meta.LastUpdated
	}

	feed.Items = lo.Map(entries, func(entry *models.FeedEntry, _ int) *gorilla.Item {
		markup := xmlText(entry.Content)
		item := &gorilla.Item{
			Title:       xmlText(entry.Title),
			Link:        &gorilla.Link{Href: entry.Link},
			Id:          entry.ID,
			Description: markup,
			Content:     markup,
		}
		if entry.DateValid {
			item.Created = entry.PublishDate
		}
		return item
	})

	rss := (&gorilla.Rss{Feed: feed}).RssFeed()
	rss.Generator = meta.Generator
	for i, entry := range entries {
		rss.Items[i].Guid = &gorilla.RssGuid{Id: entry.ID, IsPermaLink: "true"}
	}

	doc, err := gorilla.ToXML(rss)
	if err != nil {
		return "", fmt.Errorf("failed to serialize feed: %w", err)
	}
	return doc, nil
}

// xmlText drops what cannot appear in an XML document at all: invalid UTF-8
// and runes outside the XML Char production. CDATA sections are written
// without escaping, so this has to happen before serialization.
func xmlText(s string) string {
	return strings.Map(func(r rune) rune {
		if isXMLChar(r) {
			return r
		}
		return -1
	}, strings.ToValidUTF8(s, "\uFFFD"))
}

func isXMLChar(r rune) bool {
	switch {
	case r == 0x09 || r == 0x0A || r == 0x0D:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}
