package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mailib/mailib-server/internal/domain"
	"github.com/mailib/mailib-server/internal/metadata/fantlab"
)

// Fantlab spells the tag "autor"; "author" shows up in newer payloads.
var bracketAuthorRe = regexp.MustCompile(`\[(autor|author)=(\d+)\](.*?)\[/(?:autor|author)\]`)

// ParseBracketAuthors extracts every [autor=ID]Name[/autor] occurrence in order.
// Malformed fragments are ignored.
//
//	"[autor=12]Jane Doe[/autor], [autor=34]John Roe[/autor]"
//	  -> {12 "Jane Doe"}, {34 "John Roe"}
func ParseBracketAuthors(s string) []domain.EntityCandidate {
	var out []domain.EntityCandidate
	for _, m := range bracketAuthorRe.FindAllStringSubmatch(s, -1) {
		id, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			continue
		}
		out = append(out, domain.EntityCandidate{
			ExternalID: id,
			Name:       strings.TrimSpace(m[3]),
		})
	}
	return out
}

// HitAuthors returns the positional authors of a work search hit, keeping
// only slots with a positive id and a non-empty name.
func HitAuthors(h *fantlab.WorkHit) []domain.EntityCandidate {
	var out []domain.EntityCandidate
	for _, slot := range h.AuthorSlots() {
		if slot.ID <= 0 || slot.Name == "" {
			continue
		}
		out = append(out, domain.EntityCandidate{ExternalID: int64(slot.ID), Name: slot.Name})
	}
	return out
}

// Creators maps credited authors of a work or edition.
func Creators(creators []fantlab.Creator) []domain.EntityCandidate {
	out := make([]domain.EntityCandidate, 0, len(creators))
	for _, c := range creators {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		out = append(out, domain.EntityCandidate{ExternalID: int64(c.ID), Name: name})
	}
	return out
}
