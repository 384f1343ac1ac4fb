package normalize

import (
	"strings"

	"github.com/mailib/mailib-server/internal/domain"
	"github.com/mailib/mailib-server/internal/metadata/fantlab"
)

// WorkBook maps a work payload to a catalog book without linked entities.
func WorkBook(w *fantlab.Work) domain.Book {
	return domain.Book{
		ExternalID:  w.WorkID.String(),
		Name:        w.WorkName,
		Description: ClearDescription(w.WorkDescription),
		ImageSmall:  w.ImagePreview,
		ImageBig:    w.Image,
		ISBNList:    w.EditionsInfo.ISBNList,
		Type:        domain.SourceFantlabWork,
	}
}

// EditionBook maps an edition payload to a catalog book without linked entities.
func EditionBook(e *fantlab.Edition) domain.Book {
	return domain.Book{
		ExternalID:  e.EditionID.String(),
		Name:        e.EditionName,
		Description: ClearDescription(e.Description),
		ImageSmall:  e.ImagePreview,
		ImageBig:    e.Image,
		ISBNList:    strings.Join(e.ISBNs, ", "),
		Type:        domain.SourceFantlabEdition,
	}
}

// WorkCycles maps the root sagas of a work, skipping entries without an id.
func WorkCycles(w *fantlab.Work) []domain.EntityCandidate {
	var out []domain.EntityCandidate
	for _, s := range w.WorkRootSaga {
		if s.WorkID == 0 {
			continue
		}
		out = append(out, domain.EntityCandidate{
			ExternalID: int64(s.WorkID),
			Name:       s.WorkName,
			Extra:      s.WorkType,
		})
	}
	return out
}

// EditionCycles maps the publisher series of an edition, skipping entries without an id.
func EditionCycles(e *fantlab.Edition) []domain.EntityCandidate {
	var out []domain.EntityCandidate
	for _, s := range e.Series {
		if s.ID == 0 {
			continue
		}
		out = append(out, domain.EntityCandidate{
			ExternalID: int64(s.ID),
			Name:       s.Name,
			Extra:      s.Type,
		})
	}
	return out
}

// Candidates bundles the sub-entity groups of an imported book.
type Candidates struct {
	Authors []domain.EntityCandidate
	Genres  []domain.EntityCandidate
	Cycles  []domain.EntityCandidate
}

// WorkCandidates returns authors, genres and cycles of a work.
func WorkCandidates(w *fantlab.Work) Candidates {
	return Candidates{
		Authors: Creators(w.Authors),
		Genres:  WorkGenres(w),
		Cycles:  WorkCycles(w),
	}
}

// EditionCandidates returns authors and cycles of an edition. Editions carry no genres.
func EditionCandidates(e *fantlab.Edition) Candidates {
	return Candidates{
		Authors: Creators(e.Creators.Authors),
		Cycles:  EditionCycles(e),
	}
}
