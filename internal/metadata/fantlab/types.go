package fantlab

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is a Fantlab numeric identifier. The API is inconsistent about quoting
// ids, so ID accepts numbers, numeric strings, "" and null (the last two as 0).
type ID int64

// UnmarshalJSON implements json.Unmarshaler.
func (i *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*i = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*i = 0
			return nil
		}
		data = []byte(s)
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("fantlab id %q: %w", data, err)
	}
	*i = ID(n)
	return nil
}

// String renders the id the way it is stored as a book external id.
func (i ID) String() string {
	return strconv.FormatInt(int64(i), 10)
}

// WorkHit is one match of search-works.
type WorkHit struct {
	WorkID     ID     `json:"work_id"`
	RusName    string `json:"rusname"`
	Name       string `json:"name"`
	WorkTypeID ID     `json:"work_type_id"`
	NameShowIm string `json:"name_show_im"`
	Autor1ID   ID     `json:"autor1_id"`
	Autor2ID   ID     `json:"autor2_id"`
	Autor3ID   ID     `json:"autor3_id"`
	Autor4ID   ID     `json:"autor4_id"`
	Autor5ID   ID     `json:"autor5_id"`
	Autor1Name string `json:"autor1_rusname"`
	Autor2Name string `json:"autor2_rusname"`
	Autor3Name string `json:"autor3_rusname"`
	Autor4Name string `json:"autor4_rusname"`
	Autor5Name string `json:"autor5_rusname"`
}

// AuthorSlot is one positional author of a work search hit.
type AuthorSlot struct {
	ID   ID
	Name string
}

// AuthorSlots returns the five positional author slots in order, empty ones included.
func (h *WorkHit) AuthorSlots() [5]AuthorSlot {
	return [5]AuthorSlot{
		{h.Autor1ID, h.Autor1Name},
		{h.Autor2ID, h.Autor2Name},
		{h.Autor3ID, h.Autor3Name},
		{h.Autor4ID, h.Autor4Name},
		{h.Autor5ID, h.Autor5Name},
	}
}

// EditionHit is one match of search-editions. Autors carries bracket markup.
type EditionHit struct {
	EditionID ID     `json:"edition_id"`
	Name      string `json:"name"`
	Autors    string `json:"autors"`
}

// Creator is an author credited on a work or edition.
type Creator struct {
	Type string `json:"type"`
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// GenreNode is a node of the classificatory genre tree.
type GenreNode struct {
	GenreID ID          `json:"genre_id"`
	Label   string      `json:"label"`
	Genre   []GenreNode `json:"genre"`
}

// GenreGroup is a labeled classificatory group ("Жанры/поджанры", "Место действия", ...).
type GenreGroup struct {
	Label string      `json:"label"`
	Genre []GenreNode `json:"genre"`
}

// SagaEntry is a cycle the work belongs to.
type SagaEntry struct {
	WorkID   ID     `json:"work_id"`
	WorkName string `json:"work_name"`
	WorkType string `json:"work_type"`
}

// Work is the extended work payload.
type Work struct {
	WorkID          ID        `json:"work_id"`
	WorkName        string    `json:"work_name"`
	Authors         []Creator `json:"authors"`
	WorkDescription string    `json:"work_description"`
	Image           string    `json:"image"`
	ImagePreview    string    `json:"image_preview"`
	WorkTypeID      ID        `json:"work_type_id"`
	WorkType        string    `json:"work_type"`
	EditionsInfo    struct {
		ISBNList string `json:"isbn_list"`
	} `json:"editions_info"`
	Classificatory struct {
		GenreGroup []GenreGroup `json:"genre_group"`
	} `json:"classificatory"`
	WorkRootSaga []SagaEntry `json:"work_root_saga"`
}

// SeriesEntry is a publisher series an edition belongs to.
type SeriesEntry struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Edition is the extended edition payload.
type Edition struct {
	EditionID    ID       `json:"edition_id"`
	EditionName  string   `json:"edition_name"`
	Description  string   `json:"description"`
	Image        string   `json:"image"`
	ImagePreview string   `json:"image_preview"`
	ISBNs        []string `json:"isbns"`
	Creators     struct {
		Authors []Creator `json:"authors"`
	} `json:"creators"`
	Series []SeriesEntry `json:"series"`
}
