package model

// ContentKind tags how an asset field resolves.
type ContentKind int

const (
	ContentAbsent ContentKind = iota
	ContentInline
	ContentExternal
)

func (k ContentKind) String() string {
	switch k {
	case ContentInline:
		return "inline"
	case ContentExternal:
		return "external"
	default:
		return "absent"
	}
}

// Slot is one binary asset field. It is embedded into parent models with a
// column prefix, e.g. banner_data, banner_mimetype, banner_url.
//
// Data holds an encoded payload (see pkg/codec). URL wins over Data when both are set.
type Slot struct {
	Data     []byte `gorm:"column:data" json:"-"`
	MimeType string `gorm:"column:mimetype;type:varchar(100)" json:"mimetype,omitempty"`
	URL      string `gorm:"column:url;type:text" json:"url,omitempty"`
}

// Content is the tagged view of a Slot.
type Content struct {
	Kind     ContentKind
	Data     []byte
	MimeType string
	URL      string
}

// Content classifies the slot as External, Inline or Absent.
func (s Slot) Content() Content {
	switch {
	case s.URL != "":
		return Content{Kind: ContentExternal, URL: s.URL, MimeType: s.MimeType}
	case len(s.Data) > 0:
		return Content{Kind: ContentInline, Data: s.Data, MimeType: s.MimeType}
	default:
		return Content{Kind: ContentAbsent}
	}
}

// IsZero reports whether the slot carries nothing.
func (s Slot) IsZero() bool {
	return s.URL == "" && len(s.Data) == 0
}

// Columns returns the column names of a slot embedded with prefix.
func Columns(prefix string) []string {
	return []string{prefix + "data", prefix + "mimetype", prefix + "url"}
}
