package index

// Posting records how often a term occurs in one document of a partition.
// DocIDs are partition-local ordinals assigned in add order.
type Posting struct {
	DocID     uint32 `json:"d"`
	Frequency int    `json:"f"`
}

// PostingList is kept sorted by DocID ascending.
type PostingList []Posting

type TermEntry struct {
	Term     string
	Postings PostingList
}

// StoredDoc holds the stored fields of a document. Text is the searchable
// field (title + " " + body) and Length its token count.
type StoredDoc struct {
	ExternalID int64  `json:"id,omitempty"`
	Title      string `json:"t"`
	URL        string `json:"u"`
	Text       string `json:"x"`
	Length     int    `json:"n"`
	CreatedAt  int64  `json:"c,omitempty"`
}
