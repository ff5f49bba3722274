package bookapi

// SearchQuery is the criteria a user submits for a book search. Field
// names on the wire match what the backend expects.
type SearchQuery struct {
	BookName  string `json:"bookName"`
	Isbn      string `json:"isbn"`
	Author    string `json:"author"`
	Site      string `json:"site"`
	Timestamp string `json:"timestamp"`
}

// BookRecord is one retailer-sourced listing returned by the search
// endpoint. Every field may be missing; display code substitutes
// placeholders instead of failing.
type BookRecord struct {
	Id           string   `json:"id"`
	Title        string   `json:"title"`
	Author       string   `json:"author"`
	Isbn         string   `json:"isbn"`
	Publisher    string   `json:"publisher"`
	PublishDate  string   `json:"publish_date"`
	Pages        string   `json:"pages"`
	Language     string   `json:"language"`
	Format       string   `json:"format"`
	Price        string   `json:"price"`
	Rating       float64  `json:"rating"`
	Availability string   `json:"availability"`
	CoverUrl     string   `json:"cover_url"`
	Url          string   `json:"url"`
	Site         string   `json:"site"`
	Subjects     []string `json:"subjects"`
}

type SearchResponse struct {
	Success    bool         `json:"success"`
	Message    string       `json:"message"`
	Results    []BookRecord `json:"results"`
	Query      string       `json:"query"`
	Site       string       `json:"site"`
	TotalCount int          `json:"total_count"`
}

type ExportResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	DownloadUrl string `json:"downloadUrl"`
	Filename    string `json:"filename"`
}

// Sites lists the retailers the backend knows how to search, in the order
// they should be presented.
var Sites = []string{
	"openlibrary",
	"amazon",
	"goodreads",
	"bookdepository",
	"barnesandnoble",
}

func KnownSite(site string) bool {
	for _, s := range Sites {
		if s == site {
			return true
		}
	}
	return false
}
