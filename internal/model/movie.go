package model

import "time"

// Movie certificates and statuses.
var (
    MovieCertificates = []string{"U", "UA", "A", "S"}
    MovieStatuses     = []string{"now_showing", "coming_soon", "archived"}
)

// Movie is an entry of the catalogue.  Movies created by an admin are
// approved immediately; movies created or edited by a theater owner stay
// hidden from public listings until an admin approves them.
type Movie struct {
    ID          uint64     `json:"id"`
    PublicID    string     `json:"publicId"`
    Title       string     `json:"title"`
    Description string     `json:"description"`
    DurationMin int        `json:"durationMin"`
    ReleaseDate *time.Time `json:"releaseDate,omitempty"`
    Languages   []string   `json:"languages"`
    Genres      []string   `json:"genres"`
    Cast        []string   `json:"cast"`
    Director    string     `json:"director"`
    Certificate string     `json:"certificate"`
    PosterURL   string     `json:"posterUrl"`
    TrailerURL  string     `json:"trailerUrl"`
    Status      string     `json:"status"`
    CreatedBy   uint64     `json:"createdBy"`
    CreatorRole string     `json:"creatorRole"`
    IsApproved  bool       `json:"isApproved"`
    CreatedAt   time.Time  `json:"createdAt"`
    UpdatedAt   time.Time  `json:"updatedAt"`
}
