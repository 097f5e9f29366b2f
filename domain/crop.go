package domain

// Crop is a labeled reference entity naming something that can be grown
// and harvested.
type Crop struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Affiliation is a labeled reference entity grouping gardens under a
// sponsoring organization.
type Affiliation struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
