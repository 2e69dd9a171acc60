package serpapi

// OrganicResult is one entry of the organic_results array.
type OrganicResult struct {
	Source                  string   `json:"source"`
	Title                   string   `json:"title"`
	Snippet                 string   `json:"snippet"`
	Link                    string   `json:"link"`
	Thumbnail               string   `json:"thumbnail"`
	VideoLink               string   `json:"video_link"`
	SnippetHighlightedWords []string `json:"snippet_highlighted_words"`
	DisplayedLink           string   `json:"displayed_link"`
}

// ImageItem is one entry of the images_results array. RelatedContentLink is
// the opaque "see more" URL SerpAPI attaches to some image hits.
type ImageItem struct {
	Source             string `json:"source"`
	Title              string `json:"title"`
	Link               string `json:"link"`
	Thumbnail          string `json:"thumbnail"`
	RelatedContentLink string `json:"serpapi_related_content_link"`
}

// RelatedItem is one entry of the related_content array.
type RelatedItem struct {
	Source    string `json:"source"`
	Link      string `json:"link"`
	Thumbnail string `json:"thumbnail"`
	Title     string `json:"title"`
}

// Pagination carries the opaque next-page URL. Pagination stops when the
// response has no serpapi_pagination block or an empty next link.
type Pagination struct {
	Next string `json:"next"`
}

// SearchResponse is the subset of a SerpAPI response the pipeline consumes.
// Related-content responses decode into the same shape: they carry either a
// related_content or an images_results container, and sometimes a further
// see-more link.
type SearchResponse struct {
	OrganicResults []OrganicResult `json:"organic_results"`
	ImagesResults  []ImageItem     `json:"images_results"`
	RelatedContent []RelatedItem   `json:"related_content"`
	Pagination     *Pagination     `json:"serpapi_pagination"`
	SeeMoreLink    string          `json:"serpapi_see_more_link"`
}
