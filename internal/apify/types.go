package apify

// RunInput is the run specification sent to the TikTok scraper actor.
// Exactly one of Profiles or Hashtags is populated per run.
type RunInput struct {
	Profiles                      []string `json:"profiles,omitempty"`
	Hashtags                      []string `json:"hashtags,omitempty"`
	ProfileScrapeSections         []string `json:"profileScrapeSections,omitempty"`
	ProfileSorting                string   `json:"profileSorting,omitempty"`
	ResultsPerPage                int      `json:"resultsPerPage"`
	ExcludePinnedPosts            bool     `json:"excludePinnedPosts"`
	ShouldDownloadVideos          bool     `json:"shouldDownloadVideos"`
	ShouldDownloadCovers          bool     `json:"shouldDownloadCovers"`
	ShouldDownloadSubtitles       bool     `json:"shouldDownloadSubtitles"`
	ShouldDownloadSlideshowImages bool     `json:"shouldDownloadSlideshowImages"`
	ShouldDownloadAvatars         bool     `json:"shouldDownloadAvatars"`
	OldestPostDate                string   `json:"oldestPostDate,omitempty"`
	NewestPostDate                string   `json:"newestPostDate,omitempty"`
}

// Run is the actor run envelope returned by the runs endpoint.
type Run struct {
	ID               string `json:"id"`
	ActID            string `json:"actId"`
	Status           string `json:"status"`
	DefaultDatasetID string `json:"defaultDatasetId"`
}

// Run statuses considered terminal by the poller.
const (
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
	StatusAborted   = "ABORTED"
	StatusTimedOut  = "TIMED-OUT"
)

// AuthorMeta is the author metadata block attached to a scraped item.
type AuthorMeta struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ProfileURL     string `json:"profileUrl"`
	BioLink        string `json:"bioLink"`
	Signature      string `json:"signature"`
	Verified       bool   `json:"verified"`
	Avatar         string `json:"avatar"`
	PrivateAccount bool   `json:"privateAccount"`
	Region         string `json:"region"`
	Fans           int64  `json:"fans"`
	Following      int64  `json:"following"`
	Friends        int64  `json:"friends"`
	Heart          int64  `json:"heart"`
	Video          int64  `json:"video"`
}

// MusicMeta is the music metadata block attached to a scraped item.
type MusicMeta struct {
	MusicID       string `json:"musicId"`
	MusicName     string `json:"musicName"`
	MusicAuthor   string `json:"musicAuthor"`
	MusicOriginal bool   `json:"musicOriginal"`
}

// VideoMeta is the video metadata block attached to a scraped item.
type VideoMeta struct {
	Duration     int64  `json:"duration"`
	CoverURL     string `json:"coverUrl"`
	DownloadAddr string `json:"downloadAddr"`
}

// Hashtag is one entry of an item's hashtag list.
type Hashtag struct {
	Name string `json:"name"`
}

// Item is one video item from the actor run's default dataset.
type Item struct {
	ID            string     `json:"id"`
	Text          string     `json:"text"`
	TextLanguage  string     `json:"textLanguage"`
	CreateTime    int64      `json:"createTime"`
	CreateTimeISO string     `json:"createTimeISO"`
	IsAd          bool       `json:"isAd"`
	IsPinned      bool       `json:"isPinned"`
	IsSlideshow   bool       `json:"isSlideshow"`
	IsSponsored   bool       `json:"isSponsored"`
	WebVideoURL   string     `json:"webVideoUrl"`
	DiggCount     int64      `json:"diggCount"`
	ShareCount    int64      `json:"shareCount"`
	PlayCount     int64      `json:"playCount"`
	CollectCount  int64      `json:"collectCount"`
	CommentCount  int64      `json:"commentCount"`
	Hashtags      []Hashtag  `json:"hashtags"`
	AuthorMeta    AuthorMeta `json:"authorMeta"`
	MusicMeta     MusicMeta  `json:"musicMeta"`
	VideoMeta     VideoMeta  `json:"videoMeta"`
	Input         string     `json:"input"`
}
