package pocketcasts

// loginRequest is the payload for POST /user/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Scope    string `json:"scope"`
}

// loginResponse is returned from POST /user/login.
type loginResponse struct {
	Token string `json:"token"`
	UUID  string `json:"uuid"`
	Email string `json:"email"`
}

// upNextRequest is the payload for POST /up_next/list.
type upNextRequest struct {
	Version int `json:"version"`
}

// episodeRecord is one entry in the Up Next response. Order is implied
// by list position, not carried in the payload.
type episodeRecord struct {
	UUID    string `json:"uuid"`
	URL     string `json:"url"`
	Title   string `json:"title"`
	Podcast string `json:"podcast"`
}

// upNextResponse is returned from POST /up_next/list.
type upNextResponse struct {
	Episodes []episodeRecord `json:"episodes"`
}

// podcastListRequest is the payload for POST /user/podcast/list.
type podcastListRequest struct {
	V int `json:"v"`
}
