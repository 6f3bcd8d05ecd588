package models

type SiteStats struct {
	TotalVisits        int64  `json:"totalVisits"`
	APICalls           int64  `json:"apiCalls"`
	VideosFetched      int64  `json:"videosFetched"`
	DownloadsStarted   int64  `json:"downloadsStarted"`
	DownloadsCompleted int64  `json:"downloadsCompleted"`
	LastUpdated        string `json:"lastUpdated"`
}

type AdminLoginRequest struct {
	Password string `json:"password"`
}

type AdminToken struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}
