package transport

type LoginRequest struct {
	Email string `json:"email"`
	TTL   int    `json:"ttl_seconds"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
	TTL       int    `json:"ttl_seconds"`
}

type ActivateRequest struct {
	Token string `json:"token"`
}

type GardenRequest struct {
	Title   string `json:"title"`
	Address string `json:"address"`
}

type PlotRequest struct {
	GardenID string   `json:"garden_id"`
	Title    string   `json:"title"`
	CropIDs  []string `json:"crop_ids"`
}

type OrderRequest struct {
	PlotID    string   `json:"plot_id"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	CropIDs   []string `json:"crop_ids"`
}

type PickRequest struct {
	CropIDs []string `json:"crop_ids"`
}

type AssignRequest struct {
	Emails []string `json:"emails"`
}

type CropsRequest struct {
	CropIDs []string `json:"crop_ids"`
}

type InviteRequest struct {
	Emails []string `json:"emails"`
}
