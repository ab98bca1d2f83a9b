package rest

// purchaseRequest is the body of POST /api/v1/ownerships
type purchaseRequest struct {
	TxHash         string  `json:"tx_hash" binding:"required"`
	OwnerAddress   string  `json:"owner_address" binding:"required"`
	ButtonColor    *string `json:"button_color"`
	ButtonEmoji    *string `json:"button_emoji"`
	ButtonImageURL *string `json:"button_image_url"`
}

// setLinkRequest is the body of PATCH /api/v1/ownerships/:id/link
type setLinkRequest struct {
	OwnerAddress string  `json:"owner_address" binding:"required"`
	URL          string  `json:"url" binding:"required"`
	Username     *string `json:"username"`
	PfpURL       *string `json:"pfp_url"`
}

// setVisualsRequest is the body of PATCH /api/v1/ownerships/:id/visuals
type setVisualsRequest struct {
	OwnerAddress   string  `json:"owner_address" binding:"required"`
	ButtonColor    *string `json:"button_color"`
	ButtonEmoji    *string `json:"button_emoji"`
	ButtonImageURL *string `json:"button_image_url"`
}

// submitLinkRequest is the body of POST /api/v1/links (legacy pay-per-link)
type submitLinkRequest struct {
	TxHash      string  `json:"tx_hash" binding:"required"`
	URL         string  `json:"url" binding:"required"`
	SubmittedBy string  `json:"submitted_by" binding:"required"`
	Username    *string `json:"username"`
	PfpURL      *string `json:"pfp_url"`
}

// clickRequest is the body of POST /api/v1/clicks
type clickRequest struct {
	ClickedBy       *string `json:"clicked_by"`
	ClickerUsername *string `json:"clicker_username"`
	ClickerPfpURL   *string `json:"clicker_pfp_url"`
}

// countResponse is the body of GET /api/v1/clicks/count
type countResponse struct {
	Count int64 `json:"count"`
}
