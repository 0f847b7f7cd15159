package domain

// Product is a catalog item as served by the product catalog. The state
// containers treat it as an immutable value and never write to it.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Unit        string   `json:"unit"`
	ImageURL    string   `json:"image_url"`
	Category    string   `json:"category"`
	Stock       *int     `json:"stock,omitempty"`
	ExtraImages []string `json:"extra_images,omitempty"`
	VideoURL    string   `json:"video_url,omitempty"`
}

// ServiceOption is an optional paid add-on attachable to a cart line,
// e.g. pre-washed vegetables. NameFr carries the second display language.
type ServiceOption struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	NameFr string  `json:"name_fr"`
	Price  float64 `json:"price"`
}
