package models

// SelectedInclusion, sepete eklenirken seçilen ek ürünün kopyasını temsil eder.
type SelectedInclusion struct {
	InclusionID int    `json:"inclusion_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price"`
}

// CartLine, sepetteki bir satırı temsil eder. Fiyat, ürünün sepete
// eklendiği andaki birim fiyatın kopyasıdır.
type CartLine struct {
	ProductID          int                 `json:"product_id"`
	Name               string              `json:"name"`
	UnitPrice          int64               `json:"unit_price"`
	Quantity           int                 `json:"quantity"`
	Image              string              `json:"image"`
	SelectedInclusions []SelectedInclusion `json:"selected_inclusions,omitempty"`
}

// Cart, sepetin anlık görüntüsünü temsil eder. Total her zaman
// satırlardan yeniden hesaplanır, asla ayrıca saklanmaz.
type Cart struct {
	Lines []CartLine `json:"lines"`
	Total int64      `json:"total"`
}
