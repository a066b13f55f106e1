package dto

// CarDetail is the catalog view the booking form renders.
type CarDetail struct {
	ID        string `json:"id"`
	CityID    string `json:"kota_id"`
	Brand     string `json:"merk"`
	Model     string `json:"model"`
	Year      int    `json:"tahun"`
	Type      string `json:"tipe"`
	Capacity  int    `json:"kapasitas"`
	FuelType  string `json:"bahan_bakar"`
	DailyRate int64  `json:"tarif"`
	PhotoURL  string `json:"foto"`
}

type CityView struct {
	ID   string `json:"id"`
	Name string `json:"nama"`
}

type DeliveryMethodView struct {
	ID   string `json:"id"`
	Name string `json:"nama"`
	Fee  int64  `json:"biaya"`
}

type RentalOptionView struct {
	ID          string `json:"id"`
	Name        string `json:"nama"`
	FeePerDay   int64  `json:"biaya_per_hari"`
	Description string `json:"deskripsi"`
}

// TimeSlotView is one selectable pickup slot.
type TimeSlotView struct {
	Label string `json:"label"`
	Wire  string `json:"jam"`
}
