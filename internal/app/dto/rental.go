package dto

// RentalPayload is the legacy wire format the mobile clients send and
// receive. Field names are part of the published contract and stay in
// Indonesian; dates are ISO calendar dates and the start time is
// zero-padded 24-hour "HH:MM:00".
type RentalPayload struct {
	CarID           string `json:"mobil_id"`
	CityID          string `json:"kota_id"`
	DeliveryID      string `json:"delivery_id"`
	StartDate       string `json:"tanggal_mulai"`
	EndDate         string `json:"tanggal_selesai"`
	StartTime       string `json:"jam_mulai"`
	RentalOption    string `json:"rental_option"`
	Status          string `json:"status"`
	TotalCost       int64  `json:"total_biaya"`
	DeliveryAddress string `json:"alamat_pengantaran"`
}

type StockCheckResult struct {
	Available bool   `json:"available"`
	Message   string `json:"message,omitempty"`
}

type TokenResult struct {
	Status      string `json:"status"`
	RedirectURL string `json:"redirect_url"`
	OrderID     string `json:"order_id"`
}

type RentalRecord struct {
	BookingCode string `json:"kode_penyewaan"`
}

type RentalCheckResult struct {
	Exists bool          `json:"exists"`
	Rental *RentalRecord `json:"rental,omitempty"`
}

type StoreResult struct {
	Status bool         `json:"status"`
	Data   RentalRecord `json:"data"`
}
