package dto

type TankerResponse struct {
	TankerID       int      `json:"tanker_id"`
	Name           string   `json:"name"`
	Registration   string   `json:"registration"`
	CapacityLiters float64  `json:"capacity_liters"`
	DeliveryType   string   `json:"delivery_type"`
	Status         string   `json:"status"`
	Is3PL          bool     `json:"is_3pl"`
	FuelBlends     []string `json:"fuel_blends"`
	Emirates       []string `json:"emirates"`
}

type ListTankersResponse struct {
	Tankers []TankerResponse `json:"tankers"`
	Count   int              `json:"count"`
}

type DriverResponse struct {
	DriverID   int    `json:"driver_id"`
	Name       string `json:"name"`
	EmployeeID string `json:"employee_id,omitempty"`
	DriverType string `json:"driver_type"`
}
