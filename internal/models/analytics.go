package models

type CategoryCount struct {
	Category string `json:"category" bson:"_id"`
	Count    int64  `json:"count" bson:"count"`
}

// PlatformStats backs the admin analytics dashboard.
type PlatformStats struct {
	VehiclesByStatus     map[string]int64 `json:"vehiclesByStatus"`
	TotalVehicles        int64            `json:"totalVehicles"`
	TotalUsers           int64            `json:"totalUsers"`
	TotalAdmins          int64            `json:"totalAdmins"`
	TotalRatings         int64            `json:"totalRatings"`
	TotalViews           int64            `json:"totalViews"`
	AverageApprovedPrice float64          `json:"averageApprovedPrice"`
	TopCategories        []CategoryCount  `json:"topCategories"`
}

type DescriptionRequest struct {
	Brand     string   `json:"brand" validate:"notblank"`
	Model     string   `json:"model" validate:"notblank"`
	Year      int      `json:"year" validate:"required,gte=1900,maxyear"`
	Mileage   int      `json:"mileage" validate:"gte=0"`
	Condition string   `json:"condition" validate:"omitempty,oneof=new used certified"`
	FuelType  string   `json:"fuelType"`
	Features  []string `json:"features" validate:"max=20"`
}
