package models

type Vehicle struct {
	BaseModelWithDeleted
	OwnerID  string   `gorm:"not null;index" json:"owner_id"`
	Plate    string   `gorm:"not null;uniqueIndex" json:"plate"`
	Brand    string   `gorm:"not null" json:"brand"`
	Model    string   `gorm:"not null" json:"model"`
	Year     int      `gorm:"not null" json:"year"`
	Mileage  int      `json:"mileage"`
	FuelType FuelType `gorm:"type:varchar(20)" json:"fuel_type"`
}
