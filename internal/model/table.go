package model

import "time"

// Table 場地平面圖上可訂位的桌位
type Table struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Capacity  int       `json:"capacity" db:"capacity"`
	Category  string    `json:"category" db:"category"`
	Price     float64   `json:"price" db:"price"`
	Position  int       `json:"position" db:"position"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Label is the human-readable selection shown to guests and staff.
func (t *Table) Label() string {
	if t.Category == "" {
		return t.Name
	}
	return t.Name + " (" + t.Category + ")"
}

// TableAvailability 單一活動下某桌位的可訂狀態
type TableAvailability struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Capacity int     `json:"capacity"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Position int     `json:"position"`
	IsBooked bool    `json:"isBooked"`
}
