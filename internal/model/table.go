package model

import "time"

type Table struct {
	ID        string    `json:"id" db:"id"`
	Number    int       `json:"number" db:"number"`
	Name      *string   `json:"name,omitempty" db:"name"`
	Seats     int       `json:"seats" db:"seats"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
