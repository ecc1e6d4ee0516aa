package vaccine

// Vaccine is one selectable vaccine. Built-in vaccines have a nil
// CreatedByUserID and are visible to everyone; user-created ones are
// visible to their creator only.
type Vaccine struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Abbreviation    *string `json:"abbreviation"`
	CodeID          *int    `json:"code_id"`
	CreatedByUserID *int64  `json:"-"`
}

// NewVaccine carries the fields accepted when a user adds a vaccine.
type NewVaccine struct {
	Name            string
	Abbreviation    *string
	CreatedByUserID int64
}
