package models

// All lists every model for migrations
func All() []any {
	return []any{
		&User{},
		&SoilAnalysis{},
		&Order{},
		&Payment{},
		&Product{},
		&LabReport{},
	}
}
