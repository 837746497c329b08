package patients

// SeedPatients is the list written when no patient list is stored
func SeedPatients() []Patient {
	return []Patient{
		{
			ID:         "P101",
			Name:       "John Doe",
			Age:        45,
			Condition:  "Pneumonia",
			Status:     StatusStable,
			LastUpdate: "1h ago",
			Vitals:     Vitals{HeartRate: 75, BloodPressure: "120/80", Temperature: 37.0, OxygenSaturation: 97, RespiratoryRate: 18},
		},
		{
			ID:         "P102",
			Name:       "Jane Smith",
			Age:        62,
			Condition:  "Heart Failure",
			Status:     StatusCritical,
			LastUpdate: "15m ago",
			Vitals:     Vitals{HeartRate: 95, BloodPressure: "100/60", Temperature: 36.5, OxygenSaturation: 92, RespiratoryRate: 24},
		},
		{
			ID:         "P103",
			Name:       "Robert Johnson",
			Age:        50,
			Condition:  "Sepsis",
			Status:     StatusImproving,
			LastUpdate: "30m ago",
			Vitals:     Vitals{HeartRate: 88, BloodPressure: "110/70", Temperature: 38.2, OxygenSaturation: 95, RespiratoryRate: 20},
		},
		{
			ID:         "P104",
			Name:       "Emily White",
			Age:        33,
			Condition:  "Asthma Exacerbation",
			Status:     StatusStable,
			LastUpdate: "2h ago",
			Vitals:     Vitals{HeartRate: 80, BloodPressure: "115/75", Temperature: 36.8, OxygenSaturation: 99, RespiratoryRate: 16},
		},
	}
}
