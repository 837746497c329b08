// Package catalog holds the ML model cards and the data sources with their
// simulated sync.
package catalog

// ModelStatus is the lifecycle state shown on a model card
type ModelStatus string

const (
	ModelActive   ModelStatus = "active"
	ModelTraining ModelStatus = "training"
	ModelError    ModelStatus = "error"
	ModelInactive ModelStatus = "inactive"
)

// Model is an ML model card
type Model struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Accuracy    int         `json:"accuracy"`
	Status      ModelStatus `json:"status"`
	LastRun     string      `json:"lastRun"`
	Predictions int         `json:"predictions"`
	Alerts      int         `json:"alerts"`
}

// Performance is one row of the model performance table
type Performance struct {
	Name      string  `json:"name"`
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// DashboardModels are the two cards shown on the dashboard home
func DashboardModels() []Model {
	return []Model{
		{
			ID:          "sepsis-pred-v2",
			Name:        "Sepsis Prediction",
			Description: "Early detection of sepsis using vital signs and lab values",
			Accuracy:    92,
			Status:      ModelActive,
			LastRun:     "2 hours ago",
			Predictions: 128,
			Alerts:      3,
		},
		{
			ID:          "resp-failure",
			Name:        "Respiratory Failure",
			Description: "Predicts respiratory failure within 24 hours",
			Accuracy:    89,
			Status:      ModelActive,
			LastRun:     "1 hour ago",
			Predictions: 95,
			Alerts:      1,
		},
	}
}

// Models is the full model registry view
func Models() []Model {
	return []Model{
		{ID: "sepsis-prediction", Name: "Sepsis Prediction", Accuracy: 95, Status: ModelActive, LastRun: "2h ago"},
		{ID: "mortality-risk", Name: "Mortality Risk", Accuracy: 88, Status: ModelTraining, LastRun: "1d ago"},
		{ID: "length-of-stay", Name: "Length of Stay", Accuracy: 92, Status: ModelActive, LastRun: "5h ago"},
	}
}

// ModelPerformance returns the evaluation table of the deployed models
func ModelPerformance() []Performance {
	return []Performance{
		{Name: "Sepsis Prediction", Accuracy: 0.92, Precision: 0.89, Recall: 0.94, F1: 0.91},
		{Name: "Respiratory Failure", Accuracy: 0.89, Precision: 0.86, Recall: 0.9, F1: 0.88},
		{Name: "Mortality Risk", Accuracy: 0.88, Precision: 0.84, Recall: 0.87, F1: 0.85},
		{Name: "Length of Stay", Accuracy: 0.92, Precision: 0.9, Recall: 0.91, F1: 0.9},
	}
}
