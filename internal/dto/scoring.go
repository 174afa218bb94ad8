package dto

// ClassifyDealRequest assigns a training label to a CRM deal
type ClassifyDealRequest struct {
	Label string `json:"label" validate:"required,oneof=ideal less_ideal"`
}

// StartTrainingRequest represents the request to start a training run
type StartTrainingRequest struct {
	// SnapshotEnabled controls whether the trained model is also written
	// to object storage.
	SnapshotEnabled *bool `json:"snapshotEnabled,omitempty"`
}
