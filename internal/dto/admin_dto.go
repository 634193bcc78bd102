package dto

// OverviewResponse carries the admin dashboard counters.
type OverviewResponse struct {
	Students int64 `json:"students"`
	Faculty  int64 `json:"faculty"`
	Projects int64 `json:"projects"`
	Tasks    int64 `json:"tasks"`
}
