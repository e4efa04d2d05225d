package queue

// TypeUploadSweep removes orphaned upload files left behind by crashed or
// abandoned requests; the per-request lifecycle manager is the primary
// cleanup path, the sweep is the backstop.
const TypeUploadSweep = "uploads:sweep"

type UploadSweepPayload struct {
	Dir           string `json:"dir"`
	MaxAgeSeconds int64  `json:"max_age_seconds"`
}
