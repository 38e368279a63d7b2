package testutil

// FixedIDGenerator returns the same job id every time.
//
// Migration jobs normally get a random uuid; tests swap in this generator so
// job documents compare byte-for-byte against golden output.
//
// Thread-safety: FixedIDGenerator is stateless and safe for concurrent use.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a fixed id generator.
//
// If id is empty, Generate() returns "test-job-default".
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-job-default"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed id.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}
