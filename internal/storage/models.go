package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Artifact is a full markdown artifact stored in Qdrant. Artifact points
// carry no embedding vector; they exist for full-content retrieval and
// per-subject bookkeeping.
type Artifact struct {
	ID      string // deterministic UUID derived from Meta.Path
	Content string // full markdown content, front matter included
	Meta    ArtifactMeta
}

// ArtifactMeta is the filterable payload stored with an artifact.
type ArtifactMeta struct {
	Path      string    // artifact file path, the content address
	URL       string    // source post URL
	Subject   string    // subject slug, the retrieval filter key
	Laptop    string    // human-readable subject name
	Source    string    // content source, "reddit"
	ScrapedAt time.Time // when the post was fetched
	IndexedAt time.Time // when this version entered the index
}

// Section is one embedded slice of an artifact, the unit of similarity
// search.
type Section struct {
	ID         string    // deterministic UUID derived from path + index
	ParentID   string    // owning Artifact.ID
	Index      int       // position within the artifact
	HeaderPath string    // heading hierarchy for context
	Content    string    // section text
	Path       string    // parent artifact path (for filtering)
	Subject    string    // subject slug (for filtering)
	Embedding  []float32 // VectorDimension-sized vector
}

// ScoredSection is a search hit with its similarity score.
type ScoredSection struct {
	Section *Section
	Score   float64
}

// DefaultCollection is the Qdrant collection holding all subjects.
const DefaultCollection = "laptop_knowledge"

// VectorDimension matches embedding.Dimension (text-embedding-3-small).
const VectorDimension = 1536

// ArtifactID derives the stable point ID for an artifact path. Re-indexing
// the same path always hits the same point, making indexing an upsert.
func ArtifactID(path string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(path)).String()
}

// SectionID derives the stable point ID for section i of an artifact path.
func SectionID(path string, i int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, fmt.Appendf(nil, "%s#%d", path, i)).String()
}
