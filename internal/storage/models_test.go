package storage

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestArtifactID_Deterministic(t *testing.T) {
	path := "knowledge/reddit/lenovo_legion_y540/my-post.md"

	first := ArtifactID(path)
	second := ArtifactID(path)
	assert.Equal(t, first, second, "same path must map to the same point")

	other := ArtifactID("knowledge/reddit/lenovo_legion_y540/other-post.md")
	assert.NotEqual(t, first, other)

	_, err := uuid.Parse(first)
	assert.NoError(t, err, "point IDs must be valid UUIDs")
}

func TestSectionID_DistinctPerIndex(t *testing.T) {
	path := "knowledge/reddit/lenovo_legion_y540/my-post.md"

	assert.Equal(t, SectionID(path, 0), SectionID(path, 0))
	assert.NotEqual(t, SectionID(path, 0), SectionID(path, 1))
	assert.NotEqual(t, SectionID(path, 0), ArtifactID(path))
}
