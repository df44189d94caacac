package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/bull/laptop-battle/internal/embedding"
	"github.com/bull/laptop-battle/internal/markdown"
	"github.com/bull/laptop-battle/internal/storage"
)

// KnowledgeIndex is the production Index: artifacts are split into
// header-delimited sections, embedded, and upserted into Qdrant under
// path-derived point IDs.
type KnowledgeIndex struct {
	embedder *embedding.Embedder
	store    *storage.QdrantStorage
	logger   *slog.Logger
}

// NewKnowledgeIndex wires an embedder and a Qdrant store into an Index.
func NewKnowledgeIndex(embedder *embedding.Embedder, store *storage.QdrantStorage, logger *slog.Logger) *KnowledgeIndex {
	if logger == nil {
		logger = slog.Default()
	}
	return &KnowledgeIndex{embedder: embedder, store: store, logger: logger}
}

// IndexArtifact reads one artifact file and upserts its artifact point and
// section points. Point IDs derive from the artifact path, so indexing the
// same file again updates in place.
func (k *KnowledgeIndex) IndexArtifact(ctx context.Context, path, subjectSlug, laptopName string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}

	fm := markdown.ParseFrontMatter(raw)
	sections, err := markdown.SplitSections(markdown.StripFrontMatter(raw))
	if err != nil {
		return fmt.Errorf("split artifact: %w", err)
	}

	texts := make([]string, len(sections))
	for i, sec := range sections {
		texts[i] = sec.Content
	}
	vectors, err := k.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed sections: %w", err)
	}

	artifactID := storage.ArtifactID(path)
	artifact := &storage.Artifact{
		ID:      artifactID,
		Content: string(raw),
		Meta: storage.ArtifactMeta{
			Path:      path,
			URL:       fm.URL,
			Subject:   subjectSlug,
			Laptop:    laptopName,
			Source:    fm.Source,
			ScrapedAt: fm.ScrapedAt,
			IndexedAt: time.Now().UTC(),
		},
	}
	if err := k.store.UpsertArtifact(ctx, artifact); err != nil {
		return fmt.Errorf("store artifact: %w", err)
	}

	points := make([]*storage.Section, len(sections))
	for i, sec := range sections {
		points[i] = &storage.Section{
			ID:         storage.SectionID(path, sec.Index),
			ParentID:   artifactID,
			Index:      sec.Index,
			HeaderPath: sec.HeaderPath,
			Content:    sec.Content,
			Path:       path,
			Subject:    subjectSlug,
			Embedding:  vectors[i],
		}
	}
	if err := k.store.UpsertSections(ctx, points); err != nil {
		return fmt.Errorf("store sections: %w", err)
	}

	k.logger.Debug("Indexed artifact", "path", path, "sections", len(points))
	return nil
}

// Retrieve embeds the query and returns the contents of the most similar
// sections for the subject, best first.
func (k *KnowledgeIndex) Retrieve(ctx context.Context, query, subjectSlug string, limit int) ([]string, error) {
	vectors, err := k.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := k.store.SearchSections(ctx, vectors[0], limit, subjectSlug)
	if err != nil {
		return nil, err
	}

	contexts := make([]string, 0, len(hits))
	for _, hit := range hits {
		contexts = append(contexts, hit.Section.Content)
	}
	return contexts, nil
}
