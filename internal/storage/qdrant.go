// Package storage is the knowledge index: artifact and section points in a
// single Qdrant collection, filterable by subject slug.
package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/qdrant/go-client/qdrant"
)

// QdrantStorage wraps the Qdrant client with connection management, health
// checking, and the laptop-knowledge schema.
type QdrantStorage struct {
	client     *qdrant.Client
	collection string
}

// NewQdrantStorage connects to Qdrant over gRPC and verifies health with
// retry before returning. An empty collection selects DefaultCollection.
func NewQdrantStorage(host string, port int, collection string) (*QdrantStorage, error) {
	if collection == "" {
		collection = DefaultCollection
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	s := &QdrantStorage{client: client, collection: collection}

	if err := s.healthCheckWithRetry(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrQdrantUnreachable, err)
	}
	return s, nil
}

func (s *QdrantStorage) healthCheckWithRetry(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		return s.Health(ctx)
	}, backoff.WithContext(b, ctx))
}

// Health performs a single health check against Qdrant.
func (s *QdrantStorage) Health(ctx context.Context) error {
	result, err := s.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if result == nil || result.Title == "" {
		return fmt.Errorf("health check returned invalid response")
	}
	return nil
}

// EnsureCollection creates the collection and its payload indexes if absent.
// Idempotent.
func (s *QdrantStorage) EnsureCollection(ctx context.Context) error {
	collections, err := s.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	for _, name := range collections {
		if name == s.collection {
			return nil
		}
	}

	// Named vectors let artifact points (no vector) and section points
	// (with "content" vector) share one collection.
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfigMap(map[string]*qdrant.VectorParams{
			"content": {
				Size:     VectorDimension,
				Distance: qdrant.Distance_Cosine,
			},
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	return s.createPayloadIndexes(ctx)
}

// createPayloadIndexes indexes the filterable fields. Without these, subject
// filtering degrades to a full scan.
func (s *QdrantStorage) createPayloadIndexes(ctx context.Context) error {
	fields := []string{
		"type",      // "artifact" vs "section"
		"subject",   // subject slug filter
		"path",      // artifact path lookup
		"parent_id", // section -> artifact
	}

	for _, field := range fields {
		_, err := s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: s.collection,
			FieldName:      field,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		})
		if err != nil {
			return fmt.Errorf("create index for field %s: %w", field, err)
		}
	}
	return nil
}

// ClearCollection drops and recreates the collection.
func (s *QdrantStorage) ClearCollection(ctx context.Context) error {
	if err := s.client.DeleteCollection(ctx, s.collection); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return s.EnsureCollection(ctx)
}

// Close closes the underlying gRPC connection.
func (s *QdrantStorage) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

func (s *QdrantStorage) upsertWithRetry(ctx context.Context, points []*qdrant.PointStruct) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: s.collection,
			Points:         points,
		})
		return err
	}, backoff.WithContext(b, ctx))
}

// UpsertArtifact stores an artifact point. Because the ID is derived from
// the artifact path, re-indexing replaces rather than duplicates.
func (s *QdrantStorage) UpsertArtifact(ctx context.Context, a *Artifact) error {
	payload := map[string]any{
		"type":       "artifact",
		"content":    a.Content,
		"path":       a.Meta.Path,
		"url":        a.Meta.URL,
		"subject":    a.Meta.Subject,
		"laptop":     a.Meta.Laptop,
		"source":     a.Meta.Source,
		"scraped_at": a.Meta.ScrapedAt.UTC().Format(time.RFC3339),
		"indexed_at": a.Meta.IndexedAt.UTC().Format(time.RFC3339),
	}

	point := &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(a.ID),
		Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{}),
		Payload: qdrant.NewValueMap(payload),
	}

	return s.upsertWithRetry(ctx, []*qdrant.PointStruct{point})
}

// UpsertSections stores section points with embeddings, batched in groups of
// 100. Section IDs are path-derived, so re-indexing upserts in place.
func (s *QdrantStorage) UpsertSections(ctx context.Context, sections []*Section) error {
	if len(sections) == 0 {
		return nil
	}

	for i, sec := range sections {
		if len(sec.Embedding) != VectorDimension {
			return fmt.Errorf("%w: section %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(sec.Embedding), VectorDimension)
		}
	}

	const batchSize = 100
	for i := 0; i < len(sections); i += batchSize {
		end := min(i+batchSize, len(sections))
		batch := sections[i:end]

		points := make([]*qdrant.PointStruct, len(batch))
		for j, sec := range batch {
			points[j] = &qdrant.PointStruct{
				Id: qdrant.NewIDUUID(sec.ID),
				Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{
					"content": qdrant.NewVector(sec.Embedding...),
				}),
				Payload: qdrant.NewValueMap(map[string]any{
					"type":        "section",
					"parent_id":   sec.ParentID,
					"index":       sec.Index,
					"header_path": sec.HeaderPath,
					"content":     sec.Content,
					"path":        sec.Path,
					"subject":     sec.Subject,
				}),
			}
		}

		if err := s.upsertWithRetry(ctx, points); err != nil {
			return fmt.Errorf("upsert batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// SearchSections performs similarity search over section points, restricted
// to one subject when subjectSlug is non-empty. Results are ordered by score
// descending.
func (s *QdrantStorage) SearchSections(ctx context.Context, embedding []float32, limit int, subjectSlug string) ([]*ScoredSection, error) {
	if len(embedding) != VectorDimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(embedding), VectorDimension)
	}

	must := []*qdrant.Condition{
		qdrant.NewMatch("type", "section"),
	}
	if subjectSlug != "" {
		must = append(must, qdrant.NewMatch("subject", subjectSlug))
	}

	vectorName := "content"
	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(embedding...),
		Using:          &vectorName,
		Filter:         &qdrant.Filter{Must: must},
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(false),
	})
	if err != nil {
		return nil, fmt.Errorf("search sections: %w", err)
	}

	hits := make([]*ScoredSection, 0, len(results))
	for _, result := range results {
		payload := result.Payload
		hits = append(hits, &ScoredSection{
			Section: &Section{
				ID:         result.Id.GetUuid(),
				ParentID:   payload["parent_id"].GetStringValue(),
				Index:      int(payload["index"].GetIntegerValue()),
				HeaderPath: payload["header_path"].GetStringValue(),
				Content:    payload["content"].GetStringValue(),
				Path:       payload["path"].GetStringValue(),
				Subject:    payload["subject"].GetStringValue(),
			},
			Score: float64(result.Score),
		})
	}
	return hits, nil
}

// GetArtifactByPath retrieves an artifact point by its path. Returns
// ErrArtifactNotFound when absent.
func (s *QdrantStorage) GetArtifactByPath(ctx context.Context, path string) (*Artifact, error) {
	results, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.collection,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("type", "artifact"),
				qdrant.NewMatch("path", path),
			},
		},
		Limit:       qdrant.PtrOf(uint32(1)),
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("query artifact by path: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrArtifactNotFound
	}

	point := results[0]
	payload := point.Payload

	scrapedAt, _ := time.Parse(time.RFC3339, payload["scraped_at"].GetStringValue())
	indexedAt, _ := time.Parse(time.RFC3339, payload["indexed_at"].GetStringValue())

	return &Artifact{
		ID:      point.Id.GetUuid(),
		Content: payload["content"].GetStringValue(),
		Meta: ArtifactMeta{
			Path:      payload["path"].GetStringValue(),
			URL:       payload["url"].GetStringValue(),
			Subject:   payload["subject"].GetStringValue(),
			Laptop:    payload["laptop"].GetStringValue(),
			Source:    payload["source"].GetStringValue(),
			ScrapedAt: scrapedAt,
			IndexedAt: indexedAt,
		},
	}, nil
}

// ListArtifactPaths returns every artifact path indexed for a subject,
// sorted. An empty slug lists all subjects.
func (s *QdrantStorage) ListArtifactPaths(ctx context.Context, subjectSlug string) ([]string, error) {
	must := []*qdrant.Condition{
		qdrant.NewMatch("type", "artifact"),
	}
	if subjectSlug != "" {
		must = append(must, qdrant.NewMatch("subject", subjectSlug))
	}

	var paths []string
	var offset *qdrant.PointId
	batchSize := uint32(100)

	for {
		results, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: s.collection,
			Filter:         &qdrant.Filter{Must: must},
			Limit:          qdrant.PtrOf(batchSize),
			Offset:         offset,
			WithPayload:    qdrant.NewWithPayloadInclude("path"),
		})
		if err != nil {
			return nil, fmt.Errorf("scroll artifacts: %w", err)
		}

		for _, result := range results {
			if path := result.Payload["path"].GetStringValue(); path != "" {
				paths = append(paths, path)
			}
		}

		if uint32(len(results)) < batchSize {
			break
		}
		offset = results[len(results)-1].Id
	}

	sort.Strings(paths)
	return paths, nil
}

// CollectionInfo contains collection statistics.
type CollectionInfo struct {
	PointsCount uint64
}

// GetCollectionInfo retrieves total point count, for health reporting.
func (s *QdrantStorage) GetCollectionInfo(ctx context.Context) (*CollectionInfo, error) {
	collection, err := s.client.GetCollectionInfo(ctx, s.collection)
	if err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}
	return &CollectionInfo{PointsCount: collection.GetPointsCount()}, nil
}
