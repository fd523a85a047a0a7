package mongodb

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"sorter_server/core/port/out"
	"sorter_server/core/service/classification"
)

const (
	collectionEvaluations = "evaluation_reports"

	reportCompressionThreshold = 512 // bytes
)

// ReportAdapter implements out.ReportRepository using MongoDB.
type ReportAdapter struct {
	collection *mongo.Collection
}

var _ out.ReportRepository = (*ReportAdapter)(nil)

// NewReportAdapter creates a report adapter on db.
func NewReportAdapter(db *mongo.Database) *ReportAdapter {
	return &ReportAdapter{collection: db.Collection(collectionEvaluations)}
}

// EnsureIndexes creates the indexes used by Latest and List.
func (a *ReportAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "model_version", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}
	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// reportDocument is the stored form. Content holds the report JSON, gzipped past the threshold.
type reportDocument struct {
	ID           string    `bson:"id"`
	ModelVersion string    `bson:"model_version"`
	Trigger      string    `bson:"trigger"`
	Accuracy     float64   `bson:"accuracy"`
	MacroF1      float64   `bson:"macro_f1"`
	Content      []byte    `bson:"content"`
	IsCompressed bool      `bson:"is_compressed"`
	OriginalSize int64     `bson:"original_size"`
	CreatedAt    time.Time `bson:"created_at"`
}

// Save upserts rec by id.
func (a *ReportAdapter) Save(ctx context.Context, rec *out.EvaluationRecord) error {
	doc, err := toDocument(rec)
	if err != nil {
		return fmt.Errorf("failed to convert report to document: %w", err)
	}
	_, err = a.collection.ReplaceOne(ctx, bson.M{"id": rec.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

func (a *ReportAdapter) Latest(ctx context.Context, modelVersion string) (*out.EvaluationRecord, error) {
	var doc reportDocument
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	err := a.collection.FindOne(ctx, bson.M{"model_version": modelVersion}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest report: %w", err)
	}
	return fromDocument(&doc)
}

func (a *ReportAdapter) List(ctx context.Context, limit int) ([]*out.EvaluationRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := a.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []reportDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode reports: %w", err)
	}

	recs := make([]*out.EvaluationRecord, 0, len(docs))
	for i := range docs {
		rec, err := fromDocument(&docs[i])
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func toDocument(rec *out.EvaluationRecord) (*reportDocument, error) {
	if rec == nil || rec.Report == nil {
		return nil, errors.New("report is required")
	}
	content, err := json.Marshal(rec.Report)
	if err != nil {
		return nil, err
	}
	doc := &reportDocument{
		ID:           rec.ID,
		ModelVersion: rec.ModelVersion,
		Trigger:      rec.Trigger,
		Accuracy:     rec.Report.Accuracy,
		MacroF1:      rec.Report.MacroF1,
		Content:      content,
		OriginalSize: int64(len(content)),
		CreatedAt:    rec.CreatedAt,
	}
	if len(content) > reportCompressionThreshold {
		compressed, err := compress(content)
		if err != nil {
			return nil, err
		}
		doc.Content = compressed
		doc.IsCompressed = true
	}
	return doc, nil
}

func fromDocument(doc *reportDocument) (*out.EvaluationRecord, error) {
	content := doc.Content
	if doc.IsCompressed {
		var err error
		if content, err = decompress(content); err != nil {
			return nil, fmt.Errorf("failed to decompress report %s: %w", doc.ID, err)
		}
	}
	var report classification.Report
	if err := json.Unmarshal(content, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", doc.ID, err)
	}
	return &out.EvaluationRecord{
		ID:           doc.ID,
		ModelVersion: doc.ModelVersion,
		Trigger:      doc.Trigger,
		Report:       &report,
		CreatedAt:    doc.CreatedAt,
	}, nil
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gz.Close()
	return io.ReadAll(gz)
}
