package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/maltedev/storefront-scraper/internal/models"
)

var (
	ErrNotFound         = models.ErrNotFound
	ErrMissingProductID = errors.New("enrichment has no product id")
)

const (
	productsCollection    = "products"
	enrichmentsCollection = "product_enrichments"
	countersCollection    = "counters"
)

// Store holds a MongoDB connection shared by the product and enrichment
// repositories.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *slog.Logger
}

func NewStore(ctx context.Context, uri, database string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	return &Store{
		client: client,
		db:     client.Database(database),
		logger: logger.With("component", "mongo_storage"),
	}, nil
}

// EnsureIndexes creates the unique SKU index and the latest-enrichment index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(productsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "sku", Value: 1}},
		Options: options.Index().SetUnique(true).
			SetPartialFilterExpression(bson.M{"sku": bson.M{"$type": "string"}}),
	})
	if err != nil {
		return fmt.Errorf("failed to create sku index: %w", err)
	}

	_, err = s.db.Collection(enrichmentsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "product_id", Value: 1}, {Key: "enriched_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create enrichment index: %w", err)
	}

	return nil
}

func (s *Store) Close(ctx context.Context) error {
	s.logger.Info("mongodb storage closing")
	return s.client.Disconnect(ctx)
}

// nextID hands out sequential integer ids per collection so documents keep
// the same id shape as the Postgres backend.
func (s *Store) nextID(ctx context.Context, name string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.db.Collection(countersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s id: %w", name, err)
	}
	return counter.Seq, nil
}

func (s *Store) Products() *ProductRepository {
	return &ProductRepository{store: s, coll: s.db.Collection(productsCollection)}
}

func (s *Store) Enrichments() *EnrichmentRepository {
	return &EnrichmentRepository{store: s, coll: s.db.Collection(enrichmentsCollection)}
}

func (s *Store) Catalog() *Catalog {
	return &Catalog{products: s.Products(), enrichments: s.Enrichments()}
}

// ProductRepository upserts products by SKU.
type ProductRepository struct {
	store *Store
	coll  *mongo.Collection
}

func (r *ProductRepository) Save(ctx context.Context, p *models.Product) (*models.Product, error) {
	now := time.Now().UTC()
	doc := newProductDoc(p)
	doc.UpdatedAt = now
	doc.CreatedAt = now

	if p.SKU != "" {
		var existing productDoc
		err := r.coll.FindOne(ctx, bson.M{"sku": p.SKU}).Decode(&existing)
		switch {
		case err == nil:
			doc.ID = existing.ID
			doc.CreatedAt = existing.CreatedAt
		case !errors.Is(err, mongo.ErrNoDocuments):
			return nil, fmt.Errorf("failed to look up product: %w", err)
		}
	}

	if doc.ID == 0 {
		id, err := r.store.nextID(ctx, productsCollection)
		if err != nil {
			return nil, err
		}
		doc.ID = id
	}

	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert product: %w", err)
	}

	r.store.logger.Debug("product stored", "id", doc.ID, "sku", p.SKU)
	return doc.model(), nil
}

func (r *ProductRepository) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	return r.findOne(ctx, bson.M{"sku": sku}, fmt.Sprintf("product %q", sku))
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	return r.findOne(ctx, bson.M{"_id": id}, fmt.Sprintf("product %d", id))
}

func (r *ProductRepository) findOne(ctx context.Context, filter bson.M, what string) (*models.Product, error) {
	var doc productDoc
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return doc.model(), nil
}

// FindAll returns every product, newest first.
func (r *ProductRepository) FindAll(ctx context.Context) ([]*models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []productDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	products := make([]*models.Product, 0, len(docs))
	for i := range docs {
		products = append(products, docs[i].model())
	}
	return products, nil
}

// EnrichmentRepository appends enrichments; reads return the latest.
type EnrichmentRepository struct {
	store *Store
	coll  *mongo.Collection
}

func (r *EnrichmentRepository) Save(ctx context.Context, e *models.ProductEnrichment) (*models.ProductEnrichment, error) {
	if e.ProductID == nil {
		return nil, ErrMissingProductID
	}

	id, err := r.store.nextID(ctx, enrichmentsCollection)
	if err != nil {
		return nil, err
	}

	saved := *e
	saved.ID = id
	if _, err := r.coll.InsertOne(ctx, newEnrichmentDoc(&saved)); err != nil {
		return nil, fmt.Errorf("failed to insert enrichment: %w", err)
	}

	return &saved, nil
}

func (r *EnrichmentRepository) FindByProductID(ctx context.Context, productID int64) (*models.ProductEnrichment, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "enriched_at", Value: -1}, {Key: "_id", Value: -1}})

	var doc enrichmentDoc
	err := r.coll.FindOne(ctx, bson.M{"product_id": productID}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("enrichment for product %d: %w", productID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get enrichment: %w", err)
	}
	return doc.model(), nil
}

// Catalog joins products with their latest enrichment.
type Catalog struct {
	products    *ProductRepository
	enrichments *EnrichmentRepository
}

func (c *Catalog) FindAll(ctx context.Context) ([]*models.Product, error) {
	products, err := c.products.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if err := c.attach(ctx, p); err != nil {
			return nil, err
		}
	}
	return products, nil
}

func (c *Catalog) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	p, err := c.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.attach(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (c *Catalog) attach(ctx context.Context, p *models.Product) error {
	e, err := c.enrichments.FindByProductID(ctx, p.ID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	p.SetEnrichedData(e)
	return nil
}
