package mongostore

import (
	"context"
	"fmt"

	"shate-rag-be/internal/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type IndexSpec struct {
	Collection string
	Model      mongo.IndexModel
}

func unique(collection string, keys bson.D) IndexSpec {
	return IndexSpec{Collection: collection, Model: mongo.IndexModel{Keys: keys, Options: options.Index().SetUnique(true)}}
}

func plain(collection string, keys bson.D) IndexSpec {
	return IndexSpec{Collection: collection, Model: mongo.IndexModel{Keys: keys}}
}

// ShopIndexes declares the storefront's uniqueness and lookup indexes.
func ShopIndexes() []IndexSpec {
	return []IndexSpec{
		unique("users", bson.D{{Key: "email", Value: 1}}),
		plain("sessions", bson.D{{Key: "userId", Value: 1}}),
		unique("sessions", bson.D{{Key: "refreshToken", Value: 1}}),
		{
			Collection: "sessions",
			Model: mongo.IndexModel{
				Keys:    bson.D{{Key: "expiresAt", Value: 1}},
				Options: options.Index().SetExpireAfterSeconds(0),
			},
		},
		unique("categories", bson.D{{Key: "slug", Value: 1}}),
		unique("products", bson.D{{Key: "code", Value: 1}}),
		unique("products", bson.D{{Key: "slug", Value: 1}}),
		{
			Collection: "productvariants",
			Model: mongo.IndexModel{
				Keys:    bson.D{{Key: "sku", Value: 1}},
				Options: options.Index().SetUnique(true).SetSparse(true),
			},
		},
		{
			Collection: "productvariants",
			Model: mongo.IndexModel{
				Keys: bson.D{{Key: "color", Value: 1}, {Key: "size", Value: 1}, {Key: "productId", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.D{{Key: "sku", Value: bson.D{{Key: "$exists", Value: true}}}}),
			},
		},
		unique("promotions", bson.D{{Key: "code", Value: 1}}),
		unique("orders", bson.D{{Key: "orderNumber", Value: 1}}),
		{
			// one open redemption of a promotion per user
			Collection: "orders",
			Model: mongo.IndexModel{
				Keys: bson.D{{Key: "userId", Value: 1}, {Key: "promotionId", Value: 1}},
				Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.D{
					{Key: "promotionId", Value: bson.D{{Key: "$type", Value: "objectId"}}},
					{Key: "status", Value: bson.D{{Key: "$in", Value: entity.OpenOrderStatuses}}},
				}),
			},
		},
		unique("orderitems", bson.D{{Key: "orderId", Value: 1}, {Key: "variantId", Value: 1}}),
		unique("reviews", bson.D{{Key: "orderItemId", Value: 1}}),
		plain("reviews", bson.D{{Key: "productId", Value: 1}, {Key: "createdAt", Value: -1}}),
		unique("cartitems", bson.D{{Key: "userId", Value: 1}, {Key: "variantId", Value: 1}}),
		unique("favourites", bson.D{{Key: "userId", Value: 1}, {Key: "productId", Value: 1}}),
		unique("posts", bson.D{{Key: "slug", Value: 1}}),
		plain("contacts", bson.D{{Key: "email", Value: 1}, {Key: "createdAt", Value: -1}}),
	}
}

// EnsureIndexes creates every declared index and returns the index names in declaration order.
func (s *Store) EnsureIndexes(ctx context.Context, specs []IndexSpec) ([]string, error) {
	names := make([]string, 0, len(specs))
	for _, spec := range specs {
		name, err := s.db.Collection(spec.Collection).Indexes().CreateOne(ctx, spec.Model)
		if err != nil {
			return names, fmt.Errorf("create index on %s: %w", spec.Collection, err)
		}
		s.logger.Info("MONGO", "Index ensured", map[string]interface{}{"collection": spec.Collection, "index": name})
		names = append(names, spec.Collection+"."+name)
	}
	return names, nil
}
