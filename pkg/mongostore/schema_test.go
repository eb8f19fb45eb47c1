package mongostore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestDescribeEntity(t *testing.T) {
	cs, ok := DescribeEntity("productvariants")
	require.True(t, ok)

	names := map[string]string{}
	for _, f := range cs.Fields {
		names[f.Name] = f.Type
	}
	assert.Equal(t, "ObjectId", names["_id"])
	assert.Equal(t, "date", names["createdAt"])
	assert.Equal(t, "double", names["price"])
	assert.Equal(t, "int", names["stock"])
	assert.Equal(t, "string", names["size"])
	assert.Equal(t, "ObjectId", names["productId"])
	assert.Equal(t, "ObjectId", names["productVariantImageId"])

	products, ok := DescribeEntity("products")
	require.True(t, ok)
	var nested bool
	for _, f := range products.Fields {
		if f.Name == "avatar.publicId" {
			nested = true
		}
	}
	assert.True(t, nested)

	_, ok = DescribeEntity("does_not_exist")
	assert.False(t, ok)
}

func TestRenderSchema(t *testing.T) {
	long := ""
	for i := 0; i < 150; i++ {
		long += "ằ"
	}
	text := RenderSchema([]CollectionSchema{
		{
			Name:   "promotions",
			Fields: fieldsFromDocument("", bson.D{{Key: "code", Value: "SALE10"}, {Key: "stock", Value: int32(4)}, {Key: "description", Value: long}}),
			Sample: bson.D{{Key: "code", Value: "SALE10"}, {Key: "stock", Value: int32(4)}, {Key: "description", Value: long}},
		},
		{Name: "empty"},
	})

	assert.Contains(t, text, "Collection: promotions\nFields:\n- code (string)\n- stock (int)\n- description (string)\n")
	assert.Contains(t, text, `"code":"SALE10"`)
	assert.Contains(t, text, "...")
	assert.Contains(t, text, "Collection: empty\nFields:\n- (no documents)\n")
	assert.NotContains(t, text, long)
}

type countingSchema struct {
	calls int
}

func (c *countingSchema) Schema(_ context.Context, names []string) (string, error) {
	c.calls++
	return "schema of " + names[0], nil
}

func TestCachedSchema(t *testing.T) {
	src := &countingSchema{}
	cached := NewCachedSchema(src, time.Minute)

	for i := 0; i < 3; i++ {
		text, err := cached.Schema(context.Background(), []string{"products"})
		require.NoError(t, err)
		assert.Equal(t, "schema of products", text)
	}
	assert.Equal(t, 1, src.calls)

	_, _ = cached.Schema(context.Background(), []string{"promotions"})
	assert.Equal(t, 2, src.calls)

	cached.Invalidate()
	_, _ = cached.Schema(context.Background(), []string{"products"})
	assert.Equal(t, 3, src.calls)
}

func TestShopIndexes_CoverDeclaredCollections(t *testing.T) {
	for _, spec := range ShopIndexes() {
		_, ok := DescribeEntity(spec.Collection)
		assert.True(t, ok, spec.Collection)
	}
}
