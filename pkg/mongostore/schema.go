package mongostore

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"shate-rag-be/internal/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const maxSampleValueLen = 100

type Field struct {
	Name string
	Type string
}

type CollectionSchema struct {
	Name   string
	Fields []Field
	Sample bson.D
}

// Schema describes the named collections from one sampled document each. Empty collections
// fall back to the declared document type.
func (s *Store) Schema(ctx context.Context, names []string) (string, error) {
	schemas := make([]CollectionSchema, 0, len(names))
	for _, name := range names {
		var sample bson.D
		err := s.db.Collection(name).FindOne(ctx, bson.D{}).Decode(&sample)
		switch {
		case err == nil:
			schemas = append(schemas, CollectionSchema{Name: name, Fields: fieldsFromDocument("", sample), Sample: sample})
		case errors.Is(err, mongo.ErrNoDocuments):
			declared, ok := DescribeEntity(name)
			if !ok {
				schemas = append(schemas, CollectionSchema{Name: name})
				continue
			}
			schemas = append(schemas, declared)
		default:
			return "", fmt.Errorf("sample collection %s: %w", name, err)
		}
	}
	return RenderSchema(schemas), nil
}

// RenderSchema produces the compact text the query generator reads.
func RenderSchema(schemas []CollectionSchema) string {
	var b strings.Builder
	for i, cs := range schemas {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Collection: %s\nFields:\n", cs.Name)
		if len(cs.Fields) == 0 {
			b.WriteString("- (no documents)\n")
		}
		for _, f := range cs.Fields {
			fmt.Fprintf(&b, "- %s (%s)\n", f.Name, f.Type)
		}
		if len(cs.Sample) > 0 {
			raw, err := bson.MarshalExtJSON(truncateSample(cs.Sample), false, false)
			if err == nil {
				fmt.Fprintf(&b, "Sample document:\n%s\n", raw)
			}
		}
	}
	return b.String()
}

// DescribeEntity builds a schema from the bson tags of the declared shop document type.
func DescribeEntity(collection string) (CollectionSchema, bool) {
	zero, ok := entity.ShopCollections[collection]
	if !ok {
		return CollectionSchema{}, false
	}
	return CollectionSchema{Name: collection, Fields: fieldsFromType("", reflect.TypeOf(zero))}, true
}

func fieldsFromDocument(prefix string, doc bson.D) []Field {
	var fields []Field
	for _, e := range doc {
		name := prefix + e.Key
		if nested, ok := e.Value.(bson.D); ok {
			fields = append(fields, Field{Name: name, Type: "object"})
			fields = append(fields, fieldsFromDocument(name+".", nested)...)
			continue
		}
		fields = append(fields, Field{Name: name, Type: bsonTypeName(e.Value)})
	}
	return fields
}

func bsonTypeName(v interface{}) string {
	switch v.(type) {
	case primitive.ObjectID:
		return "ObjectId"
	case string:
		return "string"
	case int32, int64:
		return "int"
	case float64:
		return "double"
	case primitive.Decimal128:
		return "decimal"
	case bool:
		return "bool"
	case primitive.DateTime:
		return "date"
	case bson.A:
		return "array"
	case nil:
		return "null"
	}
	return fmt.Sprintf("%T", v)
}

var (
	objectIDType = reflect.TypeOf(primitive.ObjectID{})
	timeType     = reflect.TypeOf(time.Time{})
)

func fieldsFromType(prefix string, t reflect.Type) []Field {
	var fields []Field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get("bson")
		name, opts, _ := strings.Cut(tag, ",")
		if opts == "inline" {
			fields = append(fields, fieldsFromType(prefix, sf.Type)...)
			continue
		}
		if name == "" || name == "-" {
			continue
		}
		ft := sf.Type
		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		switch {
		case ft == objectIDType:
			fields = append(fields, Field{Name: prefix + name, Type: "ObjectId"})
		case ft == timeType:
			fields = append(fields, Field{Name: prefix + name, Type: "date"})
		case ft.Kind() == reflect.Struct:
			fields = append(fields, Field{Name: prefix + name, Type: "object"})
			fields = append(fields, fieldsFromType(prefix+name+".", ft)...)
		case ft.Kind() == reflect.Slice:
			fields = append(fields, Field{Name: prefix + name, Type: "array"})
		case ft.Kind() == reflect.Float32 || ft.Kind() == reflect.Float64:
			fields = append(fields, Field{Name: prefix + name, Type: "double"})
		case ft.Kind() >= reflect.Int && ft.Kind() <= reflect.Int64:
			fields = append(fields, Field{Name: prefix + name, Type: "int"})
		default:
			fields = append(fields, Field{Name: prefix + name, Type: ft.Kind().String()})
		}
	}
	return fields
}

func truncateSample(doc bson.D) bson.D {
	out := make(bson.D, 0, len(doc))
	for _, e := range doc {
		switch v := e.Value.(type) {
		case string:
			if r := []rune(v); len(r) > maxSampleValueLen {
				v = string(r[:maxSampleValueLen]) + "..."
			}
			out = append(out, bson.E{Key: e.Key, Value: v})
		case bson.D:
			out = append(out, bson.E{Key: e.Key, Value: truncateSample(v)})
		default:
			out = append(out, e)
		}
	}
	return out
}

// SortedCollections lists every declared shop collection.
func SortedCollections() []string {
	names := make([]string, 0, len(entity.ShopCollections))
	for name := range entity.ShopCollections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
